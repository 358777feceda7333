package service

import (
	"context"
	"fmt"
	"time"

	"sharefile/share-api/internal/model"
	"sharefile/share-api/pkg/validators"

	"go.uber.org/zap"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// Profiles puts a password in front of a user's public file list. A profile
// without a password can't be opened by anyone but its owner
type Profiles struct {
	Rows   ProfileRows
	Shares *Shares
	Hasher PasswordHasher
	Now    func() time.Time
}

func NewProfiles(r ProfileRows, s *Shares, h PasswordHasher) *Profiles {
	return &Profiles{Rows: r, Shares: s, Hasher: h, Now: time.Now}
}

// SetPassword replaces the profile password of userID
func (p *Profiles) SetPassword(ctx context.Context, userID, password string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	if err := validators.ProfilePasswordValidator(password); err != nil {
		return err
	}

	hash, err := p.Hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash profile password, %w", err)
	}

	if err := p.Rows.SetPassword(ctx, userID, hash, p.Now().UnixMilli()); err != nil {
		return fmt.Errorf("%w: %w", ErrRowWriteFailed, err)
	}

	zap.L().Info("Profile password set", zap.String("userID", userID))
	return nil
}

// Unlock checks password against the profile of userID
func (p *Profiles) Unlock(ctx context.Context, userID, password string) error {
	if password == "" {
		return ErrProfileLocked
	}

	prof, err := p.Rows.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRowReadFailed, err)
	}

	if prof == nil {
		return ErrProfileLocked
	}

	ok, err := p.Hasher.Verify(password, prof.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify profile password, %w", err)
	}

	if !ok {
		return ErrProfileLocked
	}

	return nil
}

// ListFiles returns one page of the visible files of userID once the
// profile password matched
func (p *Profiles) ListFiles(ctx context.Context, userID, password string, page, limit int, sort string) ([]model.File, error) {
	if err := p.Unlock(ctx, userID, password); err != nil {
		return nil, err
	}

	return p.Shares.List(ctx, userID, page, limit, sort)
}
