package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sharefile/share-api/internal/model"
	"sharefile/share-api/internal/storage"

	"gorm.io/gorm"
)

const (
	defaultListLimit = 10
	MaxListLimit     = 250
)

// ListOrders maps the sort options clients can ask for to an ORDER BY clause
var ListOrders = map[string]string{
	"newest":    "created_at desc",
	"oldest":    "created_at asc",
	"az":        "original_name",
	"za":        "original_name desc",
	"size-asc":  "size asc",
	"size-desc": "size desc",
	"downloads": "downloads desc",
}

// Shares serves files that are still within their retention. A file past its
// expiry is treated as gone even before the sweeper got to it
type Shares struct {
	Files   FileRows
	Objects storage.ObjectStore
	Now     func() time.Time
}

func NewShares(f FileRows, o storage.ObjectStore) *Shares {
	return &Shares{Files: f, Objects: o, Now: time.Now}
}

// Open returns a shared file and counts the download
func (s *Shares) Open(ctx context.Context, id string) (*model.File, error) {
	f, err := s.Files.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("%w: %w", ErrRowReadFailed, err)
	}

	if !f.Visible(s.Now().UnixMilli()) {
		return nil, ErrNotFound
	}

	ok, err := s.Objects.Exists(ctx, f.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check object, %w", err)
	}

	if !ok {
		return nil, ErrNotFound
	}

	if err := s.Files.IncrementDownloads(ctx, f.ID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRowWriteFailed, err)
	}

	f.Downloads++
	f.PublicURL = s.Objects.PublicURL(f.StorageKey)

	return f, nil
}

// Get returns a file the user owns
func (s *Shares) Get(ctx context.Context, userID, id string) (*model.File, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	f, err := s.Files.GetOwned(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("%w: %w", ErrRowReadFailed, err)
	}

	if !f.Visible(s.Now().UnixMilli()) {
		return nil, ErrNotFound
	}

	f.PublicURL = s.Objects.PublicURL(f.StorageKey)
	return f, nil
}

// List returns one page of the visible files of a user. Pages start at 0
// and an unknown sort falls back to newest first
func (s *Shares) List(ctx context.Context, userID string, page, limit int, sort string) ([]model.File, error) {
	q := ListQuery{Limit: limit, Order: ListOrders["newest"]}

	if q.Limit <= 0 {
		q.Limit = defaultListLimit
	}
	q.Limit = min(q.Limit, MaxListLimit)
	q.Offset = max(page, 0) * q.Limit

	if o, ok := ListOrders[sort]; ok {
		q.Order = o
	}

	files, err := s.Files.ListVisible(ctx, userID, s.Now().UnixMilli(), q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRowReadFailed, err)
	}

	for i := range files {
		files[i].PublicURL = s.Objects.PublicURL(files[i].StorageKey)
	}

	return files, nil
}

// Delete removes a file the user owns. Like the sweeper the object goes first
// and the row is kept if that fails
func (s *Shares) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	f, err := s.Files.GetOwned(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("%w: %w", ErrRowReadFailed, err)
	}

	if err := s.Objects.Remove(ctx, []string{f.StorageKey}); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageDeleteFailed, err)
	}

	if _, err := s.Files.DeleteByIDs(ctx, []string{f.ID}); err != nil {
		return fmt.Errorf("%w: %w", ErrRowDeleteFailed, err)
	}

	return nil
}
