// Package service contains the file lifecycle: uploads with their expiry,
// downloads, subscriptions and the cleanup passes
package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sharefile/share-api/internal/model"
	"sharefile/share-api/internal/plan"
	"sharefile/share-api/internal/storage"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

type Uploader struct {
	Files   FileRows
	Subs    SubscriptionRows
	Objects storage.ObjectStore
	Plans   plan.Table
	Now     func() time.Time
}

type UploadInput struct {
	UserID      string
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Usage is how much of the current plan a user has used up
type Usage struct {
	Plan          plan.Limits `json:"plan"`
	Used          int64       `json:"used"`
	Total         int         `json:"total"`
	PlanExpiresAt *int64      `json:"planExpiresAt"`
	// All time, including deleted and expired files
	TotalUploads int64 `json:"totalUploads"`
}

func NewUploader(f FileRows, s SubscriptionRows, o storage.ObjectStore, p plan.Table) *Uploader {
	return &Uploader{
		Files:   f,
		Subs:    s,
		Objects: o,
		Plans:   p,
		Now:     time.Now,
	}
}

// Do checks the upload against the user's plan, stores the object and then
// records the file with an expiry computed from the plan that is active right
// now. The expiry is never recomputed afterwards
func (u *Uploader) Do(ctx context.Context, in UploadInput) (*model.File, error) {
	if in.UserID == "" {
		return nil, ErrNotAuthenticated
	}

	now := u.Now()

	limits, planExpiresAt, err := u.resolve(ctx, in.UserID, now.UnixMilli())
	if err != nil {
		return nil, err
	}

	if in.Size > limits.MaxSize {
		uploadRejectionsTotal.WithLabelValues(string(QuotaSize)).Inc()
		return nil, &QuotaError{Reason: QuotaSize, Plan: limits, Limit: limits.MaxSize}
	}

	quota := quotaFor(limits, planExpiresAt, now)

	// Cheap check before pushing bytes to storage. Insert repeats it atomically
	used, err := u.Files.CountQualifying(ctx, in.UserID, quota)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRowReadFailed, err)
	}

	if used >= int64(quota.Max) {
		uploadRejectionsTotal.WithLabelValues(string(QuotaCount)).Inc()
		return nil, &QuotaError{Reason: QuotaCount, Plan: limits, Limit: int64(limits.MaxFiles)}
	}

	id, err := gonanoid.Generate(idAlphabet, 16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate file id, %w", err)
	}

	name := CleanName(in.Name)
	key := StorageKey(in.UserID, now.UnixMilli(), id, name)

	if err := u.Objects.Put(ctx, key, in.Body, in.Size, in.ContentType); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageWriteFailed, err)
	}

	expiresAt := now.Add(limits.Retention).UnixMilli()

	f := &model.File{
		ID:            id,
		UserID:        in.UserID,
		StorageKey:    key,
		OriginalName:  name,
		ContentType:   in.ContentType,
		Size:          in.Size,
		CreatedAt:     now.UnixMilli(),
		ExpiresAt:     &expiresAt,
		PlanExpiresAt: planExpiresAt,
	}

	ok, err := u.Files.Insert(ctx, f, quota)
	if err != nil {
		u.discard(key)
		return nil, fmt.Errorf("%w: %w", ErrRowWriteFailed, err)
	}

	if !ok {
		// Another upload from the same user got in first
		u.discard(key)
		uploadRejectionsTotal.WithLabelValues(string(QuotaCount)).Inc()
		return nil, &QuotaError{Reason: QuotaCount, Plan: limits, Limit: int64(limits.MaxFiles)}
	}

	uploadsTotal.WithLabelValues(string(limits.Type)).Inc()
	f.PublicURL = u.Objects.PublicURL(key)

	return f, nil
}

// Usage reports the plan a user is on and how many of its uploads are used
func (u *Uploader) Usage(ctx context.Context, userID string) (*Usage, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	now := u.Now()

	limits, planExpiresAt, err := u.resolve(ctx, userID, now.UnixMilli())
	if err != nil {
		return nil, err
	}

	used, err := u.Files.CountQualifying(ctx, userID, quotaFor(limits, planExpiresAt, now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRowReadFailed, err)
	}

	st, err := u.Files.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRowReadFailed, err)
	}

	return &Usage{
		Plan:          limits,
		Used:          used,
		Total:         limits.MaxFiles,
		PlanExpiresAt: planExpiresAt,
		TotalUploads:  st.TotalUploads,
	}, nil
}

// resolve looks up the user's subscription fresh and picks the plan limits.
// planExpiresAt is only set while a paid plan is active
func (u *Uploader) resolve(ctx context.Context, userID string, now int64) (plan.Limits, *int64, error) {
	sub, err := u.Subs.Latest(ctx, userID)
	if err != nil {
		return plan.Limits{}, nil, fmt.Errorf("%w: %w", ErrRowReadFailed, err)
	}

	if sub == nil || !sub.Active(now) {
		return u.Plans.Lookup(plan.Basic), nil, nil
	}

	limits := u.Plans.Lookup(plan.Type(sub.PlanType))
	if !limits.Type.IsPaid() {
		return limits, nil, nil
	}

	exp := sub.ExpiresAt
	return limits, &exp, nil
}

func (u *Uploader) discard(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := u.Objects.Remove(ctx, []string{key}); err != nil {
		zap.L().Error("Failed to cleanup after failed upload", zap.String("key", key), zap.Error(err))
		return
	}

	zap.L().Debug("Cleaned up after failed upload", zap.String("key", key))
}

func quotaFor(l plan.Limits, planExpiresAt *int64, now time.Time) Quota {
	return Quota{
		Paid:  planExpiresAt != nil,
		Since: plan.MonthStart(now).UnixMilli(),
		Max:   l.MaxFiles,
	}
}

// CleanName strips any directory parts a client may have sent with the file name
func CleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimSpace(filepath.Base(name))

	if name == "" || name == "." || name == "/" {
		return "file"
	}

	return name
}

// StorageKey builds the object key for a new upload. The id makes keys unique
// even for two uploads of the same name in the same millisecond
func StorageKey(userID string, millis int64, id, name string) string {
	return userID + "/" + strconv.FormatInt(millis, 10) + "-" + id + "-" + name
}
