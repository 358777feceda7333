package service_test

import (
	"context"
	"testing"
	"time"

	"sharefile/share-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShares(e *env, now int64) *service.Shares {
	s := service.NewShares(e.files, e.store)
	s.Now = fixedClock(time.UnixMilli(now))
	return s
}

func TestOpenCountsDownloads(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := e.seedFile(t, "f1", "u1", ptr(1_000))
	s := newShares(e, 999)

	got, err := s.Open(ctx, f.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Downloads)
	assert.Equal(t, "https://cdn.test/"+f.StorageKey, got.PublicURL)

	_, err = s.Open(ctx, f.ID)
	require.NoError(t, err)

	stored, err := e.files.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stored.Downloads)
}

func TestOpenHidesExpiredAndMissing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	expired := e.seedFile(t, "f1", "u1", ptr(1_000))
	_, err := newShares(e, 1_000).Open(ctx, expired.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = newShares(e, 0).Open(ctx, "nope")
	assert.ErrorIs(t, err, service.ErrNotFound)

	// Row without its object
	lost := e.seedFile(t, "f2", "u1", nil)
	require.NoError(t, e.store.Remove(ctx, []string{lost.StorageKey}))

	_, err = newShares(e, 0).Open(ctx, lost.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	stored, err := e.files.Get(ctx, lost.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Downloads)
}

func TestListAndGetOwned(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.seedFile(t, "f1", "u1", ptr(100))
	e.seedFile(t, "f2", "u1", ptr(500))
	e.seedFile(t, "f3", "u2", nil)

	s := newShares(e, 200)

	files, err := s.List(ctx, "u1", 0, 0, "")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "f2", files[0].ID)
	assert.NotEmpty(t, files[0].PublicURL)

	_, err = s.Get(ctx, "u1", "f1")
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = s.Get(ctx, "u1", "f3")
	assert.ErrorIs(t, err, service.ErrNotFound)

	got, err := s.Get(ctx, "u2", "f3")
	require.NoError(t, err)
	assert.Equal(t, "u2", got.UserID)
}

func TestDeleteOwned(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := e.seedFile(t, "f1", "u1", nil)
	s := newShares(e, 0)

	assert.ErrorIs(t, s.Delete(ctx, "u2", f.ID), service.ErrNotFound)

	e.store.removeErr = errBoom
	assert.ErrorIs(t, s.Delete(ctx, "u1", f.ID), service.ErrStorageDeleteFailed)
	assert.EqualValues(t, 1, e.fileCount(t))

	e.store.removeErr = nil
	require.NoError(t, s.Delete(ctx, "u1", f.ID))
	assert.Zero(t, e.fileCount(t))
	assert.False(t, e.store.has(f.StorageKey))
}
