package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sharefile/share-api/internal/plan"
	"sharefile/share-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uploadTime = time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)

func newUploader(e *env, now time.Time) *service.Uploader {
	u := service.NewUploader(e.files, e.subs, e.store, plan.Default())
	u.Now = fixedClock(now)
	return u
}

func input(user, name string, size int64) service.UploadInput {
	return service.UploadInput{
		UserID:      user,
		Name:        name,
		ContentType: "application/pdf",
		Size:        size,
		Body:        strings.NewReader("data"),
	}
}

func TestUploadFreeTier(t *testing.T) {
	e := newEnv(t)
	u := newUploader(e, uploadTime)

	f, err := u.Do(context.Background(), input("u1", "report.pdf", 40*plan.MB))
	require.NoError(t, err)

	require.NotNil(t, f.ExpiresAt)
	assert.Equal(t, uploadTime.Add(24*time.Hour).UnixMilli(), *f.ExpiresAt)
	assert.Nil(t, f.PlanExpiresAt)
	assert.Equal(t, "report.pdf", f.OriginalName)
	assert.True(t, strings.HasPrefix(f.StorageKey, "u1/"+"1741953600000-"))
	assert.True(t, strings.HasSuffix(f.StorageKey, "-report.pdf"))
	assert.Equal(t, "https://cdn.test/"+f.StorageKey, f.PublicURL)
	assert.True(t, e.store.has(f.StorageKey))

	stored, err := e.files.Get(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, *f.ExpiresAt, *stored.ExpiresAt)
}

func TestUploadFreeTierThirtyDayVariant(t *testing.T) {
	e := newEnv(t)
	u := newUploader(e, uploadTime)
	u.Plans = plan.Default().WithBasicRetention(30 * plan.Day)

	f, err := u.Do(context.Background(), input("u1", "a.txt", 10))
	require.NoError(t, err)
	assert.Equal(t, uploadTime.Add(30*24*time.Hour).UnixMilli(), *f.ExpiresAt)
}

func TestUploadFreeTierMonthlyCount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// Uploads from last month don't count
	last := newUploader(e, uploadTime.AddDate(0, -1, 0))
	for range 3 {
		_, err := last.Do(ctx, input("u1", "old.txt", 10))
		require.NoError(t, err)
	}

	u := newUploader(e, uploadTime)
	for range 3 {
		_, err := u.Do(ctx, input("u1", "a.txt", 10))
		require.NoError(t, err)
	}

	puts := e.store.puts

	_, err := u.Do(ctx, input("u1", "a.txt", 10))
	require.ErrorIs(t, err, service.ErrQuotaExceeded)

	var qe *service.QuotaError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, service.QuotaCount, qe.Reason)
	assert.EqualValues(t, 3, qe.Limit)
	assert.Contains(t, err.Error(), "allows 3 files")

	// Rejected before anything was written
	assert.Equal(t, puts, e.store.puts)

	// Another user is unaffected
	_, err = u.Do(ctx, input("u2", "a.txt", 10))
	require.NoError(t, err)
}

func TestUploadFreeTierSizeLimit(t *testing.T) {
	e := newEnv(t)
	u := newUploader(e, uploadTime)

	_, err := u.Do(context.Background(), input("u1", "big.iso", 50*plan.MB+1))
	require.ErrorIs(t, err, service.ErrQuotaExceeded)

	var qe *service.QuotaError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, service.QuotaSize, qe.Reason)
	assert.Contains(t, err.Error(), "50 MB")
	assert.Zero(t, e.store.puts)

	_, err = u.Do(context.Background(), input("u1", "fits.iso", 50*plan.MB))
	require.NoError(t, err)
}

func TestUploadMonthlyPlan(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	sub := e.seedSubscription(t, "s1", "u1", "monthly", uploadTime.Add(-time.Hour).UnixMilli(), uploadTime.AddDate(0, 1, 0).UnixMilli())
	u := newUploader(e, uploadTime)

	f, err := u.Do(ctx, input("u1", "video.mp4", 90*plan.MB))
	require.NoError(t, err)

	require.NotNil(t, f.PlanExpiresAt)
	assert.Equal(t, sub.ExpiresAt, *f.PlanExpiresAt)
	assert.Equal(t, uploadTime.Add(30*24*time.Hour).UnixMilli(), *f.ExpiresAt)

	_, err = u.Do(ctx, input("u1", "huge.mp4", 101*plan.MB))
	assert.ErrorIs(t, err, service.ErrQuotaExceeded)
}

func TestUploadPaidCountIgnoresFreeUploads(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	free := newUploader(e, uploadTime.Add(-2*time.Hour))
	for range 3 {
		_, err := free.Do(ctx, input("u1", "a.txt", 10))
		require.NoError(t, err)
	}

	e.seedSubscription(t, "s1", "u1", "5day", uploadTime.Add(-time.Hour).UnixMilli(), uploadTime.Add(5*24*time.Hour).UnixMilli())
	u := newUploader(e, uploadTime)

	for range 2 {
		_, err := u.Do(ctx, input("u1", "b.txt", 10))
		require.NoError(t, err)
	}

	_, err := u.Do(ctx, input("u1", "b.txt", 10))
	var qe *service.QuotaError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, service.QuotaCount, qe.Reason)
	assert.Equal(t, plan.Short, qe.Plan.Type)
}

func TestUploadLapsedSubscriptionFallsBackToBasic(t *testing.T) {
	e := newEnv(t)

	e.seedSubscription(t, "s1", "u1", "yearly", 1, uploadTime.UnixMilli())
	u := newUploader(e, uploadTime)

	f, err := u.Do(context.Background(), input("u1", "a.txt", 10))
	require.NoError(t, err)
	assert.Nil(t, f.PlanExpiresAt)
	assert.Equal(t, uploadTime.Add(24*time.Hour).UnixMilli(), *f.ExpiresAt)
}

func TestUploadExpiryIsNotRecomputed(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.seedSubscription(t, "s1", "u1", "yearly", 1, uploadTime.Add(time.Hour).UnixMilli())

	f, err := newUploader(e, uploadTime).Do(ctx, input("u1", "a.txt", 10))
	require.NoError(t, err)
	want := uploadTime.Add(365 * 24 * time.Hour).UnixMilli()
	assert.Equal(t, want, *f.ExpiresAt)

	// The plan lapses and gets swept, the file keeps its retention
	res := service.NewSweeper(e.files, e.subs, e.store).Sweep(ctx, uploadTime.Add(2*time.Hour))
	require.NoError(t, res.Err())
	assert.EqualValues(t, 1, res.SubscriptionsDeleted)
	assert.Zero(t, res.FilesDeleted)

	stored, err := e.files.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, want, *stored.ExpiresAt)
}

func TestUploadNotAuthenticated(t *testing.T) {
	e := newEnv(t)

	_, err := newUploader(e, uploadTime).Do(context.Background(), input("", "a.txt", 10))
	assert.ErrorIs(t, err, service.ErrNotAuthenticated)
	assert.Zero(t, e.store.puts)
}

func TestUploadStorageWriteFailed(t *testing.T) {
	e := newEnv(t)
	e.store.putErr = errBoom

	_, err := newUploader(e, uploadTime).Do(context.Background(), input("u1", "a.txt", 10))
	assert.ErrorIs(t, err, service.ErrStorageWriteFailed)
	assert.ErrorIs(t, err, errBoom)
	assert.Zero(t, e.fileCount(t))
}

func TestUploadRowWriteFailedRemovesObject(t *testing.T) {
	e := newEnv(t)
	e.files.insertErr = errBoom

	_, err := newUploader(e, uploadTime).Do(context.Background(), input("u1", "a.txt", 10))
	assert.ErrorIs(t, err, service.ErrRowWriteFailed)

	require.Len(t, e.store.removes, 1)
	objects, err := e.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestUsage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := newUploader(e, uploadTime)

	_, err := u.Do(ctx, input("u1", "a.txt", 10))
	require.NoError(t, err)

	usage, err := u.Usage(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, plan.Basic, usage.Plan.Type)
	assert.EqualValues(t, 1, usage.Used)
	assert.Equal(t, 3, usage.Total)
	assert.EqualValues(t, 1, usage.TotalUploads)
	assert.Nil(t, usage.PlanExpiresAt)
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "b.txt", service.CleanName("../../a/b.txt"))
	assert.Equal(t, "c.txt", service.CleanName(`C:\tmp\c.txt`))
	assert.Equal(t, "file", service.CleanName(""))
	assert.Equal(t, "file", service.CleanName("/"))
}
