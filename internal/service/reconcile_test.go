package service_test

import (
	"context"
	"testing"
	"time"

	"sharefile/share-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileRemovesOldOrphans(t *testing.T) {
	e := newEnv(t)
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	kept := e.seedFile(t, "f1", "u1", nil)
	e.store.add("u1/1-old-orphan.bin", now.Add(-2*time.Hour))
	e.store.add("u1/1-new-orphan.bin", now.Add(-time.Minute))

	r := service.NewReconciler(e.files, e.store, time.Hour)

	res := r.Run(context.Background(), now)
	require.NoError(t, res.Err)
	assert.Equal(t, 3, res.Scanned)
	assert.Equal(t, 1, res.Orphans)
	assert.Equal(t, 1, res.Removed)

	assert.True(t, e.store.has(kept.StorageKey))
	assert.False(t, e.store.has("u1/1-old-orphan.bin"))
	assert.True(t, e.store.has("u1/1-new-orphan.bin"))
}

func TestReconcileNothingToDo(t *testing.T) {
	e := newEnv(t)
	e.seedFile(t, "f1", "u1", nil)

	res := service.NewReconciler(e.files, e.store, time.Hour).Run(context.Background(), time.Now())
	require.NoError(t, res.Err)
	assert.Zero(t, res.Orphans)
	assert.Empty(t, e.store.removes)
}

func TestReconcileRemoveFailure(t *testing.T) {
	e := newEnv(t)
	e.store.add("u1/orphan", time.Unix(0, 0))
	e.store.removeErr = errBoom

	res := service.NewReconciler(e.files, e.store, time.Hour).Run(context.Background(), time.Now())
	assert.ErrorIs(t, res.Err, service.ErrStorageDeleteFailed)
	assert.Equal(t, 1, res.Orphans)
	assert.Zero(t, res.Removed)
}
