package service

import (
	"context"
	"fmt"
	"time"

	"sharefile/share-api/internal/storage"

	"go.uber.org/zap"
)

const reconcileChunk = 500

type ReconcileResult struct {
	Scanned  int
	Orphans  int
	Removed  int
	Err      error
	Duration time.Duration
}

// Reconciler removes objects that have no file row. Those are left behind when
// an upload could not write its row, or when the object cleanup after that
// failed too. Objects younger than Grace are skipped so uploads in flight
// are never touched
type Reconciler struct {
	Files   FileRows
	Objects storage.ObjectStore
	Grace   time.Duration
}

func NewReconciler(f FileRows, o storage.ObjectStore, grace time.Duration) *Reconciler {
	return &Reconciler{Files: f, Objects: o, Grace: grace}
}

func (r *Reconciler) Run(ctx context.Context, now time.Time) *ReconcileResult {
	start := time.Now()
	res := &ReconcileResult{}

	defer func() {
		res.Duration = time.Since(start)
		orphansRemovedTotal.Add(float64(res.Removed))

		zap.L().Info("Storage reconciliation finished",
			zap.Int("scanned", res.Scanned),
			zap.Int("orphans", res.Orphans),
			zap.Int("removed", res.Removed),
			zap.Duration("took", res.Duration),
			zap.Error(res.Err),
		)
	}()

	objects, err := r.Objects.List(ctx)
	if err != nil {
		res.Err = fmt.Errorf("failed to list objects, %w", err)
		return res
	}

	cutoff := now.Add(-r.Grace)

	var candidates []string
	for _, o := range objects {
		res.Scanned++
		if o.LastModified.After(cutoff) {
			continue
		}

		candidates = append(candidates, o.Key)
	}

	var orphans []string
	for i := 0; i < len(candidates); i += reconcileChunk {
		part := candidates[i:min(i+reconcileChunk, len(candidates))]

		known, err := r.Files.ExistingKeys(ctx, part)
		if err != nil {
			res.Err = fmt.Errorf("%w: %w", ErrRowReadFailed, err)
			return res
		}

		for _, k := range part {
			if !known[k] {
				orphans = append(orphans, k)
			}
		}
	}

	res.Orphans = len(orphans)
	if len(orphans) == 0 {
		return res
	}

	if err := r.Objects.Remove(ctx, orphans); err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrStorageDeleteFailed, err)
		return res
	}

	res.Removed = len(orphans)
	return res
}
