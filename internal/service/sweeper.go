package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sharefile/share-api/internal/storage"

	"go.uber.org/zap"
)

// SweepResult is the outcome of one sweeper run. The file pass and the
// subscription pass fail independently of each other
type SweepResult struct {
	FilesDeleted         int64
	SubscriptionsDeleted int64
	FileErr              error
	SubscriptionErr      error
	Duration             time.Duration
}

// Err joins the errors of both passes, nil when the run went through
func (r *SweepResult) Err() error {
	return errors.Join(r.FileErr, r.SubscriptionErr)
}

// Summary is the plain text reply of the cleanup endpoint
func (r *SweepResult) Summary() string {
	var b strings.Builder

	switch {
	case r.FileErr != nil:
		fmt.Fprintf(&b, "File cleanup failed: %s\n", r.FileErr)
	case r.FilesDeleted == 0:
		b.WriteString("No expired files.\n")
	default:
		fmt.Fprintf(&b, "Deleted %d expired file(s).\n", r.FilesDeleted)
	}

	switch {
	case r.SubscriptionErr != nil:
		fmt.Fprintf(&b, "Subscription cleanup failed: %s\n", r.SubscriptionErr)
	case r.SubscriptionsDeleted == 0:
		b.WriteString("No expired subscriptions.\n")
	default:
		fmt.Fprintf(&b, "Deleted %d expired subscription(s).\n", r.SubscriptionsDeleted)
	}

	return b.String()
}

// Sweeper removes files past their expiry together with their objects, and
// subscriptions past theirs. It holds no state between runs so overlapping
// runs are fine, the second one just finds less to delete
type Sweeper struct {
	Files   FileRows
	Subs    SubscriptionRows
	Objects storage.ObjectStore
}

func NewSweeper(f FileRows, s SubscriptionRows, o storage.ObjectStore) *Sweeper {
	return &Sweeper{Files: f, Subs: s, Objects: o}
}

// Sweep runs both passes against the given instant
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) *SweepResult {
	start := time.Now()
	res := &SweepResult{}
	ms := now.UnixMilli()

	res.FilesDeleted, res.FileErr = s.sweepFiles(ctx, ms)
	res.SubscriptionsDeleted, res.SubscriptionErr = s.sweepSubscriptions(ctx, ms)

	res.Duration = time.Since(start)

	sweepRunsTotal.Inc()
	sweepFilesDeletedTotal.Add(float64(res.FilesDeleted))
	sweepSubscriptionsDeletedTotal.Add(float64(res.SubscriptionsDeleted))
	sweepDurationSeconds.Observe(res.Duration.Seconds())

	zap.L().Info("Expiry sweep finished",
		zap.Int64("files_deleted", res.FilesDeleted),
		zap.Int64("subscriptions_deleted", res.SubscriptionsDeleted),
		zap.Duration("took", res.Duration),
		zap.NamedError("file_error", res.FileErr),
		zap.NamedError("subscription_error", res.SubscriptionErr),
	)

	return res
}

func (s *Sweeper) sweepFiles(ctx context.Context, now int64) (int64, error) {
	expired, err := s.Files.ListExpired(ctx, now)
	if err != nil {
		sweepFailuresTotal.WithLabelValues("list_files").Inc()
		zap.L().Error("Failed to query expired files", zap.Error(err))
		return 0, fmt.Errorf("%w: %w", ErrRowReadFailed, err)
	}

	if len(expired) == 0 {
		return 0, nil
	}

	keys := make([]string, len(expired))
	ids := make([]string, len(expired))
	for i, f := range expired {
		keys[i] = f.StorageKey
		ids[i] = f.ID
	}

	// Objects go first. A row left behind gets retried next run, an object
	// left without its row would only be found by reconciliation
	if err := s.Objects.Remove(ctx, keys); err != nil {
		sweepFailuresTotal.WithLabelValues("remove_objects").Inc()
		zap.L().Error("Failed to remove expired objects", zap.Int("count", len(keys)), zap.Error(err))
		return 0, fmt.Errorf("%w: %w", ErrStorageDeleteFailed, err)
	}

	n, err := s.Files.DeleteByIDs(ctx, ids)
	if err != nil {
		sweepFailuresTotal.WithLabelValues("delete_files").Inc()
		zap.L().Error("Failed to delete expired file rows", zap.Int("count", len(ids)), zap.Error(err))
		return 0, fmt.Errorf("%w: %w", ErrRowDeleteFailed, err)
	}

	return n, nil
}

func (s *Sweeper) sweepSubscriptions(ctx context.Context, now int64) (int64, error) {
	ids, err := s.Subs.ListExpired(ctx, now)
	if err != nil {
		sweepFailuresTotal.WithLabelValues("list_subscriptions").Inc()
		zap.L().Error("Failed to query expired subscriptions", zap.Error(err))
		return 0, fmt.Errorf("%w: %w", ErrRowReadFailed, err)
	}

	if len(ids) == 0 {
		return 0, nil
	}

	n, err := s.Subs.DeleteByIDs(ctx, ids)
	if err != nil {
		sweepFailuresTotal.WithLabelValues("delete_subscriptions").Inc()
		zap.L().Error("Failed to delete expired subscriptions", zap.Int("count", len(ids)), zap.Error(err))
		return 0, fmt.Errorf("%w: %w", ErrRowDeleteFailed, err)
	}

	return n, nil
}
