package service

import (
	"context"

	"sharefile/share-api/internal/model"
)

// Quota selects which of a user's uploads count against a plan. Free tier
// uploads (no plan expiry) are counted from the start of the month, paid
// uploads over the whole time a plan has been held. The two never mix
type Quota struct {
	Paid  bool
	Since int64
	Max   int
}

type ListQuery struct {
	Offset int
	Limit  int
	Order  string
}

// FileRows is the row store contract for the files table
type FileRows interface {
	Get(ctx context.Context, id string) (*model.File, error)
	GetOwned(ctx context.Context, userID, id string) (*model.File, error)
	ListVisible(ctx context.Context, userID string, now int64, q ListQuery) ([]model.File, error)
	CountQualifying(ctx context.Context, userID string, q Quota) (int64, error)
	// Insert re-checks q and inserts f atomically. It returns false without an
	// error when the quota was already used up
	Insert(ctx context.Context, f *model.File, q Quota) (bool, error)
	IncrementDownloads(ctx context.Context, id string) error
	ListExpired(ctx context.Context, now int64) ([]model.File, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
	// ExistingKeys returns the subset of keys that still have a row
	ExistingKeys(ctx context.Context, keys []string) (map[string]bool, error)
	Stats(ctx context.Context, userID string) (*model.Stats, error)
}

// SubscriptionRows is the row store contract for the subscriptions table
type SubscriptionRows interface {
	// Latest returns nil without an error when the user never subscribed
	Latest(ctx context.Context, userID string) (*model.Subscription, error)
	Create(ctx context.Context, s *model.Subscription) error
	ListExpired(ctx context.Context, now int64) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

// ProfileRows is the row store contract for profile passwords
type ProfileRows interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
	SetPassword(ctx context.Context, userID, hash string, now int64) error
}
