package repository

import (
	"context"

	"sharefile/share-api/internal/model"
	"sharefile/share-api/internal/service"

	"gorm.io/gorm"
)

var _ service.SubscriptionRows = (*Subscriptions)(nil)

type Subscriptions struct {
	db *gorm.DB
}

func NewSubscriptions(db *gorm.DB) *Subscriptions {
	return &Subscriptions{db: db}
}

// Latest returns the newest subscription of a user whether it is still
// running or not
func (r *Subscriptions) Latest(ctx context.Context, userID string) (*model.Subscription, error) {
	var subs []model.Subscription

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("expires_at DESC").
		Limit(1).
		Find(&subs).
		Error
	if err != nil {
		return nil, err
	}

	if len(subs) == 0 {
		return nil, nil
	}

	return &subs[0], nil
}

func (r *Subscriptions) Create(ctx context.Context, s *model.Subscription) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// ListExpired returns the ids of subscriptions that ended strictly before now
func (r *Subscriptions) ListExpired(ctx context.Context, now int64) ([]string, error) {
	var ids []string

	err := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("expires_at < ?", now).
		Pluck("id", &ids).
		Error

	return ids, err
}

func (r *Subscriptions) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&model.Subscription{})

	return res.RowsAffected, res.Error
}
