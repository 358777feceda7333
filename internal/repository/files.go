// Package repository implements the row stores on top of gorm
package repository

import (
	"context"
	"errors"

	"sharefile/share-api/internal/model"
	"sharefile/share-api/internal/service"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ service.FileRows = (*Files)(nil)

var errQuotaTaken = errors.New("quota taken")

type Files struct {
	db *gorm.DB
}

func NewFiles(db *gorm.DB) *Files {
	return &Files{db: db}
}

func (r *Files) Get(ctx context.Context, id string) (*model.File, error) {
	var f model.File

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&f).
		Error
	if err != nil {
		return nil, err
	}

	return &f, nil
}

func (r *Files) GetOwned(ctx context.Context, userID, id string) (*model.File, error) {
	var f model.File

	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&f).
		Error
	if err != nil {
		return nil, err
	}

	return &f, nil
}

func (r *Files) ListVisible(ctx context.Context, userID string, now int64, q service.ListQuery) ([]model.File, error) {
	var files []model.File

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order(q.Order).
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&files).
		Error

	return files, err
}

func (r *Files) CountQualifying(ctx context.Context, userID string, q service.Quota) (int64, error) {
	return countQualifying(r.db.WithContext(ctx), userID, q)
}

func countQualifying(db *gorm.DB, userID string, q service.Quota) (int64, error) {
	var n int64

	tx := db.Model(&model.File{}).Where("user_id = ?", userID)
	if q.Paid {
		tx = tx.Where("plan_expires_at IS NOT NULL")
	} else {
		tx = tx.Where("plan_expires_at IS NULL AND created_at >= ?", q.Since)
	}

	err := tx.Count(&n).Error
	return n, err
}

// Insert bumps the user's stats row first. That write holds the row (or on
// SQLite the database) until commit, so a second upload from the same user
// waits here and then sees the first one in its count
func (r *Files) Insert(ctx context.Context, f *model.File, q service.Quota) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.Stats{UserID: f.UserID}).
			Error
		if err != nil {
			return err
		}

		err = tx.
			Model(&model.Stats{}).
			Where("user_id = ?", f.UserID).
			Updates(map[string]any{
				"total_uploads":  gorm.Expr("total_uploads + 1"),
				"last_upload_at": f.CreatedAt,
			}).
			Error
		if err != nil {
			return err
		}

		n, err := countQualifying(tx, f.UserID, q)
		if err != nil {
			return err
		}

		if n >= int64(q.Max) {
			return errQuotaTaken
		}

		return tx.Create(f).Error
	})

	if errors.Is(err, errQuotaTaken) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

func (r *Files) IncrementDownloads(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&model.File{}).
		Where("id = ?", id).
		UpdateColumn("downloads", gorm.Expr("downloads + 1"))
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// ListExpired returns files whose expiry is at or before now. Files without
// an expiry never show up here
func (r *Files) ListExpired(ctx context.Context, now int64) ([]model.File, error) {
	var files []model.File

	err := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Find(&files).
		Error

	return files, err
}

// DeleteByIDs deletes whatever of ids still exists and reports how many that were
func (r *Files) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&model.File{})

	return res.RowsAffected, res.Error
}

func (r *Files) ExistingKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	out := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	var found []string

	err := r.db.WithContext(ctx).
		Model(&model.File{}).
		Where("storage_key IN ?", keys).
		Pluck("storage_key", &found).
		Error
	if err != nil {
		return nil, err
	}

	for _, k := range found {
		out[k] = true
	}

	return out, nil
}

// Stats returns the upload counters of a user, zero when they never uploaded
func (r *Files) Stats(ctx context.Context, userID string) (*model.Stats, error) {
	var s []model.Stats

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&s).
		Error
	if err != nil {
		return nil, err
	}

	if len(s) == 0 {
		return &model.Stats{UserID: userID}, nil
	}

	return &s[0], nil
}
