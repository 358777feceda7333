package repository

import (
	"context"

	"sharefile/share-api/internal/model"
	"sharefile/share-api/internal/service"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ service.ProfileRows = (*Profiles)(nil)

type Profiles struct {
	db *gorm.DB
}

func NewProfiles(db *gorm.DB) *Profiles {
	return &Profiles{db: db}
}

// Get returns nil without an error when the user never set a profile password
func (r *Profiles) Get(ctx context.Context, userID string) (*model.Profile, error) {
	var p []model.Profile

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&p).
		Error
	if err != nil {
		return nil, err
	}

	if len(p) == 0 {
		return nil, nil
	}

	return &p[0], nil
}

// SetPassword stores hash as the user's profile password, replacing any old one
func (r *Profiles) SetPassword(ctx context.Context, userID, hash string, now int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "updated_at"}),
		}).
		Create(&model.Profile{UserID: userID, PasswordHash: hash, UpdatedAt: now}).
		Error
}
