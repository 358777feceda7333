package internal

import (
	"sharefile/share-api/internal/plan"
	"sharefile/share-api/internal/scheduler"
	"sharefile/share-api/internal/service"
	"sharefile/share-api/internal/storage"

	"gorm.io/gorm"
)

type Deps struct {
	DB            *gorm.DB
	Objects       storage.ObjectStore
	Plans         plan.Table
	Uploader      *service.Uploader
	Sweeper       *service.Sweeper
	Reconciler    *service.Reconciler
	Shares        *service.Shares
	Subscriptions *service.Subscriptions
	Profiles      *service.Profiles
	// Nil when no in process jobs are configured
	Scheduler *scheduler.Scheduler
}
