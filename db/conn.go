// Package db opens the row store, SQLite by default or Postgres
package db

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"sharefile/share-api/internal/model"
	"sharefile/share-api/pkg/util"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultSQLitePath = "database.db"

// New opens the database configured under db.* and migrates it
func New() (*gorm.DB, error) {
	driver := viper.GetString("db.driver")
	dsn := viper.GetString("db.dsn")

	if driver == "sqlite" {
		if dsn == "" {
			dsn = defaultSQLitePath
		}

		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if util.IsRunningInDocker() {
			if _, err := os.Stat(dsn); errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", dsn)
			}
		}
	}

	return Open(driver, dsn)
}

// Open connects to the given driver and dsn and runs the migrations
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case "sqlite", "":
		if !strings.Contains(dsn, "?") {
			dsn += "?_busy_timeout=5000"
		}
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database, %w", driver, err)
	}

	// SQLite only has one writer anyway. A single connection keeps the quota
	// transactions from running into "database is locked"
	if driver != "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB, %w", err)
		}

		sqlDB.SetMaxOpenConns(1)
	}

	err = db.AutoMigrate(model.File{}, model.Subscription{}, model.Stats{}, model.Profile{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
