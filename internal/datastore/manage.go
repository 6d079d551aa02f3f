package datastore

import (
	"time"

	"gorm.io/gorm"

	"github.com/sheriffhq/sheriff/internal/errors"
	"github.com/sheriffhq/sheriff/internal/logger"
)

// performAutoMigration creates or updates every table
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	migrationStart := time.Now()
	migrationLogger := GetLogger().With(logger.String("db_type", dbType))

	migrationLogger.Debug("Starting database migration")

	for _, model := range models() {
		if err := db.AutoMigrate(model); err != nil {
			migrationLogger.Error("Failed to migrate table", logger.Error(err))
			return errors.New(err).
				Component(component).
				Category(errors.CategoryDatabase).
				Context("operation", "auto_migrate").
				Context("db_type", dbType).
				Context("connection", connectionInfo).
				Build()
		}
	}

	if debug {
		migrationLogger.Info("Database migration completed",
			logger.String("connection", connectionInfo),
			logger.Int("tables_migrated", len(models())),
			logger.Duration("total_duration", time.Since(migrationStart)))
	}
	return nil
}

// closeDB closes the pool behind db
func closeDB(db *gorm.DB, dbType string) error {
	if db == nil {
		return notInitialized("close")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.New(err).Component(component).Category(errors.CategoryDatabase).Build()
	}
	if err := sqlDB.Close(); err != nil {
		GetLogger().Error("Failed to close database",
			logger.String("db_type", dbType),
			logger.Error(err))
		return errors.New(err).
			Component(component).
			Category(errors.CategoryDatabase).
			Context("operation", "close").
			Build()
	}
	return nil
}
