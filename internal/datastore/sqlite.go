package datastore

import (
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sheriffhq/sheriff/internal/conf"
	"github.com/sheriffhq/sheriff/internal/errors"
	"github.com/sheriffhq/sheriff/internal/logger"
)

const memoryPath = ":memory:"

// SQLiteStore implements DataStore for SQLite
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

func validateSQLiteConfig(settings *conf.Settings) error {
	if settings.Database.SQLite.Path == "" {
		return errors.Newf("sqlite path is empty").
			Component(component).
			Category(errors.CategoryConfiguration).
			Context("setting", "database.sqlite.path").
			Build()
	}
	return nil
}

// Open sets up the SQLite database connection and migrates the schema
func (store *SQLiteStore) Open() error {
	if err := validateSQLiteConfig(store.Settings); err != nil {
		return err
	}

	path := store.Settings.Database.SQLite.Path
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errors.New(err).
				Component(component).
				Category(errors.CategoryFileIO).
				Context("path", path).
				Build()
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: createGormLogger()})
	if err != nil {
		GetLogger().Error("failed to open SQLite database",
			logger.String("path", path),
			logger.Error(err))
		return errors.New(err).
			Component(component).
			Category(errors.CategoryDatabase).
			Context("operation", "open").
			Context("db_type", "SQLite").
			Build()
	}

	// sqlite serializes writers; a single connection also keeps :memory: shared
	sqlDB, err := db.DB()
	if err != nil {
		return errors.New(err).Component(component).Category(errors.CategoryDatabase).Build()
	}
	sqlDB.SetMaxOpenConns(1)

	store.DB = db
	return performAutoMigration(db, store.Settings.Debug, "SQLite", path)
}

// Close closes the SQLite connection
func (store *SQLiteStore) Close() error {
	return closeDB(store.DB, "SQLite")
}
