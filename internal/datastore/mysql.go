package datastore

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/sheriffhq/sheriff/internal/conf"
	"github.com/sheriffhq/sheriff/internal/errors"
	"github.com/sheriffhq/sheriff/internal/logger"
	"github.com/sheriffhq/sheriff/internal/secrets"
)

// MySQLStore implements DataStore for MySQL
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

func validateMySQLConfig(settings *conf.Settings) error {
	m := settings.Database.MySQL
	if m.Host == "" || m.Database == "" || m.Username == "" {
		return errors.Newf("mysql host, database and username are required").
			Component(component).
			Category(errors.CategoryConfiguration).
			Context("host", m.Host).
			Context("database", m.Database).
			Build()
	}
	return nil
}

// Open sets up the MySQL database connection and migrates the schema
func (store *MySQLStore) Open() error {
	if err := validateMySQLConfig(store.Settings); err != nil {
		return err
	}

	m := store.Settings.Database.MySQL
	password, err := secrets.Resolve(m.PasswordFile, m.Password)
	if err != nil {
		return errors.New(err).
			Component(component).
			Category(errors.CategoryConfiguration).
			Context("operation", "resolve_password").
			Build()
	}
	m.Password = password
	dsn := m.DSN()

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: createGormLogger()})
	if err != nil {
		GetLogger().Error("failed to open MySQL database",
			logger.String("host", m.Host),
			logger.Int("port", m.Port),
			logger.String("database", m.Database),
			logger.Error(err))
		return errors.New(err).
			Component(component).
			Category(errors.CategoryDatabase).
			Context("operation", "open").
			Context("db_type", "MySQL").
			Context("host", m.Host).
			Build()
	}

	store.DB = db
	return performAutoMigration(db, store.Settings.Debug, "MySQL", m.Database)
}

// Close closes the MySQL connection pool
func (store *MySQLStore) Close() error {
	return closeDB(store.DB, "MySQL")
}
