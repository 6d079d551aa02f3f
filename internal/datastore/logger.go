package datastore

import (
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/sheriffhq/sheriff/internal/logger"
)

// DefaultSlowQueryThreshold is the duration after which a statement logs as slow
const DefaultSlowQueryThreshold = 200 * time.Millisecond

// GetLogger returns the datastore module logger
func GetLogger() logger.Logger {
	return logger.Global().Module("datastore")
}

func createGormLogger() gormlogger.Interface {
	return logger.NewGormLoggerAdapter(GetLogger(), DefaultSlowQueryThreshold)
}
