package logger

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sheriffhq/sheriff/internal/errors"
)

// GormLoggerAdapter routes gorm output into a module logger. Statements log
// at trace and carry the trace ID of the request context.
type GormLoggerAdapter struct {
	logger        Logger
	slowThreshold time.Duration
}

// NewGormLoggerAdapter returns an adapter that warns about statements slower
// than slowThreshold; 0 turns slow statement warnings off.
func NewGormLoggerAdapter(logger Logger, slowThreshold time.Duration) *GormLoggerAdapter {
	if logger == nil {
		logger = NewSlogLogger(nil, LogLevelInfo, nil)
	}
	return &GormLoggerAdapter{logger: logger, slowThreshold: slowThreshold}
}

// LogMode is ignored; levels come from logging.module_levels
func (a *GormLoggerAdapter) LogMode(gormlogger.LogLevel) gormlogger.Interface { return a }

func (a *GormLoggerAdapter) Info(ctx context.Context, msg string, data ...any) {
	a.logger.WithContext(ctx).Debug(fmt.Sprintf(msg, data...))
}

func (a *GormLoggerAdapter) Warn(ctx context.Context, msg string, data ...any) {
	a.logger.WithContext(ctx).Warn(fmt.Sprintf(msg, data...))
}

func (a *GormLoggerAdapter) Error(ctx context.Context, msg string, data ...any) {
	a.logger.WithContext(ctx).Error(fmt.Sprintf(msg, data...))
}

// Trace logs one executed statement
func (a *GormLoggerAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	log := a.logger.WithContext(ctx).With(String("sql", sql), Int64("rows", rows), Duration("elapsed", elapsed))

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		log.Debug("record not found")
	case err != nil:
		log.Warn("statement failed", Error(err))
	case a.slowThreshold > 0 && elapsed > a.slowThreshold:
		log.Warn("slow statement", Duration("threshold", a.slowThreshold))
	default:
		log.Trace("statement")
	}
}
