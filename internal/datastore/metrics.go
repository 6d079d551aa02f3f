// Package datastore provides type aliases and integration with the observability metrics package
package datastore

import (
	"time"

	"gorm.io/gorm"

	"github.com/sheriffhq/sheriff/internal/errors"
	"github.com/sheriffhq/sheriff/internal/observability/metrics"
)

// Metrics is a type alias for metrics.DatastoreMetrics
type Metrics = metrics.DatastoreMetrics

const startedKey = "sheriff:metrics_started"

// SetMetrics instruments every statement of an open store
func (ds *DataStore) SetMetrics(m *Metrics) error {
	if ds.DB == nil {
		return notInitialized("set_metrics")
	}
	if m == nil {
		return nil
	}
	return registerMetricsCallbacks(ds.DB, m)
}

func registerMetricsCallbacks(db *gorm.DB, m *Metrics) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(startedKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			table := tx.Statement.Table
			if table == "" {
				table = sqlUnknown
			}
			if v, ok := tx.InstanceGet(startedKey); ok {
				if started, ok := v.(time.Time); ok {
					m.RecordDbOperationDuration(operation, table, time.Since(started).Seconds())
				}
			}
			if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
				m.RecordDbOperation(operation, table, metrics.StatusError)
				m.RecordDbOperationError(operation, table, categorizeError(tx.Error))
				return
			}
			m.RecordDbOperation(operation, table, metrics.StatusSuccess)
		}
	}

	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("sheriff:metrics_before_create", before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("sheriff:metrics_after_create", after("create")); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("sheriff:metrics_before_query", before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("sheriff:metrics_after_query", after("query")); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("sheriff:metrics_before_update", before); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("sheriff:metrics_after_update", after("update")); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("sheriff:metrics_before_delete", before); err != nil {
		return err
	}
	return cb.Delete().After("gorm:delete").Register("sheriff:metrics_after_delete", after("delete"))
}
