package datastore

import (
	"strings"

	"gorm.io/gorm"

	"github.com/sheriffhq/sheriff/internal/errors"
)

const (
	component  = "datastore"
	sqlUnknown = "unknown"
)

// dbError wraps a gorm failure. ErrRecordNotFound becomes a not-found error
// for resource and constraint violations become conflicts.
func dbError(err error, operation, resource, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Newf("%s not found", resource).
			Component(component).
			Category(errors.CategoryNotFound).
			Context("operation", operation).
			Context("resource", resource).
			Context("id", id).
			Build()
	}
	category := errors.CategoryDatabase
	errorType := categorizeError(err)
	if errorType == "constraint_violation" {
		category = errors.CategoryConflict
	}
	return errors.New(err).
		Component(component).
		Category(category).
		Context("operation", operation).
		Context("resource", resource).
		Context("id", id).
		Context("error_type", errorType).
		Build()
}

func notInitialized(operation string) error {
	return errors.Newf("database connection is not initialized").
		Component(component).
		Category(errors.CategoryState).
		Context("operation", operation).
		Build()
}

// categorizeError categorizes database errors for metrics
func categorizeError(err error) string {
	if err == nil {
		return "none"
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "unique constraint") || strings.Contains(errStr, "duplicate"):
		return "constraint_violation"
	case strings.Contains(errStr, "deadlock"):
		return "deadlock"
	case strings.Contains(errStr, "foreign key"):
		return "foreign_key_violation"
	case strings.Contains(errStr, "not null"):
		return "null_violation"
	case strings.Contains(errStr, "database is locked"):
		return "database_locked"
	case strings.Contains(errStr, "connection"):
		return "connection_error"
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
		return "timeout"
	case strings.Contains(errStr, "syntax"):
		return "syntax_error"
	default:
		return "other"
	}
}
