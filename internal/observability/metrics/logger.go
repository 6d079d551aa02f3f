// Package metrics provides Prometheus metrics for observability.
package metrics

import "github.com/sheriffhq/sheriff/internal/logger"

// Package-level cached logger instance.
var log = logger.Global().Module("metrics")
