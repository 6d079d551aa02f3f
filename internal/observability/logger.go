package observability

import "github.com/sheriffhq/sheriff/internal/logger"

// Package-level cached logger instance.
var log = logger.Global().Module("metrics")
