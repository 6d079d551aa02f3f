// Package conf provides configuration management for sheriff.
package conf

import "github.com/sheriffhq/sheriff/internal/logger"

// GetLogger returns the config package logger. It is fetched on each call
// because the central logger is installed after configuration loads.
func GetLogger() logger.Logger {
	return logger.Global().Module("config")
}
