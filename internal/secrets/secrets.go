// Package secrets resolves credentials from environment references or
// mounted secret files (Docker and Kubernetes secrets).
//
// Secret values are never logged.
package secrets

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sheriffhq/sheriff/internal/errors"
	"github.com/sheriffhq/sheriff/internal/logger"
)

const (
	componentName = "secrets"

	// maxSecretFileSize limits secret file reads
	maxSecretFileSize = 64 * 1024
)

// ExpandString expands ${VAR} and ${VAR:-default} references in s. A
// referenced variable that is unset and has no fallback is an error.
func ExpandString(s string) (string, error) {
	if s == "" {
		return "", nil
	}

	var missing []string
	expanded := os.Expand(s, func(key string) string {
		name, fallback, hasFallback := strings.Cut(key, ":-")
		if value := os.Getenv(name); value != "" {
			return value
		}
		if hasFallback {
			return fallback
		}
		missing = append(missing, name)
		return ""
	})

	if len(missing) > 0 {
		return "", errors.Newf("missing required environment variable(s): %s", strings.Join(missing, ", ")).
			Component(componentName).
			Category(errors.CategoryConfiguration).
			Build()
	}
	return expanded, nil
}

// ReadFile reads a secret file and trims trailing newlines. Files readable
// by group or others are accepted with a warning.
func ReadFile(path string) (string, error) {
	if path == "" {
		return "", fileError(errors.NewStd("secret file path is empty"), path)
	}
	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", fileError(err, cleanPath)
	}
	if !info.Mode().IsRegular() {
		return "", fileError(errors.NewStd("secret path is not a regular file"), cleanPath)
	}
	if info.Size() > maxSecretFileSize {
		return "", fileError(errors.NewStd("secret file too large"), cleanPath)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Global().Module(componentName).Warn("secret file is readable by group or others",
			logger.String("path", cleanPath),
			logger.String("perm", perm.String()))
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fileError(err, cleanPath)
	}
	secret := strings.TrimRight(string(data), "\r\n")
	if secret == "" {
		return "", fileError(errors.NewStd("secret file is empty"), cleanPath)
	}
	return secret, nil
}

// Resolve returns the secret from filePath when set, else value with
// environment references expanded.
func Resolve(filePath, value string) (string, error) {
	if filePath != "" {
		return ReadFile(filePath)
	}
	return ExpandString(value)
}

func fileError(err error, path string) error {
	return errors.New(err).
		Component(componentName).
		Category(errors.CategoryFileIO).
		Context("path", path).
		Build()
}
