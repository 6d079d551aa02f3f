// conf/utils.go path helpers for the configuration package
package conf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sheriffhq/sheriff/internal/errors"
	"github.com/sheriffhq/sheriff/internal/logger"
)

// GetDefaultConfigPaths returns the directories searched for config.yaml,
// in priority order: working directory, user config directory, /etc/sheriff.
func GetDefaultConfigPaths() ([]string, error) {
	configDir, err := defaultConfigDir()
	if err != nil {
		return nil, err
	}
	return []string{".", configDir, "/etc/sheriff"}, nil
}

// defaultConfigDir is where a missing config gets created
func defaultConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "get-home-directory").
			Build()
	}
	return filepath.Join(homeDir, ".config", "sheriff"), nil
}

// FindConfigFile returns the first existing config.yaml in the default paths
func FindConfigFile() (string, error) {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return "", errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "find-config-paths").
			Build()
	}

	for _, path := range configPaths {
		configFilePath := filepath.Join(path, "config.yaml")
		if _, err := os.Stat(configFilePath); err == nil {
			return configFilePath, nil
		}
	}

	return "", errors.Newf("config file not found").
		Category(errors.CategoryFileIO).
		Context("operation", "find-config-file").
		Build()
}

// moveFile renames src to dst, falling back to copy and delete across filesystems
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	srcFile, err := os.Open(src) //nolint:gosec // src is a temp file we created
	if err != nil {
		return fmt.Errorf("error opening source file: %w", err)
	}
	defer func() {
		if err := srcFile.Close(); err != nil {
			GetLogger().Warn("failed to close source file", logger.Error(err))
		}
	}()

	dstFile, err := os.Create(dst) //nolint:gosec // dst is the configured config path
	if err != nil {
		return fmt.Errorf("error creating destination file: %w", err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return fmt.Errorf("error copying file: %w", err)
	}
	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("error closing destination file: %w", err)
	}

	return os.Remove(src)
}
