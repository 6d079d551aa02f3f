// config.go: settings struct for the sheriff workspace plus load and save helpers.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sheriffhq/sheriff/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// ServerSettings configures the HTTP API server
type ServerSettings struct {
	Listen         string   `yaml:"listen"`         // host:port to bind
	BasePath       string   `yaml:"basepath"`       // API prefix, /api/v1 by default
	AllowedOrigins []string `yaml:"allowedorigins"` // CORS origins of the labeling UI
	BodyLimit      string   `yaml:"bodylimit"`      // largest accepted request body, e.g. 10M
}

// SQLiteSettings configures the sqlite backend
type SQLiteSettings struct {
	Path string `yaml:"path"` // database file, ":memory:" for ephemeral stores
}

// MySQLSettings configures the mysql backend
type MySQLSettings struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"` // may reference ${ENV} variables
	// PasswordFile, when set, holds the password and takes precedence
	PasswordFile string `yaml:"passwordfile"`
	Database     string `yaml:"database"`
}

// DSN renders the go-sql-driver connection string
func (m MySQLSettings) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		m.Username, m.Password, net.JoinHostPort(m.Host, strconv.Itoa(m.Port)), m.Database)
}

// DatabaseSettings selects and configures the datastore backend
type DatabaseSettings struct {
	Type   string         `yaml:"type"` // sqlite or mysql
	SQLite SQLiteSettings `yaml:"sqlite"`
	MySQL  MySQLSettings  `yaml:"mysql"`
}

// ClientSettings configures the REST client used by the CLI
type ClientSettings struct {
	BaseURL           string        `yaml:"baseurl"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requestspersecond"` // pacing for bulk deletes, 0 disables
}

// WorkspaceSettings holds annotation workflow defaults
type WorkspaceSettings struct {
	MultiLabel    bool          `yaml:"multilabel"`
	PayloadSource string        `yaml:"payloadsource"` // value written to payload.source
	SnapshotTTL   time.Duration `yaml:"snapshotttl"`   // how long fetched project data stays cached
}

// SentrySettings configures opt-in error reporting
type SentrySettings struct {
	Enabled     bool   `yaml:"enabled"`
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
}

// TelemetrySettings groups external reporting sinks
type TelemetrySettings struct {
	Sentry SentrySettings `yaml:"sentry"`
}

// Settings contains all configuration options for sheriff
type Settings struct {
	Debug     bool                 `yaml:"debug"`
	Server    ServerSettings       `yaml:"server"`
	Database  DatabaseSettings     `yaml:"database"`
	Client    ClientSettings       `yaml:"client"`
	Workspace WorkspaceSettings    `yaml:"workspace"`
	Logging   logger.LoggingConfig `yaml:"logging"`
	Telemetry TelemetrySettings    `yaml:"telemetry"`
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
// An empty configFile searches the default config paths.
func Load(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := initViper(configFile); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper registers defaults and env bindings, then reads the config file.
func initViper(configFile string) error {
	viper.SetConfigType("yaml")
	setDefaultConfig()

	if err := bindEnvVars(); err != nil {
		GetLogger().Warn("environment configuration issues", logger.Error(err))
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
		return nil
	}

	viper.SetConfigName("config")
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded config.yaml to the user config directory
func createDefaultConfig() error {
	configDir, err := defaultConfigDir()
	if err != nil {
		return err
	}
	configPath := filepath.Join(configDir, "config.yaml")

	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return fmt.Errorf("error reading embedded config: %w", err)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	GetLogger().Info("created default config file", logger.String("path", configPath))
	return viper.ReadInConfig()
}

// GetSettings returns the current settings instance, nil before Load
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveSettings writes the current settings back to the config file in use.
func SaveSettings() error {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()

	if settingsInstance == nil {
		return fmt.Errorf("settings not loaded")
	}

	configPath := viper.ConfigFileUsed()
	if configPath == "" {
		var err error
		if configPath, err = FindConfigFile(); err != nil {
			return fmt.Errorf("error finding config file: %w", err)
		}
	}

	settingsCopy := *settingsInstance
	if err := SaveYAMLConfig(configPath, &settingsCopy); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	GetLogger().Info("settings saved", logger.String("path", configPath))
	return nil
}

// SaveYAMLConfig writes settings to configPath through a temp file and rename.
// Comments in an existing file are not preserved.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := moveFile(tempFileName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}

	return nil
}
