// conf/validate.go

package conf

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateServerSettings(&settings.Server); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateDatabaseSettings(&settings.Database); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateClientSettings(&settings.Client); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateWorkspaceSettings(&settings.Workspace); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateLoggingLevels(settings); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateSentrySettings(&settings.Telemetry.Sentry); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateServerSettings(s *ServerSettings) error {
	if err := validateListenAddress(s.Listen); err != nil {
		return fmt.Errorf("server.listen: %w", err)
	}
	if !strings.HasPrefix(s.BasePath, "/") {
		return fmt.Errorf("server.basepath must start with '/'")
	}
	return nil
}

func validateSentrySettings(s *SentrySettings) error {
	if !s.Enabled {
		return nil
	}
	if s.DSN == "" {
		return fmt.Errorf("telemetry.sentry.dsn is required when sentry is enabled")
	}
	if err := validateEnvURL(s.DSN); err != nil {
		return fmt.Errorf("telemetry.sentry.dsn: %w", err)
	}
	return nil
}

func validateListenAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("listen address is required")
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}

func validateDatabaseSettings(s *DatabaseSettings) error {
	switch s.Type {
	case DatabaseSQLite:
		if s.SQLite.Path == "" {
			return fmt.Errorf("database.sqlite.path is required for sqlite")
		}
	case DatabaseMySQL:
		var missing []string
		if s.MySQL.Host == "" {
			missing = append(missing, "host")
		}
		if s.MySQL.Database == "" {
			missing = append(missing, "database")
		}
		if s.MySQL.Username == "" {
			missing = append(missing, "username")
		}
		if len(missing) > 0 {
			return fmt.Errorf("database.mysql is missing %s", strings.Join(missing, ", "))
		}
		if s.MySQL.Port < 1 || s.MySQL.Port > 65535 {
			return fmt.Errorf("database.mysql.port must be between 1 and 65535")
		}
	default:
		return fmt.Errorf("database.type must be %q or %q, got %q", DatabaseSQLite, DatabaseMySQL, s.Type)
	}
	return nil
}

func validateClientSettings(s *ClientSettings) error {
	u, err := url.Parse(s.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("client.baseurl must be an absolute http(s) URL, got %q", s.BaseURL)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("client.timeout must be positive")
	}
	if s.RequestsPerSecond < 0 {
		return fmt.Errorf("client.requestspersecond cannot be negative")
	}
	return nil
}

func validateWorkspaceSettings(s *WorkspaceSettings) error {
	if strings.TrimSpace(s.PayloadSource) == "" {
		return fmt.Errorf("workspace.payloadsource is required")
	}
	if s.SnapshotTTL < 0 {
		return fmt.Errorf("workspace.snapshotttl cannot be negative")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

func validateLoggingLevels(settings *Settings) error {
	check := func(key, level string) error {
		if level != "" && !validLogLevels[level] {
			return fmt.Errorf("%s: unknown log level %q", key, level)
		}
		return nil
	}

	cfg := &settings.Logging
	if err := check("logging.default_level", cfg.DefaultLevel); err != nil {
		return err
	}
	if cfg.Console != nil {
		if err := check("logging.console.level", cfg.Console.Level); err != nil {
			return err
		}
	}
	if cfg.FileOutput != nil {
		if err := check("logging.file_output.level", cfg.FileOutput.Level); err != nil {
			return err
		}
	}
	for module, level := range cfg.ModuleLevels {
		if err := check("logging.module_levels."+module, level); err != nil {
			return err
		}
	}
	return nil
}
