// env.go - environment variable configuration and validation
package conf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. SHERIFF_SERVER_LISTEN
const EnvPrefix = "SHERIFF"

type envBinding struct {
	ConfigKey string
	EnvVar    string
	Validate  func(string) error
}

// getEnvBindings lists variables that get validated before use.
// Other keys are still reachable through AutomaticEnv.
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "SHERIFF_DEBUG", validateEnvBool},
		{"server.listen", "SHERIFF_SERVER_LISTEN", validateEnvListen},
		{"database.type", "SHERIFF_DATABASE_TYPE", validateEnvDatabaseType},
		{"database.sqlite.path", "SHERIFF_DATABASE_SQLITE_PATH", nil},
		{"database.mysql.port", "SHERIFF_DATABASE_MYSQL_PORT", validateEnvPort},
		{"database.mysql.passwordfile", "SHERIFF_DATABASE_MYSQL_PASSWORDFILE", nil},
		{"client.baseurl", "SHERIFF_CLIENT_BASEURL", validateEnvURL},
		{"client.timeout", "SHERIFF_CLIENT_TIMEOUT", validateEnvDuration},
		{"client.requestspersecond", "SHERIFF_CLIENT_REQUESTSPERSECOND", validateEnvNonNegativeFloat},
		{"workspace.multilabel", "SHERIFF_WORKSPACE_MULTILABEL", validateEnvBool},
		{"workspace.snapshotttl", "SHERIFF_WORKSPACE_SNAPSHOTTTL", validateEnvDuration},
		{"telemetry.sentry.enabled", "SHERIFF_TELEMETRY_SENTRY_ENABLED", validateEnvBool},
		{"telemetry.sentry.dsn", "SHERIFF_TELEMETRY_SENTRY_DSN", validateEnvURL},
	}
}

// bindEnvVars enables SHERIFF_ prefixed overrides and validates the known ones.
// Invalid values are reported but still bound; ValidateSettings has the final word.
func bindEnvVars() error {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var warnings []string
	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate == nil {
			continue
		}
		if envValue := os.Getenv(binding.EnvVar); envValue != "" {
			if err := binding.Validate(envValue); err != nil {
				warnings = append(warnings, fmt.Sprintf("invalid %s value %q: %v", binding.EnvVar, envValue, err))
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}
	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be true or false")
	}
	return nil
}

func validateEnvListen(value string) error {
	return validateListenAddress(value)
}

func validateEnvDatabaseType(value string) error {
	switch value {
	case DatabaseSQLite, DatabaseMySQL:
		return nil
	default:
		return fmt.Errorf("must be %q or %q", DatabaseSQLite, DatabaseMySQL)
	}
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("must be a port between 1 and 65535")
	}
	return nil
}

func validateEnvURL(value string) error {
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an absolute http(s) URL")
	}
	return nil
}

func validateEnvDuration(value string) error {
	if _, err := time.ParseDuration(value); err != nil {
		return fmt.Errorf("must be a duration such as 30s or 5m")
	}
	return nil
}

func validateEnvNonNegativeFloat(value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return fmt.Errorf("must be a non-negative number")
	}
	return nil
}
