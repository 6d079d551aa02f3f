// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"

	"github.com/sheriffhq/sheriff/internal/logger"
)

const (
	DatabaseSQLite = "sqlite"
	DatabaseMySQL  = "mysql"

	DefaultBasePath      = "/api/v1"
	DefaultPayloadSource = "web-ui"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("server.listen", "127.0.0.1:8080")
	viper.SetDefault("server.basepath", DefaultBasePath)
	viper.SetDefault("server.allowedorigins", []string{"*"})
	viper.SetDefault("server.bodylimit", "10M")

	viper.SetDefault("database.type", DatabaseSQLite)
	viper.SetDefault("database.sqlite.path", "sheriff.db")
	viper.SetDefault("database.mysql.host", "localhost")
	viper.SetDefault("database.mysql.port", 3306)
	viper.SetDefault("database.mysql.username", "")
	viper.SetDefault("database.mysql.password", "")
	viper.SetDefault("database.mysql.passwordfile", "")
	viper.SetDefault("database.mysql.database", "sheriff")

	viper.SetDefault("client.baseurl", "http://127.0.0.1:8080/api/v1")
	viper.SetDefault("client.timeout", 30*time.Second)
	viper.SetDefault("client.requestspersecond", 10.0)

	viper.SetDefault("workspace.multilabel", false)
	viper.SetDefault("workspace.payloadsource", DefaultPayloadSource)
	viper.SetDefault("workspace.snapshotttl", 5*time.Minute)

	viper.SetDefault("logging.default_level", logger.DefaultLogLevel)
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", logger.DefaultConsoleEnabled)
	viper.SetDefault("logging.console.level", logger.DefaultLogLevel)
	viper.SetDefault("logging.file_output.enabled", logger.DefaultFileEnabled)
	viper.SetDefault("logging.file_output.path", logger.DefaultLogPath)
	viper.SetDefault("logging.file_output.level", logger.DefaultLogLevel)

	viper.SetDefault("telemetry.sentry.enabled", false)
	viper.SetDefault("telemetry.sentry.dsn", "")
	viper.SetDefault("telemetry.sentry.environment", "production")
}
