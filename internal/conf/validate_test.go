package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheriffhq/sheriff/internal/logger"
)

func validSettings() *Settings {
	return &Settings{
		Server:   ServerSettings{Listen: "127.0.0.1:8080", BasePath: DefaultBasePath},
		Database: DatabaseSettings{Type: DatabaseSQLite, SQLite: SQLiteSettings{Path: ":memory:"}},
		Client: ClientSettings{
			BaseURL: "http://localhost:8080/api/v1",
			Timeout: time.Second,
		},
		Workspace: WorkspaceSettings{PayloadSource: DefaultPayloadSource},
		Logging:   logger.LoggingConfig{DefaultLevel: "info"},
	}
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"valid", func(*Settings) {}, ""},
		{"bad listen", func(s *Settings) { s.Server.Listen = "localhost" }, "server.listen"},
		{"bad basepath", func(s *Settings) { s.Server.BasePath = "api" }, "server.basepath"},
		{"unknown database", func(s *Settings) { s.Database.Type = "pg" }, "database.type"},
		{"sqlite without path", func(s *Settings) { s.Database.SQLite.Path = "" }, "database.sqlite.path"},
		{"mysql missing fields", func(s *Settings) {
			s.Database.Type = DatabaseMySQL
			s.Database.MySQL = MySQLSettings{Port: 3306}
		}, "missing host, database, username"},
		{"relative base url", func(s *Settings) { s.Client.BaseURL = "/api/v1" }, "client.baseurl"},
		{"zero timeout", func(s *Settings) { s.Client.Timeout = 0 }, "client.timeout"},
		{"negative rate", func(s *Settings) { s.Client.RequestsPerSecond = -1 }, "requestspersecond"},
		{"blank payload source", func(s *Settings) { s.Workspace.PayloadSource = "  " }, "payloadsource"},
		{"sentry without dsn", func(s *Settings) { s.Telemetry.Sentry.Enabled = true }, "telemetry.sentry.dsn"},
		{"sentry with dsn", func(s *Settings) {
			s.Telemetry.Sentry = SentrySettings{Enabled: true, DSN: "https://key@o1.ingest.sentry.io/2"}
		}, ""},
		{"bad module level", func(s *Settings) {
			s.Logging.ModuleLevels = map[string]string{"session": "loud"}
		}, "logging.module_levels.session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := validSettings()
			tt.mutate(s)

			err := ValidateSettings(s)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvValidators(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validateEnvBool("true"))
	assert.Error(t, validateEnvBool("yes please"))
	assert.NoError(t, validateEnvPort("3306"))
	assert.Error(t, validateEnvPort("70000"))
	assert.NoError(t, validateEnvURL("https://labels.example.com/api/v1"))
	assert.Error(t, validateEnvURL("labels.example.com"))
	assert.NoError(t, validateEnvDuration("45s"))
	assert.Error(t, validateEnvDuration("45"))
	assert.NoError(t, validateEnvDatabaseType(DatabaseMySQL))
	assert.Error(t, validateEnvDatabaseType("postgres"))
	assert.Error(t, validateEnvNonNegativeFloat("-2"))
}
