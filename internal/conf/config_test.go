package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_EmbeddedDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	data, err := configFiles.ReadFile("config.yaml")
	require.NoError(t, err)

	settings, err := Load(writeConfig(t, string(data)))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", settings.Server.Listen)
	assert.Equal(t, DefaultBasePath, settings.Server.BasePath)
	assert.Equal(t, DatabaseSQLite, settings.Database.Type)
	assert.Equal(t, 30*time.Second, settings.Client.Timeout)
	assert.InDelta(t, 10.0, settings.Client.RequestsPerSecond, 0.001)
	assert.Equal(t, DefaultPayloadSource, settings.Workspace.PayloadSource)
	assert.Equal(t, 5*time.Minute, settings.Workspace.SnapshotTTL)
	require.NotNil(t, settings.Logging.Console)
	assert.True(t, settings.Logging.Console.Enabled)
	assert.Equal(t, []string{"*"}, settings.Server.AllowedOrigins)
	assert.Equal(t, "10M", settings.Server.BodyLimit)
	assert.False(t, settings.Telemetry.Sentry.Enabled)
	assert.Equal(t, "production", settings.Telemetry.Sentry.Environment)
	assert.Same(t, settings, GetSettings())
}

func TestLoad_PartialFileFallsBackToDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	settings, err := Load(writeConfig(t, "workspace:\n  multilabel: true\n"))
	require.NoError(t, err)

	assert.True(t, settings.Workspace.MultiLabel)
	assert.Equal(t, "sheriff.db", settings.Database.SQLite.Path)
	assert.Equal(t, "http://127.0.0.1:8080/api/v1", settings.Client.BaseURL)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("SHERIFF_SERVER_LISTEN", "0.0.0.0:9090")
	t.Setenv("SHERIFF_WORKSPACE_PAYLOADSOURCE", "cli")

	settings, err := Load(writeConfig(t, "debug: true\n"))
	require.NoError(t, err)

	assert.True(t, settings.Debug)
	assert.Equal(t, "0.0.0.0:9090", settings.Server.Listen)
	assert.Equal(t, "cli", settings.Workspace.PayloadSource)
}

func TestLoad_InvalidSettings(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_, err := Load(writeConfig(t, "database:\n  type: postgres\nclient:\n  timeout: 0s\n"))
	require.Error(t, err)

	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 2)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveYAMLConfig_RoundTrip(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := writeConfig(t, "")
	original, err := Load(path)
	require.NoError(t, err)

	original.Workspace.MultiLabel = true
	original.Workspace.SnapshotTTL = 90 * time.Second
	original.Database.SQLite.Path = "/var/lib/sheriff/labels.db"
	require.NoError(t, SaveYAMLConfig(path, original))

	viper.Reset()
	reloaded, err := Load(path)
	require.NoError(t, err)

	assert.True(t, reloaded.Workspace.MultiLabel)
	assert.Equal(t, 90*time.Second, reloaded.Workspace.SnapshotTTL)
	assert.Equal(t, "/var/lib/sheriff/labels.db", reloaded.Database.SQLite.Path)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestMySQLDSN(t *testing.T) {
	t.Parallel()

	m := MySQLSettings{Host: "db", Port: 3307, Username: "u", Password: "p", Database: "labels"}
	assert.Equal(t, "u:p@tcp(db:3307)/labels?charset=utf8mb4&parseTime=True&loc=Local", m.DSN())
}
