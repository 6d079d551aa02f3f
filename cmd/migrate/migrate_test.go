package migrate

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheriffhq/sheriff/internal/conf"
	"github.com/sheriffhq/sheriff/internal/datastore"
)

func sqliteSettings(path string) *conf.Settings {
	s := &conf.Settings{}
	s.Database.Type = conf.DatabaseSQLite
	s.Database.SQLite.Path = path
	return s
}

func TestMigrateCommand(t *testing.T) {
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "source.db")
	targetPath := filepath.Join(dir, "target.db")

	source := datastore.New(sqliteSettings(sourcePath))
	require.NoError(t, source.Open())
	p := datastore.Project{Name: "birds"}
	require.NoError(t, source.CreateProject(t.Context(), &p))
	require.NoError(t, source.Close())

	cmd := Command(sqliteSettings(targetPath))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--sqlite-path", sourcePath})
	require.NoError(t, cmd.ExecuteContext(t.Context()))
	assert.Contains(t, out.String(), "projects")

	target := datastore.New(sqliteSettings(targetPath))
	require.NoError(t, target.Open())
	t.Cleanup(func() { _ = target.Close() })
	got, err := target.GetProject(t.Context(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "birds", got.Name)
}

func TestMigrateCommand_Validation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "same.db")

	cmd := Command(sqliteSettings(path))
	cmd.SetArgs([]string{"--sqlite-path", path})
	assert.ErrorContains(t, cmd.ExecuteContext(t.Context()), "same database")

	cmd = Command(sqliteSettings(path))
	cmd.SetArgs([]string{"--sqlite-path", filepath.Join(dir, "missing.db")})
	assert.ErrorContains(t, cmd.ExecuteContext(t.Context()), "sqlite database not found")
}
