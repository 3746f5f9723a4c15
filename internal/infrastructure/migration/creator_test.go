package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add galleys table", "add_galleys_table"},
		{"Add-Galleys-Table", "add_galleys_table"},
		{"ADD_GALLEYS_TABLE", "add_galleys_table"},
		{"add__galleys__table", "add_galleys_table"},
		{"Add Issues 123", "add_issues_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add frozen author orcid", "Store ORCID on frozen authors")
	require.NoError(t, err)

	assert.Len(t, mf.Version, 14)
	assert.True(t, strings.HasSuffix(mf.UpPath, "_add_frozen_author_orcid.up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, "_add_frozen_author_orcid.down.sql"))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Store ORCID on frozen authors")
	assert.Contains(t, string(up), "BEGIN;")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(nested, "test", "")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{
		"000003_add_galleys.up.sql",
		"000003_add_galleys.down.sql",
		"000001_init.up.sql",
		"000001_init.down.sql",
		"000002_add_issues.up.sql",
		"README.md",
		"notaversion_x.up.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- test"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "000009_dir.up.sql"), 0o755))

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)

	assert.Equal(t, []MigrationInfo{
		{Version: 1, Name: "init", HasDown: true},
		{Version: 2, Name: "add_issues", HasDown: false},
		{Version: 3, Name: "add_galleys", HasDown: true},
	}, migrations)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	migrations, err := ListMigrations("/nonexistent/path/to/migrations")
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestRepositoryMigrationsArePaired(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for _, m := range migrations {
		assert.True(t, m.HasDown, "migration %s has no down file", m.BaseName())
	}
}
