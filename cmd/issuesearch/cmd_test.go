package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issuesearch/internal/domain"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `organization = "acme"
backend = "sqlite"
sqlite_path = "` + filepath.ToSlash(filepath.Join(dir, "recent.db")) + `"
log_level = "error"

[tags]
level = ["error", "warning"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRecentSaveListClear(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := run(t, "--config", cfg, "recent", "save", "is:unresolved")
	require.NoError(t, err)
	_, err = run(t, "--config", cfg, "recent", "save", "level:error")
	require.NoError(t, err)

	out, err := run(t, "--config", cfg, "recent", "list", "--json")
	require.NoError(t, err)
	var got []domain.RecentSearch
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "level:error", got[0].Query)

	out, err = run(t, "--config", cfg, "recent", "list", "unres")
	require.NoError(t, err)
	assert.Contains(t, out, "is:unresolved")
	assert.NotContains(t, out, "level:error")

	_, err = run(t, "--config", cfg, "recent", "clear")
	require.NoError(t, err)
	out, err = run(t, "--config", cfg, "recent", "list", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestRecentRejectsUnknownType(t *testing.T) {
	cfg := writeTestConfig(t)
	_, err := run(t, "--config", cfg, "recent", "list", "--type", "transaction")
	assert.ErrorContains(t, err, "unknown search type")
}

func TestTagsCommands(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := run(t, "--config", cfg, "tags", "keys")
	require.NoError(t, err)
	assert.Contains(t, out, "level")

	out, err = run(t, "--config", cfg, "tags", "values", "level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "warning")
	assert.NotContains(t, out, "error")
}

func TestOrgFlagOverridesConfig(t *testing.T) {
	cfg := writeTestConfig(t)
	_, err := run(t, "--config", cfg, "--org", "other", "recent", "save", "is:resolved")
	require.NoError(t, err)

	out, err := run(t, "--config", cfg, "recent", "list", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestServeRefusesRemoteBackend(t *testing.T) {
	cfg := writeTestConfig(t)
	_, err := run(t, "--config", cfg, "--backend", "remote", "serve")
	assert.Error(t, err)
}
