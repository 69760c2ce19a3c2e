package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeWithLogs(t, args...)
	return out, err
}

func executeWithLogs(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		renderPrefixes = nil
		renderDialect = "mysql"
		renderStrict = false
		renderStripSlashes = false
		verbose = false
		configPath = "sqlprep.yaml"
	})

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sqlprep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRender(t *testing.T) {
	out, err := execute(t, "render", "SELECT * FROM %t WHERE name = %s AND id = %d", "users", "O'Brien", "42abc", "--prefix", "wp_")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM wp_users WHERE name = 'O\\'Brien' AND id = 42\n", out)
}

func TestRenderPrefixListAndDialect(t *testing.T) {
	out, err := execute(t, "render", "SELECT %s FROM %1t", "it's", "posts", "-p", "wp_", "-p", "arch_", "-d", "postgres")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 'it''s' FROM arch_posts\n", out)
}

func TestRenderStrict(t *testing.T) {
	_, err := execute(t, "render", "SELECT %d, %d", "1", "--strict")
	assert.Error(t, err)

	_, err = execute(t, "render", "SELECT 1", "--dialect", "oracle")
	assert.ErrorContains(t, err, "unknown dialect")
}

func TestExecAgainstSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	path := writeConfig(t, "driver: sqlite\ndatabase:\n  database: "+dbPath+"\nprefix: t_\n")

	out, err := execute(t, "exec", "-c", path, "CREATE TABLE %t (id INTEGER PRIMARY KEY, name TEXT)", "items")
	require.NoError(t, err)
	assert.Equal(t, "other: 1\n", out)

	out, err = execute(t, "exec", "-c", path, "INSERT INTO %t (name) VALUES (%s)", "items", "pen")
	require.NoError(t, err)
	assert.Equal(t, "insert: 1\n", out)

	out, err = execute(t, "exec", "-c", path, "SELECT id, name FROM %t", "items")
	require.NoError(t, err)
	assert.Contains(t, out, "id  name")
	assert.Contains(t, out, "1   'pen'")

	_, err = execute(t, "exec", "-c", path, "INSERT INTO %t (name) VALUES (NULL)", "items")
	require.NoError(t, err)
	out, err = execute(t, "exec", "-c", path, "SELECT name FROM %t WHERE id = %d", "items", "2")
	require.NoError(t, err)
	assert.Equal(t, "name\nNULL\n", out)
}

func TestLoggingFollowsConfig(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	debugCfg := writeConfig(t, "driver: sqlite\ndatabase:\n  database: "+dbPath+"\nlogging:\n  level: debug\n")
	_, logs, err := executeWithLogs(t, "exec", "-c", debugCfg, "SELECT 1")
	require.NoError(t, err)
	assert.Contains(t, logs, `"msg":"query executed"`)

	warnCfg := writeConfig(t, "driver: sqlite\ndatabase:\n  database: "+dbPath+"\nlogging:\n  level: warn\n  format: console\n")
	_, logs, err = executeWithLogs(t, "exec", "-c", warnCfg, "SELECT 1")
	require.NoError(t, err)
	assert.NotContains(t, logs, "query executed")
	assert.NotContains(t, logs, "connected")

	_, logs, err = executeWithLogs(t, "exec", "-c", warnCfg, "--verbose", "SELECT 1")
	require.NoError(t, err)
	assert.Contains(t, logs, "query executed")
	assert.NotContains(t, logs, `"msg"`)
}

func TestBadLoggingConfig(t *testing.T) {
	path := writeConfig(t, "logging:\n  format: xml\n")
	_, err := execute(t, "render", "-c", path, "SELECT 1")
	assert.Error(t, err)
}

func TestMime(t *testing.T) {
	out, err := execute(t, "mime", ".png", "unknown")
	require.NoError(t, err)
	assert.Equal(t, ".png\timage/png\nunknown\tapplication/octet-stream\n", out)
}
