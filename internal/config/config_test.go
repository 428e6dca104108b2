package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zachfleeman/tasuki/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TASUKI_CONFIG", "TASUKI_LOG_LEVEL", "TASUKI_LOG_ENCODING",
		"TASUKI_TODO_FILE", "TASUKI_VAULT_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Encoding)
	assert.False(t, cfg.Backends.Local.Enabled)
	assert.Contains(t, cfg.Backends.Local.Path, filepath.Join(".tasuki", "todo.txt"))
	assert.Equal(t, []string{".obsidian", ".trash", ".git"}, cfg.Backends.Obsidian.IgnoreFolders)
	assert.Equal(t, "Inbox.md", cfg.Backends.Obsidian.InboxFile)
}

func TestLoadFullFile(t *testing.T) {
	clearEnv(t)
	vault := t.TempDir()
	todo := filepath.Join(t.TempDir(), "todo.txt")

	path := writeConfig(t, `
[logger]
level = "debug"
encoding = "json"

[backends.local]
enabled = true
path = "`+todo+`"

[backends.obsidian]
enabled = true
vault_path = "`+vault+`"
folders = ["Daily Notes", "Projects"]
ignore_folders = ["Archive"]
inbox_file = "Capture.md"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Encoding)
	assert.Equal(t, todo, cfg.Backends.Local.Path)
	assert.Equal(t, vault, cfg.Backends.Obsidian.VaultPath)
	assert.Equal(t, []string{"Daily Notes", "Projects"}, cfg.Backends.Obsidian.Folders)
	assert.Equal(t, []string{"Archive"}, cfg.Backends.Obsidian.IgnoreFolders)
	assert.Equal(t, "Capture.md", cfg.Backends.Obsidian.InboxFile)
}

func TestLoadCreatesLocalParentDir(t *testing.T) {
	clearEnv(t)
	todo := filepath.Join(t.TempDir(), "deep", "nested", "todo.txt")

	path := writeConfig(t, `
[backends.local]
enabled = true
path = "`+todo+`"
`)

	_, err := Load(path)
	require.NoError(t, err)
	assert.DirExists(t, filepath.Dir(todo))
}

func TestLoadObsidianRequiresVaultPath(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
[backends.obsidian]
enabled = true
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConfig))
	assert.Contains(t, err.Error(), "vault_path")
}

func TestLoadMalformedTOML(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeConfig(t, "not [valid toml"))
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConfig))
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	vault := t.TempDir()
	todo := filepath.Join(t.TempDir(), "env-todo.txt")

	path := writeConfig(t, `
[logger]
level = "warn"

[backends.obsidian]
enabled = true
vault_path = "/ignored"
`)

	t.Setenv("TASUKI_LOG_LEVEL", "debug")
	t.Setenv("TASUKI_TODO_FILE", todo)
	t.Setenv("TASUKI_VAULT_PATH", vault)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, todo, cfg.Backends.Local.Path)
	assert.Equal(t, vault, cfg.Backends.Obsidian.VaultPath)
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandTilde("~/notes/todo.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "notes", "todo.txt"), got)

	got, err = expandTilde("/absolute/todo.txt")
	require.NoError(t, err)
	assert.Equal(t, "/absolute/todo.txt", got)
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("tasuki", "config.toml"), filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path)))
}
