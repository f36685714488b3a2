package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/taskbot/internal/tasks"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "test-token"
  run_mode: longpoll
database:
  host: localhost
  port: "5432"
  user: u
  password: p
  name: taskbot
  sslmode: disable
tasks:
  date_layouts:
    - "02.01.2006"
  collect_assignee: true
  case_sensitive_search: true
access:
  allowed_ids: [11, 22]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.Core.Telegram.Token)
	assert.Equal(t, "longpoll", cfg.Core.Telegram.RunMode)
	assert.Equal(t, "taskbot", cfg.Database.Name)
	assert.Equal(t, []string{"02.01.2006"}, cfg.Tasks.DateLayouts)
	assert.True(t, cfg.Tasks.CollectAssignee)
	assert.True(t, cfg.Tasks.CaseSensitiveSearch)
	assert.Equal(t, []int64{11, 22}, cfg.Access.AllowedIDs)
}

func TestLoadDefaultsDateLayouts(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "test-token"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, tasks.DefaultDateLayouts, cfg.Tasks.DateLayouts)
	assert.Empty(t, cfg.Access.AllowedIDs, "empty allow-list means open access")
}

func TestLoadMissingToken(t *testing.T) {
	path := writeConfig(t, `
telegram:
  run_mode: longpoll
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
