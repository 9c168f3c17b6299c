package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, ":7776", cfg.Server.Address)
	assert.Equal(t, 2, cfg.Server.MinPlayers)
	assert.Equal(t, 6, cfg.Server.MaxPlayers)
	assert.Equal(t, 20*time.Second, cfg.Server.SignupWindow)
	assert.Equal(t, 7, cfg.Game.Columns)
	assert.Equal(t, 1000, cfg.Game.MaxRounds)
	assert.Equal(t, 4*time.Second, cfg.Remote.CallTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoadYamlFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  address: ":9000"
  min_players: 3
game:
  columns: 9
  rows: 9
logging:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, 3, cfg.Server.MinPlayers)
	assert.Equal(t, 9, cfg.Game.Columns)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 6, cfg.Server.MaxPlayers, "unset keys keep defaults")
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Game.Columns)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LABYRINTH_SERVER_MIN_PLAYERS", "4")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Server.MinPlayers)
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  min_players: 1\n"), 0o644))

	_, err := Load(path)

	require.Error(t, err)
}
