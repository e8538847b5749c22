package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	home := t.TempDir()
	cfg, err := load(filepath.Join(home, "missing.toml"), home, false)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config", "mda", "mda.db"), cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Empty(t, cfg.DumpPath)
	assert.NotEmpty(t, cfg.Viewer)
	require.NoError(t, cfg.Validate())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestLoadOverridesAndExpandsHome(t *testing.T) {
	home := t.TempDir()
	path := writeConfig(t, `
dump_path = "~/Downloads/facebook.zip"
timezone = "UTC"
db_path = "/tmp/mda.db"
log_level = "debug"
log_format = "json"
viewer = "feh"
`)
	cfg, err := load(path, home, true)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "Downloads", "facebook.zip"), cfg.DumpPath)
	assert.Equal(t, "/tmp/mda.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "feh", cfg.Viewer)
	require.NoError(t, cfg.Validate())

	loc, err := cfg.Location()
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadRequiredMissing(t *testing.T) {
	home := t.TempDir()
	_, err := load(filepath.Join(home, "nope.toml"), home, true)
	assert.Error(t, err)
}

func TestLoadBadTOML(t *testing.T) {
	home := t.TempDir()
	_, err := load(writeConfig(t, "dump_path = "), home, false)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{LogLevel: "info", LogFormat: "console"}

	bad := base
	bad.LogLevel = "chatty"
	assert.Error(t, bad.Validate())

	bad = base
	bad.LogFormat = "xml"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Timezone = "Not/AZone"
	assert.Error(t, bad.Validate())
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, filepath.Join("/home/u", "x"), expandHome("~/x", "/home/u"))
	assert.Equal(t, "/abs", expandHome("/abs", "/home/u"))
	assert.Equal(t, "~", expandHome("~", "/home/u"))
}
