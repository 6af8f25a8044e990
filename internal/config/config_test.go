package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmouel/worksetview/internal/theme"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, theme.DraculaName, cfg.Theme)
	assert.True(t, cfg.ShowIcons)
	assert.True(t, cfg.RelatedFiles)
	assert.True(t, cfg.AutoRefresh)
	assert.Equal(t, 8, cfg.MaxRelatedShown)
}

func TestLoadConfigMissingFileGivesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
theme: nord
show_icons: false
related_files: false
max_related_shown: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, theme.NordName, cfg.Theme)
	assert.False(t, cfg.ShowIcons)
	assert.False(t, cfg.RelatedFiles)
	assert.Equal(t, 3, cfg.MaxRelatedShown)
}

func TestLoadConfigDefaultLocation(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	dir := filepath.Join(xdg, "worksetview")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("theme: clean-light\n"), 0o600))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, theme.CleanLightName, cfg.Theme)
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: [broken\n"), 0o600))

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigNormalizesBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_related_shown: -1\ntheme: \"\"\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxRelatedShown)
	assert.Equal(t, theme.DraculaName, cfg.Theme)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/foo")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "foo"), got)

	got, err = ExpandPath("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}
