package appdir_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wifiprov/wifiprov-go/internal/appdir"
)

func withXDG(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	return root
}

func TestPaths(t *testing.T) {
	root := withXDG(t)

	assert.Equal(t, filepath.Join(root, "config", "wifiprov", "config.yaml"), appdir.ConfigPath())
	assert.Equal(t, filepath.Join(root, "data", "wifiprov", "credentials.db"), appdir.StorePath("db"))
	assert.Equal(t, filepath.Join(root, "state", "wifiprov", "wifiprov-device.plog"), appdir.TracePath())
}

func TestInit(t *testing.T) {
	withXDG(t)

	require.NoError(t, appdir.Init())

	data, err := os.ReadFile(appdir.ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, appdir.DefaultConfigYAML(), data)
	assert.DirExists(t, appdir.DataDir())
	assert.DirExists(t, appdir.LogsDir())

	// An existing file is left alone.
	require.NoError(t, os.WriteFile(appdir.ConfigPath(), []byte("server:\n  port: 4000\n"), 0600))
	require.NoError(t, appdir.Init())
	data, err = os.ReadFile(appdir.ConfigPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "4000")
}
