package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigDir_UsesHomeDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := ConfigDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "rigctl"), dir)
}

func TestEnsureConfigDir_CreatesDefaultConfigOnlyWhenMissing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	err := EnsureConfigDir()
	require.NoError(t, err)

	dir, err := ConfigDir()
	require.NoError(t, err)

	configFile := filepath.Join(dir, "config.yaml")
	b, err := os.ReadFile(configFile)
	require.NoError(t, err)
	require.Equal(t, defaultConfig, string(b))

	custom := []byte("data_dir: /tmp/custom-data\n")
	require.NoError(t, os.WriteFile(configFile, custom, 0o600))

	err = EnsureConfigDir()
	require.NoError(t, err)

	b, err = os.ReadFile(configFile)
	require.NoError(t, err)
	require.Equal(t, string(custom), string(b))
}

func TestGetDataDir_Precedence(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("RIGCTL_DATA_DIR", "")
	dataDirOverride = ""
	t.Cleanup(func() { dataDirOverride = "" })

	dir, err := GetDataDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "rigctl", "data"), dir)

	t.Setenv("RIGCTL_DATA_DIR", "/tmp/env-data")
	dir, err = GetDataDir()
	require.NoError(t, err)
	require.Equal(t, "/tmp/env-data", dir)

	SetDataDirOverride("/tmp/flag-data")
	dir, err = GetDataDir()
	require.NoError(t, err)
	require.Equal(t, "/tmp/flag-data", dir)
}
