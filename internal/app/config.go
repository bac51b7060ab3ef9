// Package app resolves rigctl's on-disk configuration: the config
// directory, the default config.yaml, and the data directory the engine
// reads and writes its tasks/, workspaces/, and projects.json under.
package app

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigDir returns ~/.config/rigctl/ on all platforms.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "rigctl"), nil
}

// EnsureConfigDir creates the config directory and default config.yaml if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return os.WriteFile(configFile, []byte(defaultConfig), 0o600)
	}
	return nil
}

const defaultConfig = `# rigctl configuration
# Run: rigctl --help

# Optional: override the data directory rigctl stores tasks, workspaces,
# and the project registry under.
# Can also be set via RIGCTL_DATA_DIR or --data-dir.
# data_dir: ~/.config/rigctl/data
`

type fileConfig struct {
	DataDir string `yaml:"data_dir"`
}

// dataDirOverride holds a value set via --data-dir, taking precedence over
// the environment variable and the config file.
var dataDirOverride string

// SetDataDirOverride records a --data-dir flag value for GetDataDir to prefer.
func SetDataDirOverride(path string) { dataDirOverride = path }

// GetDataDir resolves the data directory with precedence:
// --data-dir flag > RIGCTL_DATA_DIR env > config.yaml data_dir > default
// ~/.config/rigctl/data.
func GetDataDir() (string, error) {
	if dataDirOverride != "" {
		return dataDirOverride, nil
	}
	if env := os.Getenv("RIGCTL_DATA_DIR"); env != "" {
		return env, nil
	}

	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	configFile := filepath.Join(dir, "config.yaml")
	if data, readErr := os.ReadFile(configFile); readErr == nil { //nolint:gosec // G304: configFile derived from trusted home directory
		var cfg fileConfig
		if yaml.Unmarshal(data, &cfg) == nil && cfg.DataDir != "" {
			return cfg.DataDir, nil
		}
	}

	return filepath.Join(dir, "data"), nil
}

// EnsureDataDir resolves and creates the data directory and its tasks/
// and workspaces/ subdirectories.
func EnsureDataDir() (string, error) {
	dir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	for _, sub := range []string{"tasks", "workspaces"} {
		if mkErr := os.MkdirAll(filepath.Join(dir, sub), 0o750); mkErr != nil {
			return "", mkErr
		}
	}
	return dir, nil
}
