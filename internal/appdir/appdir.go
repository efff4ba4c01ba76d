// Package appdir resolves the application's XDG directories.
package appdir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "wifiprov"

// Dir returns the configuration directory.
// Linux: ~/.config/wifiprov
// macOS: ~/Library/Application Support/wifiprov
// Windows: %AppData%\wifiprov
func Dir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// ConfigPath returns the path of the configuration file.
func ConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DataDir returns the directory holding the credential store.
func DataDir() string {
	return filepath.Join(xdg.DataHome, appName)
}

// LogsDir returns the directory for log files and protocol traces.
func LogsDir() string {
	return filepath.Join(xdg.StateHome, appName)
}

// StorePath returns the default credential store path for an engine file
// extension such as "json" or "db".
func StorePath(ext string) string {
	return filepath.Join(DataDir(), "credentials."+ext)
}

// LogFilePath returns the default operational log path.
func LogFilePath() string {
	return filepath.Join(LogsDir(), "wifiprov-device.log")
}

// TracePath returns the default protocol trace path.
func TracePath() string {
	return filepath.Join(LogsDir(), "wifiprov-device.plog")
}

// Init creates the application directories and a default configuration
// file if none exists.
func Init() error {
	for _, dir := range []string{Dir(), DataDir(), LogsDir()} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	if err := ensureDefaultConfig(); err != nil {
		return fmt.Errorf("ensure default config: %w", err)
	}
	return nil
}

func ensureDefaultConfig() error {
	configPath := ConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}
	return writeDefaultConfig(configPath)
}
