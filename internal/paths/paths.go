// Package paths resolves where strongbox keeps its configuration, its log
// and the encrypted account databases.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName = "strongbox"

	// DefaultDataDirName is the CWD-relative directory holding one
	// <account_id>.json file per account.
	DefaultDataDirName = "databases"

	ConfigFileName = "config.yaml"
	LogFileName    = "strongbox.log"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "STRONGBOX_CONFIG_DIR"
	EnvDataDir   = "STRONGBOX_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/strongbox (fallback ~/.config/strongbox)
// macOS:   ~/Library/Application Support/strongbox
// Windows: %APPDATA%/strongbox
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appName), nil
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// ResolveConfigDir returns the configuration directory:
// flag > STRONGBOX_CONFIG_DIR > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the database directory:
// flag > data_dir from config.yaml > STRONGBOX_DATA_DIR > $(CWD)/databases.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	for _, dir := range []string{flag, configYAMLValue, os.Getenv(EnvDataDir)} {
		if dir != "" {
			return filepath.Abs(dir)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ConfigFile returns the config.yaml path inside configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}

// LogFile returns the log path: the configured value made absolute, or
// strongbox.log inside configDir.
func LogFile(configDir, configured string) (string, error) {
	if configured != "" {
		return filepath.Abs(configured)
	}
	return filepath.Join(configDir, LogFileName), nil
}
