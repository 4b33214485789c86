// Package paths resolves where Lineage keeps its configuration and its
// snapshot files.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName is the directory name used under platform base directories.
const appName = "lineage"

// CWD-relative directory names.
const (
	DefaultConfigDirName = ".lineage"
	DefaultDataDirName   = ".lineage-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "LINEAGE_CONFIG_DIR"
	EnvDataDir   = "LINEAGE_DATA_DIR"
)

// ConfigFileName is the configuration file inside the config directory.
const ConfigFileName = "config.yaml"

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/lineage (fallback ~/.config/lineage)
// macOS:   ~/Library/Application Support/lineage
// Windows: %APPDATA%/lineage
func DefaultConfigDir() (string, error) {
	return baseDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform default data directory.
//
// Linux:   $XDG_DATA_HOME/lineage (fallback ~/.local/share/lineage)
// macOS and Windows share the config location.
func DefaultDataDir() (string, error) {
	return baseDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// baseDir applies the XDG rules on Linux and os.UserConfigDir elsewhere.
func baseDir(xdgEnv, homeFallback string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName), nil
	}
	if xdg := os.Getenv(xdgEnv); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeFallback, appName), nil
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > LINEAGE_CONFIG_DIR > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if dir := firstSet(flag, os.Getenv(EnvConfigDir)); dir != "" {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > config.yaml data_dir > LINEAGE_DATA_DIR > $(CWD)/.lineage-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir := firstSet(flag, configValue, os.Getenv(EnvDataDir)); dir != "" {
		return filepath.Abs(dir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ConfigFile returns the path of config.yaml inside dir.
func ConfigFile(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

// SnapshotPath joins the data directory and a snapshot file name. Absolute
// file names are returned unchanged.
func SnapshotPath(dataDir, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dataDir, file)
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
