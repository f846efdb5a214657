package util

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	AppName    = "lttable"
	ConfigFile = "table.toml"
	LogFile    = "lttable.log"
)

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ConfigDir returns the per-user config directory for lttable.
// Follows XDG Base Directory spec on Linux, platform conventions elsewhere
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", AppName)
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), AppName)
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName)
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", AppName)
	}
}

// StateDir returns the per-user directory for logs.
func StateDir() string {
	switch runtime.GOOS {
	case "darwin", "windows":
		return filepath.Join(ConfigDir(), "logs")
	default:
		if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName)
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "state", AppName)
	}
}
