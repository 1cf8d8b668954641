package paths

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used below the XDG base directories.
const AppName = "gasmail"

func homeDir() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	h, _ := os.UserHomeDir()
	return h
}

// ConfigDir returns the gasmail config directory ($XDG_CONFIG_HOME/gasmail).
func ConfigDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, AppName)
	}
	return filepath.Join(homeDir(), ".config", AppName)
}

// ConfigFile returns the path to config.toml.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DownloadDir returns the user's download directory.
// $XDG_DOWNLOAD_DIR wins when set, otherwise ~/Downloads.
// The directory is never created here; a missing directory surfaces as a write error.
func DownloadDir() string {
	if v := os.Getenv("XDG_DOWNLOAD_DIR"); v != "" {
		return v
	}
	return filepath.Join(homeDir(), "Downloads")
}
