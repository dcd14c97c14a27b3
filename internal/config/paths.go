package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "hometray"

// userBase returns the per-user base directory for one kind of file: env
// (or fallback under the profile) on Windows, xdgEnv (or fallback under
// home) elsewhere.
func userBase(winEnv string, winFallback []string, xdgEnv string, xdgFallback []string) (string, error) {
	if runtime.GOOS == "windows" {
		if base := os.Getenv(winEnv); base != "" {
			return base, nil
		}
		return filepath.Join(append([]string{os.Getenv("USERPROFILE")}, winFallback...)...), nil
	}
	if base := os.Getenv(xdgEnv); base != "" {
		return base, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, xdgFallback...)...), nil
}

// GetConfigDir is $XDG_CONFIG_HOME/hometray (~/.config/hometray), or
// %APPDATA%\hometray on Windows.
func GetConfigDir() (string, error) {
	base, err := userBase("APPDATA", []string{"AppData", "Roaming"}, "XDG_CONFIG_HOME", []string{".config"})
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

// GetDataDir is $XDG_DATA_HOME/hometray (~/.local/share/hometray), or
// %LOCALAPPDATA%\hometray on Windows. A user icon bundle lives under it.
func GetDataDir() (string, error) {
	base, err := userBase("LOCALAPPDATA", []string{"AppData", "Local"}, "XDG_DATA_HOME", []string{".local", "share"})
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

func GetConfigPath() (string, error) {
	return inDir(GetConfigDir, "config.toml")
}

// GetVaultPath is the encrypted credential file next to the config.
func GetVaultPath() (string, error) {
	return inDir(GetConfigDir, "credentials.enc")
}

// UserIconDir returns <data dir>/icons when that directory exists.
func UserIconDir() (string, bool) {
	dir, err := inDir(GetDataDir, "icons")
	if err != nil {
		return "", false
	}
	info, err := os.Stat(dir)
	return dir, err == nil && info.IsDir()
}

func inDir(dir func() (string, error), name string) (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, name), nil
}

// EnsureDirs creates the config and data directories, private to the user.
func EnsureDirs() error {
	for _, fn := range []func() (string, error){GetConfigDir, GetDataDir} {
		dir, err := fn()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return nil
}
