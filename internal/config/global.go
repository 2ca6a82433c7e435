package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/bm/config.yml.
type GlobalConfig struct {
	// Workspace is used when no bibliometer config is found up the tree.
	Workspace string `yaml:"workspace,omitempty"`
	LogLevel  string `yaml:"log_level,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "bm"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/bm/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.Workspace != "" {
		cfg.Workspace = ExpandPath(cfg.Workspace)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// ErrWorkspaceNotConfigured is returned when no workspace is set globally.
var ErrWorkspaceNotConfigured = errors.New("workspace not configured")

// Locate finds the config file for a run. An explicit path wins; otherwise
// the tree above start is searched, then the global workspace.
func Locate(explicit, start string) (string, error) {
	if explicit != "" {
		return ExpandPath(explicit), nil
	}

	path, err := Find(start)
	if err == nil {
		return path, nil
	}
	if !errors.Is(err, ErrConfigNotFound) {
		return "", err
	}

	global, gerr := LoadGlobalConfig()
	if gerr != nil {
		return "", gerr
	}
	if global.Workspace == "" {
		return "", fmt.Errorf("%w\n\n%s", err, HelpfulConfigMessage())
	}
	path, err = Find(global.Workspace)
	if err != nil {
		return "", fmt.Errorf("configured workspace %s: %w", global.Workspace, err)
	}
	return path, nil
}

// HelpfulConfigMessage explains how to point bm at a workspace.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No bibliometer.yml found.

Tip: run "bm config init" in your workspace, or create %s:
  mkdir -p %s
  echo 'workspace: /path/to/your/workspace' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
