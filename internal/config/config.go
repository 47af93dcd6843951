// Package config loads AppConfig via viper, layered over the teacher's
// XDG_CONFIG_HOME-aware default path resolution. Using viper instead of a
// hand-rolled JSON loader lets the same AppConfig be expressed as JSON or
// YAML without new parsing code.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configDirName  = "quickdiff"
	configFileBase = "config"
)

// AppConfig is the core's ambient configuration: leader commands for the
// diff pane, the default theme name, the editor preference chain, and
// whether the metrics/timing diagnostic stream is enabled.
type AppConfig struct {
	LeaderCommands map[string]string `mapstructure:"leader_commands"`
	ThemeName      string            `mapstructure:"theme"`
	EditorChain    []string          `mapstructure:"editor_chain"`
	MetricsEnabled bool              `mapstructure:"metrics_enabled"`
}

func defaults() AppConfig {
	return AppConfig{
		LeaderCommands: map[string]string{},
		ThemeName:      "default",
		EditorChain:    []string{"$EDITOR", "nvim", "vi"},
		MetricsEnabled: false,
	}
}

// Load resolves the default config path and loads it.
func Load() (AppConfig, string, error) {
	path, err := DefaultPath()
	if err != nil {
		return AppConfig{}, "", err
	}
	cfg, err := LoadFromPath(path)
	return cfg, path, err
}

// LoadFromPath reads and validates AppConfig from path, in either JSON or
// YAML (viper infers the format from the extension; JSON is assumed when
// there is none, matching the teacher's original format). A missing file
// yields the zero-value-filled defaults rather than an error.
func LoadFromPath(path string) (AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("json")
	}

	cfg := defaults()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if os.IsNotExist(err) || errors.As(err, &notFound) {
			return cfg, nil
		}
		return AppConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("config: decode %s: %w", path, err)
	}

	return validate(cfg)
}

// validate enforces the teacher's leader-command invariants: each key is
// exactly one non-space rune, and maps to a non-empty command.
func validate(cfg AppConfig) (AppConfig, error) {
	if cfg.LeaderCommands == nil {
		cfg.LeaderCommands = map[string]string{}
	}

	normalized := make(map[string]string, len(cfg.LeaderCommands))
	for k, v := range cfg.LeaderCommands {
		key := strings.TrimSpace(k)
		cmd := strings.TrimSpace(v)
		if len([]rune(key)) != 1 {
			return AppConfig{}, fmt.Errorf("config: leader command key %q must be a single character", k)
		}
		if key == " " {
			return AppConfig{}, fmt.Errorf("config: leader command key cannot be space")
		}
		if cmd == "" {
			return AppConfig{}, fmt.Errorf("config: leader command for key %q is empty", key)
		}
		normalized[key] = cmd
	}
	cfg.LeaderCommands = normalized

	if len(cfg.EditorChain) == 0 {
		cfg.EditorChain = defaults().EditorChain
	}
	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/quickdiff/config.json, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	home, err := configHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, configFileBase+".json"), nil
}

func configHome() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return xdg, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}
