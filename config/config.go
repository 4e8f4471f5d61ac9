// Package config loads the twips TOML configuration file.
//
//	font_dirs = ["/usr/share/fonts", "~/fonts"]
//	log_level = "debug"
//	output    = "json"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds the user settings. Command-line flags override it.
type Config struct {
	// FontDirs replaces the platform font directories when non-empty.
	FontDirs []string `toml:"font_dirs"`
	LogLevel string   `toml:"log_level"`
	Output   string   `toml:"output"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{LogLevel: "info", Output: OutputText}
}

// DefaultPath returns $XDG_CONFIG_HOME/twips/config.toml or the platform
// equivalent; empty if no config directory is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "twips", "config.toml")
}

// Load reads the file at path over the defaults. A missing file is an
// error unless optional is set.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("读取配置 %s 失败: %w", path, err)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("解析配置 %s 失败: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return cfg, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	for i, dir := range cfg.FontDirs {
		cfg.FontDirs[i] = expandHome(dir)
	}
	return cfg, cfg.Validate()
}

// Validate checks the enumerated fields.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.Output {
	case OutputText, OutputJSON:
		return nil
	default:
		return fmt.Errorf("output: unsupported format %q", c.Output)
	}
}

// Level returns the configured log level, defaulting to info.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
