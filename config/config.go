// Package config reads the optional recurl settings file.
package config

import (
	"bytes"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const fileName = "config.toml"

// Config holds defaults that command line flags override.
type Config struct {
	// Timeout is a duration ("1m30s") or a number of seconds.
	Timeout         string `toml:"timeout"`
	FollowRedirects bool   `toml:"follow_redirects"`
	UserAgent       string `toml:"user_agent"`

	PageParam string `toml:"page_param"`
	PerPage   int    `toml:"per_page"`
	MaxPages  int    `toml:"max_pages"`
}

func Default() Config {
	return Config{
		Timeout:   "30s",
		PageParam: "page",
		PerPage:   10,
	}
}

// Dir returns $XDG_CONFIG_HOME/recurl, falling back to ~/.config/recurl.
func Dir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "recurl")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "recurl")
	}
	return filepath.Join(home, ".config", "recurl")
}

func DefaultPath() string {
	return filepath.Join(Dir(), fileName)
}

// Load reads the file at path on top of Default. An empty path means
// DefaultPath, which may be missing; an explicit path must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config '%s'", path)
	}
	return Decode(data)
}

// Decode parses TOML settings. Unknown keys are rejected.
func Decode(data []byte) (Config, error) {
	cfg := Default()
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parsing config")
	}
	if cfg.PerPage < 0 || cfg.MaxPages < 0 {
		return Config{}, errors.New("parsing config: per_page and max_pages must not be negative")
	}
	return cfg, nil
}
