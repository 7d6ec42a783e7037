// Package config loads ~/.dropwise/config.yaml and applies DROPWISE_*
// environment overrides and defaults on top of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Makepad-fr/dropwise/internal/store/jsonstore"
)

const (
	DefaultAPIURL  = "http://localhost:8080/api/v1"
	DefaultTimeout = 15 * time.Second
	FileName       = "config.yaml"
)

// Config is ~/.dropwise/config.yaml after defaults and env overrides.
type Config struct {
	APIURL  string        `yaml:"api_url"`
	Timeout time.Duration `yaml:"timeout"`
	Theme   string        `yaml:"theme"`
	Home    string        `yaml:"-"`
	Log     LogConfig     `yaml:"log"`
	UI      UIConfig      `yaml:"ui"`
}

type LogConfig struct {
	Path    string `yaml:"path"`
	Verbose bool   `yaml:"verbose"`
}

type UIConfig struct {
	DefaultTab string `yaml:"default_tab"`
	AltScreen  *bool  `yaml:"alt_screen"`
}

// AltScreen defaults to true.
func (u UIConfig) UseAltScreen() bool {
	return u.AltScreen == nil || *u.AltScreen
}

// DefaultPath is the config file under the dropwise home.
func DefaultPath() (string, error) {
	dir, err := jsonstore.DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads path (or the default path when empty). A missing file is
// not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := &Config{}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := strings.TrimSpace(os.Getenv("DROPWISE_API_URL")); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DROPWISE_THEME")); v != "" {
		c.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv("DROPWISE_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("DROPWISE_TIMEOUT: invalid duration %q", v)
		}
		c.Timeout = d
	}
	return nil
}

func (c *Config) applyDefaults() error {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Theme == "" {
		c.Theme = "classic"
	}
	if c.UI.DefaultTab == "" {
		c.UI.DefaultTab = "new"
	}
	home, err := jsonstore.DefaultDir()
	if err != nil {
		return err
	}
	c.Home = home
	if c.Log.Path == "" {
		c.Log.Path = filepath.Join(home, "dropwise.log")
	}
	return nil
}
