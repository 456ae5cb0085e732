// Package config loads runtime configuration, organised by concern. Values
// come from an optional YAML file overridden by environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second

	defaultBackendTimeout = 8 * time.Second
	defaultAPIVersion     = "v1"

	defaultStateDirName = ".aurelia-storefront"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Storage StorageConfig
	Session SessionConfig
}

// ServerConfig configures the local HTTP surface.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// BackendConfig points at the storefront REST backend.
type BackendConfig struct {
	BaseURL    string
	APIVersion string
	Timeout    time.Duration
}

// StorageConfig locates the durable local state directory.
type StorageConfig struct {
	StateDir string
}

// SessionConfig controls the signed UI session cookie.
type SessionConfig struct {
	CookieName string
	HashKey    string
	Secure     bool
}

// fileConfig mirrors Config for YAML decoding; durations are strings in the
// file ("5s") and parsed here.
type fileConfig struct {
	Server struct {
		Port         string `yaml:"port"`
		ReadTimeout  string `yaml:"readTimeout"`
		WriteTimeout string `yaml:"writeTimeout"`
		IdleTimeout  string `yaml:"idleTimeout"`
	} `yaml:"server"`
	Backend struct {
		BaseURL    string `yaml:"baseUrl"`
		APIVersion string `yaml:"apiVersion"`
		Timeout    string `yaml:"timeout"`
	} `yaml:"backend"`
	Storage struct {
		StateDir string `yaml:"stateDir"`
	} `yaml:"storage"`
	Session struct {
		CookieName string `yaml:"cookieName"`
		HashKey    string `yaml:"hashKey"`
		Secure     *bool  `yaml:"secure"`
	} `yaml:"session"`
}

func (fc fileConfig) toConfig() (Config, error) {
	var cfg Config
	cfg.Server.Port = fc.Server.Port
	cfg.Backend.BaseURL = fc.Backend.BaseURL
	cfg.Backend.APIVersion = fc.Backend.APIVersion
	cfg.Storage.StateDir = fc.Storage.StateDir
	cfg.Session.CookieName = fc.Session.CookieName
	cfg.Session.HashKey = fc.Session.HashKey
	if fc.Session.Secure != nil {
		cfg.Session.Secure = *fc.Session.Secure
	}

	for _, d := range []struct {
		raw string
		dst *time.Duration
	}{
		{fc.Server.ReadTimeout, &cfg.Server.ReadTimeout},
		{fc.Server.WriteTimeout, &cfg.Server.WriteTimeout},
		{fc.Server.IdleTimeout, &cfg.Server.IdleTimeout},
		{fc.Backend.Timeout, &cfg.Backend.Timeout},
	} {
		if strings.TrimSpace(d.raw) == "" {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid duration %q: %w", d.raw, err)
		}
		*d.dst = parsed
	}
	return cfg, nil
}

// Load reads the optional YAML file at path (skipped when empty or absent),
// applies environment overrides, then defaults, and validates the result.
func Load(path string) (Config, error) {
	var cfg Config

	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
			if cfg, err = fc.toConfig(); err != nil {
				return Config{}, err
			}
		case os.IsNotExist(err):
			// optional file
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if cfg.Backend.BaseURL == "" {
		return Config{}, fmt.Errorf("config: backend base URL is required (set STOREFRONT_BACKEND_URL)")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "STOREFRONT_PORT", "PORT")
	setDuration(&cfg.Server.ReadTimeout, "STOREFRONT_READ_TIMEOUT")
	setDuration(&cfg.Server.WriteTimeout, "STOREFRONT_WRITE_TIMEOUT")
	setDuration(&cfg.Server.IdleTimeout, "STOREFRONT_IDLE_TIMEOUT")

	setString(&cfg.Backend.BaseURL, "STOREFRONT_BACKEND_URL")
	setString(&cfg.Backend.APIVersion, "STOREFRONT_API_VERSION")
	setDuration(&cfg.Backend.Timeout, "STOREFRONT_BACKEND_TIMEOUT")

	setString(&cfg.Storage.StateDir, "STOREFRONT_STATE_DIR")

	setString(&cfg.Session.CookieName, "STOREFRONT_SESSION_COOKIE")
	setString(&cfg.Session.HashKey, "STOREFRONT_SESSION_HASH_KEY")
	setBool(&cfg.Session.Secure, "STOREFRONT_SESSION_SECURE")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = defaultPort
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Backend.APIVersion == "" {
		cfg.Backend.APIVersion = defaultAPIVersion
	}
	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = defaultBackendTimeout
	}
	if cfg.Storage.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.Storage.StateDir = filepath.Join(home, defaultStateDirName)
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "storefront_session"
	}
}

func setString(dst *string, keys ...string) {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
			return
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		*dst = d
	}
}

func setBool(dst *bool, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}
