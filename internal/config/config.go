// Package config loads the switchscope configuration file.
//
// Config file locations (priority order):
//  1. $SWITCHSCOPE_CONFIG
//  2. ./switchscope.yaml
//  3. ~/.config/switchscope/config.yaml
//  4. /etc/switchscope/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath overrides the search order with an explicit path.
	EnvConfigPath = "SWITCHSCOPE_CONFIG"
	// EnvToken overrides the controller token from the environment.
	EnvToken = "SWITCHSCOPE_TOKEN"

	configFileName = "switchscope.yaml"
	configDirName  = "switchscope"
)

// Config is the full configuration tree.
type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	Cache      CacheConfig      `yaml:"cache"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Probe      ProbeConfig      `yaml:"probe"`
	OUI        OUIConfig        `yaml:"oui"`
	Server     ServerConfig     `yaml:"server"`
}

// ControllerConfig identifies the network controller API.
type ControllerConfig struct {
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	InsecureTLS bool   `yaml:"insecure_tls"`
}

// CacheConfig sizes the response and result caches.
type CacheConfig struct {
	ResponseTTL Duration `yaml:"response_ttl"`
	ResultTTL   Duration `yaml:"result_ttl"`
	MaxEntries  int      `yaml:"max_entries"`
}

// RateLimitConfig paces controller API calls.
type RateLimitConfig struct {
	MinInterval Duration `yaml:"min_interval"`
	RetryAfter  Duration `yaml:"retry_after"`
}

// ProbeConfig enables the optional enrichment probes.
type ProbeConfig struct {
	Nmap NmapProbeConfig `yaml:"nmap"`
	SSH  SSHProbeConfig  `yaml:"ssh"`
}

// NmapProbeConfig controls the reachability sweep.
type NmapProbeConfig struct {
	Enabled bool     `yaml:"enabled"`
	Timeout Duration `yaml:"timeout"`
}

// SSHProbeConfig controls the switch fact probe.
type SSHProbeConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	PrivateKey string   `yaml:"private_key"`
	Passphrase string   `yaml:"passphrase"`
	Port       int      `yaml:"port"`
	Timeout    Duration `yaml:"timeout"`
}

// OUIConfig locates the vendor prefix database.
type OUIConfig struct {
	DBPath   string `yaml:"db_path"`
	IEEEFile string `yaml:"ieee_file"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load finds and loads the config file, or returns defaults if none found.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// FindConfigPath searches the standard locations in priority order. Returns
// empty string when no config file exists.
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if fileExists(path) {
			return path
		}
	}

	if fileExists(configFileName) {
		if abs, err := filepath.Abs(configFileName); err == nil {
			return abs
		}
		return configFileName
	}

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		path := filepath.Join(xdgHome, configDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}
	if home := os.Getenv("HOME"); home != "" {
		path := filepath.Join(home, ".config", configDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	path := filepath.Join("/etc", configDirName, "config.yaml")
	if fileExists(path) {
		return path
	}
	return ""
}

// DefaultConfig returns sensible defaults for a new installation.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Cache.ResponseTTL == 0 {
		c.Cache.ResponseTTL = Duration(60 * time.Second)
	}
	if c.Cache.ResultTTL == 0 {
		c.Cache.ResultTTL = Duration(60 * time.Second)
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 100
	}
	if c.RateLimit.MinInterval == 0 {
		c.RateLimit.MinInterval = Duration(2 * time.Second)
	}
	if c.RateLimit.RetryAfter == 0 {
		c.RateLimit.RetryAfter = Duration(30 * time.Second)
	}
	if c.Probe.Nmap.Timeout == 0 {
		c.Probe.Nmap.Timeout = Duration(30 * time.Second)
	}
	if c.Probe.SSH.Port == 0 {
		c.Probe.SSH.Port = 22
	}
	if c.Probe.SSH.Timeout == 0 {
		c.Probe.SSH.Timeout = Duration(10 * time.Second)
	}
	if c.OUI.DBPath == "" {
		c.OUI.DBPath = "./switchscope.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}

	if token := os.Getenv(EnvToken); token != "" {
		c.Controller.Token = token
	}
}

func (c *Config) validate() error {
	if c.Controller.URL == "" {
		return fmt.Errorf("config: controller.url is required")
	}
	if c.Probe.SSH.Enabled && c.Probe.SSH.Username == "" {
		return fmt.Errorf("config: probe.ssh.username is required when the SSH probe is enabled")
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("config: cache.max_entries must not be negative")
	}
	return nil
}

// Duration wraps time.Duration for YAML unmarshaling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
