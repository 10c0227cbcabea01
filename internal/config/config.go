package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDatabasePath   = "~/.local/share/navindex/navindex.db"
	DefaultRebuildChannel = "navindex:rebuild"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// Environment variables overriding file values
const (
	EnvConfig         = "NAVINDEX_CONFIG"
	EnvDatabase       = "NAVINDEX_DB"
	EnvRedisURL       = "NAVINDEX_REDIS_URL"
	EnvRebuildChannel = "NAVINDEX_REBUILD_CHANNEL"
	EnvLogLevel       = "NAVINDEX_LOG_LEVEL"
	EnvLogFormat      = "NAVINDEX_LOG_FORMAT"
	EnvTelemetry      = "NAVINDEX_TELEMETRY"
)

// Config holds the settings shared by every navindex binary.
type Config struct {
	DatabasePath   string `yaml:"database"`
	RedisURL       string `yaml:"redis_url,omitempty"`       // empty disables cross-process rebuilds
	RebuildChannel string `yaml:"rebuild_channel,omitempty"` // pub/sub channel for rebuild requests
	LogLevel       string `yaml:"log_level,omitempty"`
	LogFormat      string `yaml:"log_format,omitempty"`
	Telemetry      bool   `yaml:"telemetry,omitempty"` // install the OpenTelemetry SDK providers
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DatabasePath:   DefaultDatabasePath,
		RebuildChannel: DefaultRebuildChannel,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
	}
}

// Load reads the YAML file at path (or $NAVINDEX_CONFIG when path is empty),
// then applies environment overrides. A missing file is not an error when
// no path was requested explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}

	if path != "" {
		data, err := os.ReadFile(ExpandPath(path))
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case os.IsNotExist(err) && !explicit:
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	cfg.DatabasePath = ExpandPath(cfg.DatabasePath)
	return cfg, nil
}

func (c *Config) applyEnv() error {
	for env, field := range map[string]*string{
		EnvDatabase:       &c.DatabasePath,
		EnvRedisURL:       &c.RedisURL,
		EnvRebuildChannel: &c.RebuildChannel,
		EnvLogLevel:       &c.LogLevel,
		EnvLogFormat:      &c.LogFormat,
	} {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
	if v := os.Getenv(EnvTelemetry); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTelemetry, err)
		}
		c.Telemetry = enabled
	}
	return nil
}

func (c *Config) fillDefaults() {
	if c.DatabasePath == "" {
		c.DatabasePath = DefaultDatabasePath
	}
	if c.RebuildChannel == "" {
		c.RebuildChannel = DefaultRebuildChannel
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
