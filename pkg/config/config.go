// Package config loads the drawboard server configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"go.mau.fi/util/configupgrade"
	"go.mau.fi/util/dbutil"
	"go.mau.fi/zeroconfig"
	"gopkg.in/yaml.v3"
)

//go:embed example-config.yaml
var ExampleConfig string

const (
	DefaultPort          = 1729
	DefaultMarker        = "//__importmap"
	DefaultPruneSchedule = "@hourly"
	DefaultMaxAge        = 7 * 24 * time.Hour
)

type Config struct {
	Server    ServerConfig      `yaml:"server"`
	Assets    AssetsConfig      `yaml:"assets"`
	Cache     CacheConfig       `yaml:"cache"`
	ImportMap ImportMapConfig   `yaml:"importmap"`
	Compiler  CompilerConfig    `yaml:"compiler"`
	Logging   zeroconfig.Config `yaml:"logging"`
}

type ServerConfig struct {
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	Root     string `yaml:"root"`
	// Documents defaults to Root.
	Documents string `yaml:"documents"`

	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

// Address is the host:port the server listens on.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Hostname, c.Port)
}

// PublicURL is the URL printed in the startup banner.
func (c ServerConfig) PublicURL() string {
	host := c.Hostname
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.Port)
}

type AssetsConfig struct {
	Table          map[string]string `yaml:"table"`
	Marker         string            `yaml:"marker"`
	CheckDocuments *bool             `yaml:"check_documents"`
}

type CacheConfig struct {
	Database      dbutil.Config `yaml:"database"`
	MaxAge        time.Duration `yaml:"max_age"`
	PruneSchedule string        `yaml:"prune_schedule"`
}

// InMemory reports whether no cache database is configured.
func (c CacheConfig) InMemory() bool {
	return strings.TrimSpace(c.Database.URI) == ""
}

type ImportMapConfig struct {
	File    string                       `yaml:"file"`
	Imports map[string]string            `yaml:"imports"`
	Scopes  map[string]map[string]string `yaml:"scopes"`
	Pretty  bool                         `yaml:"pretty"`
}

type CompilerConfig struct {
	JSX         string `yaml:"jsx"`
	JSXFactory  string `yaml:"jsx_factory"`
	JSXFragment string `yaml:"jsx_fragment"`
	Target      string `yaml:"target"`
	Sourcemap   string `yaml:"sourcemap"`
	Minify      bool   `yaml:"minify"`
}

func (c *Config) WithDefaults() *Config {
	if c == nil {
		c = &Config{}
	}
	c.Server = c.Server.withDefaults()
	c.Assets = c.Assets.withDefaults()
	c.Cache = c.Cache.withDefaults()
	if len(c.Logging.Writers) == 0 {
		c.Logging.Writers = []zeroconfig.WriterConfig{{
			Type:   zeroconfig.WriterTypeStdout,
			Format: zeroconfig.LogFormatPrettyColored,
		}}
	}
	return c
}

func (c ServerConfig) withDefaults() ServerConfig {
	if c.Port <= 0 {
		c.Port = DefaultPort
	}
	if strings.TrimSpace(c.Root) == "" {
		c.Root = "."
	}
	if strings.TrimSpace(c.Documents) == "" {
		c.Documents = c.Root
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.ReadHeaderTimeout <= 0 {
		c.ReadHeaderTimeout = 10 * time.Second
	}
	return c
}

func (c AssetsConfig) withDefaults() AssetsConfig {
	if c.Marker == "" {
		c.Marker = DefaultMarker
	}
	if c.CheckDocuments == nil {
		enabled := true
		c.CheckDocuments = &enabled
	}
	return c
}

func (c CacheConfig) withDefaults() CacheConfig {
	if c.Database.Type == "" {
		c.Database.Type = "sqlite3"
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 5
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 1
	}
	if c.MaxAge < 0 {
		c.MaxAge = 0
	}
	if strings.TrimSpace(c.PruneSchedule) == "" {
		c.PruneSchedule = DefaultPruneSchedule
	}
	return c
}

// Parse decodes YAML config data and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg.WithDefaults(), nil
}

// Load reads the config file at path, filling in any missing fields from the
// example config, then applies environment overrides. A missing file yields
// the example config.
func Load(path string, save bool) (*Config, error) {
	data, _, err := configupgrade.Do(path, save, Upgrader)
	if errors.Is(err, fs.ErrNotExist) {
		data = []byte(ExampleConfig)
	} else if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return ApplyEnv(cfg)
}
