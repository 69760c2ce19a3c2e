// Package config loads sqlprep settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/Konsultn-Engineering/sqlprep/connector"
	"github.com/Konsultn-Engineering/sqlprep/prepare"
)

type Config struct {
	// Driver names a registered provider: postgres, mysql or sqlite.
	Driver   string           `yaml:"driver"`
	Database connector.Config `yaml:"database"`

	Prefix          Prefix        `yaml:"prefix"`
	StripSlashes    bool          `yaml:"strip_slashes"`
	Strict          bool          `yaml:"strict"`
	HandleCacheSize int           `yaml:"handle_cache_size"`
	QueryTimeout    time.Duration `yaml:"query_timeout"`

	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	// Format is "json" or "console".
	Format string `yaml:"format"`
}

// Prefix accepts either a single string or a list of strings.
type Prefix struct {
	Values []string
	List   bool
}

func (p *Prefix) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*p = Prefix{Values: []string{node.Value}}
		return nil
	case yaml.SequenceNode:
		var values []string
		if err := node.Decode(&values); err != nil {
			return fmt.Errorf("prefix: %w", err)
		}
		*p = Prefix{Values: values, List: true}
		return nil
	}
	return fmt.Errorf("prefix: expected a string or a list at line %d", node.Line)
}

func (p Prefix) MarshalYAML() (any, error) {
	if p.List {
		return p.Values, nil
	}
	if len(p.Values) == 0 {
		return "", nil
	}
	return p.Values[0], nil
}

// Resolve converts p into the form used by the substitution engine.
func (p Prefix) Resolve() prepare.Prefix {
	switch {
	case p.List:
		return prepare.PrefixList(p.Values...)
	case len(p.Values) > 0:
		return prepare.SinglePrefix(p.Values[0])
	}
	return prepare.Prefix{}
}

// parsePrefix reads the environment form: a comma separates list entries.
func parsePrefix(s string) Prefix {
	if !strings.Contains(s, ",") {
		return Prefix{Values: []string{s}}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return Prefix{Values: parts, List: true}
}

func DefaultConfig() *Config {
	return &Config{
		Driver: "sqlite",
		Database: connector.Config{
			Database:       ":memory:",
			ConnectTimeout: 10 * time.Second,
		},
		HandleCacheSize: 64,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
// Environment variables are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Driver == "" {
		return fmt.Errorf("driver is required")
	}
	if c.HandleCacheSize < 0 {
		return fmt.Errorf("handle_cache_size must not be negative")
	}
	if c.QueryTimeout < 0 {
		return fmt.Errorf("query_timeout must not be negative")
	}
	if _, err := c.Logging.ZapLevel(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid logging format %q", c.Logging.Format)
	}
	return c.Database.Validate()
}

func (l LoggingConfig) ZapLevel() (zapcore.Level, error) {
	if l.Level == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return lvl, fmt.Errorf("invalid logging level %q: %w", l.Level, err)
	}
	return lvl, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("SQLPREP_DRIVER"); v != "" {
		c.Driver = v
	}
	if v := os.Getenv("SQLPREP_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("SQLPREP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SQLPREP_PORT: %w", err)
		}
		c.Database.Port = port
	}
	if v := os.Getenv("SQLPREP_DATABASE"); v != "" {
		c.Database.Database = v
	}
	if v := os.Getenv("SQLPREP_USER"); v != "" {
		c.Database.Username = v
	}
	if v := os.Getenv("SQLPREP_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v, ok := os.LookupEnv("SQLPREP_PREFIX"); ok {
		c.Prefix = parsePrefix(v)
	}
	if v := os.Getenv("SQLPREP_STRICT"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SQLPREP_STRICT: %w", err)
		}
		c.Strict = strict
	}
	if v := os.Getenv("SQLPREP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}
