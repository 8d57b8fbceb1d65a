package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/cephrbdx/internal/rbdx"
)

// Environment overrides, applied after the config file.
const (
	EnvCluster    = "CEPHRBDX_CLUSTER"
	EnvClientName = "CEPHRBDX_CLIENT_NAME"
	EnvConfFile   = "CEPHRBDX_CONF_FILE"
	EnvLogLevel   = "CEPHRBDX_LOG_LEVEL"
)

// Config represents the complete cephrbdx configuration.
type Config struct {
	Cluster      string        `yaml:"cluster"`             // Cluster name (default: "ceph")
	ClientName   string        `yaml:"client_name"`         // Client identity (default: "client.admin")
	ConfFile     string        `yaml:"conf_file,omitempty"` // Ceph config path; empty searches the defaults
	MountTimeout time.Duration `yaml:"mount_timeout"`       // Monitor connect timeout (default: 5s)
	OpTimeout    time.Duration `yaml:"op_timeout"`          // OSD op timeout, v2 only (default: 3s)
	Pools        []string      `yaml:"pools,omitempty"`     // Default pools (ids or names)
	Output       string        `yaml:"output"`              // table, yaml or json
	Log          LogConfig     `yaml:"log"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

var (
	validOutputs    = []string{"table", "yaml", "json"}
	validLogLevels  = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}
	validLogFormats = []string{"console", "json"}
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Cluster:      "ceph",
		ClientName:   rbdx.DefaultClientName,
		MountTimeout: rbdx.DefaultMountTimeout,
		OpTimeout:    rbdx.DefaultOpTimeout,
		Output:       "table",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the configuration for errors.
// Does not check that the cluster or pools exist - only config structure.
func (c *Config) Validate() error {
	if c.Cluster == "" {
		return fmt.Errorf("cluster is required")
	}
	if !strings.HasPrefix(c.ClientName, "client.") || len(c.ClientName) == len("client.") {
		return fmt.Errorf("client_name must be of the form client.<id>, got %q", c.ClientName)
	}

	if err := validateTimeout(c.MountTimeout); err != nil {
		return fmt.Errorf("mount_timeout: %w", err)
	}
	if err := validateTimeout(c.OpTimeout); err != nil {
		return fmt.Errorf("op_timeout: %w", err)
	}

	for i, pool := range c.Pools {
		if strings.TrimSpace(pool) == "" {
			return fmt.Errorf("pools[%d] must not be empty", i)
		}
	}

	if !contains(validOutputs, c.Output) {
		return fmt.Errorf("output must be one of %s, got %q", strings.Join(validOutputs, ", "), c.Output)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	return nil
}

// Validate checks log configuration.
func (l *LogConfig) Validate() error {
	if !contains(validLogLevels, l.Level) {
		return fmt.Errorf("level must be one of %s, got %q", strings.Join(validLogLevels, ", "), l.Level)
	}
	if !contains(validLogFormats, l.Format) {
		return fmt.Errorf("format must be one of %s, got %q", strings.Join(validLogFormats, ", "), l.Format)
	}
	return nil
}

// Settings converts the connection part of the config for rbdx.
func (c *Config) Settings() rbdx.Settings {
	return rbdx.Settings{
		ClientName:   c.ClientName,
		ConfigFile:   c.ConfFile,
		MountTimeout: c.MountTimeout,
		OpTimeout:    c.OpTimeout,
	}
}

// PoolIDs returns the configured default pools.
func (c *Config) PoolIDs() []rbdx.PoolID {
	return rbdx.ParsePoolIDs(c.Pools)
}

// Load loads the config from path, or the defaults when path is empty.
// Environment overrides are applied and the result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		cfg.applyEnv()
		cfg.Normalize()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromFile(path)
}

// LoadFromFile loads a configuration from a YAML file.
// Fields omitted from the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := LoadFromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromYAML loads a configuration from YAML bytes.
func LoadFromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyEnv()
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Normalize trims whitespace and lowercases enumerated fields.
func (c *Config) Normalize() {
	c.Cluster = strings.TrimSpace(c.Cluster)
	c.ClientName = strings.TrimSpace(c.ClientName)
	c.Output = strings.ToLower(strings.TrimSpace(c.Output))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	for i, pool := range c.Pools {
		c.Pools[i] = strings.TrimSpace(pool)
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvCluster); v != "" {
		c.Cluster = v
	}
	if v := os.Getenv(EnvClientName); v != "" {
		c.ClientName = v
	}
	if v := os.Getenv(EnvConfFile); v != "" {
		c.ConfFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

func validateTimeout(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("must be > 0, got %s", d)
	}
	if d%time.Second != 0 {
		return fmt.Errorf("must be a whole number of seconds, got %s", d)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
