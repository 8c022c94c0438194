package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the configuration file looked up in the working
// directory when no explicit path is given.
const ConfigFileName = "calc.yml"

// Environment variables overriding the configuration file.
const (
	EnvOptimize         = "CALC_OPTIMIZE"
	EnvSerial           = "CALC_SERIAL"
	EnvMaxParallel      = "CALC_MAX_PARALLEL"
	EnvRegistryCapacity = "CALC_REGISTRY_CAPACITY"
)

// Config holds the execution settings.
type Config struct {
	Path string

	// Optimize enables expression memoization and dead-code pruning.
	Optimize bool
	// Serial runs parallel tasks one after another in submission order.
	Serial bool
	// MaxParallel caps concurrently running tasks per group; 0 is unlimited.
	MaxParallel int
	// RegistryCapacity bounds the expression registry; 0 is unbounded.
	RegistryCapacity int
}

// ValidationError aggregates configuration validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

type configFile struct {
	Optimize         *bool `yaml:"optimize"`
	Serial           *bool `yaml:"serial"`
	MaxParallel      *int  `yaml:"max_parallel"`
	RegistryCapacity *int  `yaml:"registry_capacity"`
}

// DefaultConfig returns the built-in defaults: no optimization, goroutine
// scheduling without a limit, unbounded registry.
func DefaultConfig() Config {
	return Config{}
}

// LoadConfig layers the configuration file at path (skipped when path is
// empty) and the environment over the defaults, then validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FindConfig returns the path of ConfigFileName in dir, or "" if absent.
func FindConfig(dir string) string {
	path := filepath.Join(dir, ConfigFileName)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}

func (c *Config) applyFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			c.Path = absPath
			return nil
		}
		return fmt.Errorf("config: parse %s: %w", absPath, err)
	}
	c.Path = absPath
	if raw.Optimize != nil {
		c.Optimize = *raw.Optimize
	}
	if raw.Serial != nil {
		c.Serial = *raw.Serial
	}
	if raw.MaxParallel != nil {
		c.MaxParallel = *raw.MaxParallel
	}
	if raw.RegistryCapacity != nil {
		c.RegistryCapacity = *raw.RegistryCapacity
	}
	return nil
}

func (c *Config) applyEnv() {
	if env.Has(EnvOptimize) {
		c.Optimize = env.Bool(EnvOptimize)
	}
	if env.Has(EnvSerial) {
		c.Serial = env.Bool(EnvSerial)
	}
	c.MaxParallel = env.Int(EnvMaxParallel, c.MaxParallel)
	c.RegistryCapacity = env.Int(EnvRegistryCapacity, c.RegistryCapacity)
}

// Validate reports out-of-range settings.
func (c Config) Validate() error {
	var errs ValidationError
	if c.MaxParallel < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("max_parallel must not be negative, got %d", c.MaxParallel))
	}
	if c.RegistryCapacity < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("registry_capacity must not be negative, got %d", c.RegistryCapacity))
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}
