// Package config loads engine settings from an optional YAML file and the
// environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/tensorcore/internal/device"
	"github.com/born-ml/tensorcore/internal/parallel"
)

// Environment variables read by FromEnv.
const (
	EnvConfig    = "TENSORCORE_CONFIG"
	EnvDevice    = "TENSORCORE_DEVICE"
	EnvDisable   = "TENSORCORE_DISABLE"
	EnvArtifacts = "TENSORCORE_ARTIFACTS"
	EnvLogLevel  = "TENSORCORE_LOG_LEVEL"
	EnvWorkers   = "TENSORCORE_WORKERS"
)

// Config holds the engine settings.
type Config struct {
	// Device is tried first when set ("cuda", "webgpu", "metal", "cpu").
	Device string `yaml:"device"`
	// Disabled device families are never probed.
	Disabled []string `yaml:"disabled"`
	// ArtifactsDir holds prebuilt kernel libraries (tensor_ops.metallib).
	ArtifactsDir string `yaml:"artifacts_dir"`
	// LogLevel is a logrus level name.
	LogLevel string `yaml:"log_level"`

	Parallel ParallelConfig `yaml:"parallel"`
}

// ParallelConfig tunes the CPU backend. Zero values keep the defaults.
type ParallelConfig struct {
	Enabled  *bool `yaml:"enabled"`
	Workers  int   `yaml:"workers"`
	MinChunk int   `yaml:"min_chunk"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ArtifactsDir: "build/metal",
		LogLevel:     "info",
	}
}

// Load parses a YAML file on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, cfg.Validate()
}

// FromEnv loads the file named by TENSORCORE_CONFIG (if set) and applies the
// environment overrides.
func FromEnv() (Config, error) {
	cfg := Default()
	if path := os.Getenv(EnvConfig); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDevice); ok {
		c.Device = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvDisable); ok {
		c.Disabled = splitList(v)
	}
	if v, ok := lookup(EnvArtifacts); ok && v != "" {
		c.ArtifactsDir = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvWorkers); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Parallel.Workers = n
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks device names and the log level.
func (c Config) Validate() error {
	if c.Device != "" {
		if _, err := device.ParseKind(c.Device); err != nil {
			return errors.Wrap(err, "config: device")
		}
	}
	for _, name := range c.Disabled {
		if _, err := device.ParseKind(name); err != nil {
			return errors.Wrap(err, "config: disabled")
		}
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return errors.Wrap(err, "config: log_level")
		}
	}
	if c.Parallel.Workers < 0 || c.Parallel.MinChunk < 0 {
		return errors.New("config: parallel settings must not be negative")
	}
	return nil
}

// PreferredKind returns the configured device, if any.
func (c Config) PreferredKind() (device.Kind, bool) {
	if c.Device == "" {
		return device.CPU, false
	}
	k, err := device.ParseKind(c.Device)
	if err != nil {
		return device.CPU, false
	}
	return k, true
}

// DisabledKinds returns the valid entries of Disabled.
func (c Config) DisabledKinds() []device.Kind {
	var kinds []device.Kind
	for _, name := range c.Disabled {
		if k, err := device.ParseKind(name); err == nil {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// ParallelConfig returns the CPU backend settings with defaults filled in.
func (c Config) ParallelConfig() parallel.Config {
	cfg := parallel.DefaultConfig()
	if c.Parallel.Enabled != nil {
		cfg.Enabled = *c.Parallel.Enabled
	}
	if c.Parallel.Workers > 0 {
		cfg.NumWorkers = c.Parallel.Workers
	}
	if c.Parallel.MinChunk > 0 {
		cfg.MinChunkSize = c.Parallel.MinChunk
	}
	return cfg
}

// Level returns the parsed log level, info when unset or invalid.
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
