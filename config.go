package breaker

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Config is the serializable mirror of the circuit options, for loading
// breaker settings from configuration files or a dynamic config system.
// Zero fields mean "use the package default" when the config is applied.
type Config struct {
	FailureThreshold     float64       `yaml:"failure_threshold" json:"failure_threshold"`
	MinThroughput        uint64        `yaml:"min_throughput" json:"min_throughput"`
	Cooldown             time.Duration `yaml:"cooldown" json:"cooldown"`
	ProbeInterval        int           `yaml:"probe_interval" json:"probe_interval"`
	ConsecutiveFailures  uint64        `yaml:"consecutive_failures" json:"consecutive_failures"`
	ConsecutiveSuccesses uint64        `yaml:"consecutive_successes" json:"consecutive_successes"`
}

// ParseConfig decodes a YAML document into a Config and validates it.
// Durations are strings in Go syntax, such as "30s" or "1m30s".
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("breaker: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// UnmarshalYAML decodes durations from strings like "30s".
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		FailureThreshold     float64 `yaml:"failure_threshold"`
		MinThroughput        uint64  `yaml:"min_throughput"`
		Cooldown             string  `yaml:"cooldown"`
		ProbeInterval        int     `yaml:"probe_interval"`
		ConsecutiveFailures  uint64  `yaml:"consecutive_failures"`
		ConsecutiveSuccesses uint64  `yaml:"consecutive_successes"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.FailureThreshold = raw.FailureThreshold
	c.MinThroughput = raw.MinThroughput
	c.ProbeInterval = raw.ProbeInterval
	c.ConsecutiveFailures = raw.ConsecutiveFailures
	c.ConsecutiveSuccesses = raw.ConsecutiveSuccesses

	c.Cooldown = 0
	if raw.Cooldown != "" {
		d, err := time.ParseDuration(raw.Cooldown)
		if err != nil {
			return fmt.Errorf("cooldown: %w", err)
		}
		c.Cooldown = d
	}
	return nil
}

// Validate reports every out-of-range field at once.
func (c Config) Validate() error {
	var err error
	if c.FailureThreshold < 0 || c.FailureThreshold > 1 {
		err = multierr.Append(err, fmt.Errorf("breaker: failure_threshold %v outside [0, 1]", c.FailureThreshold))
	}
	if c.Cooldown < 0 {
		err = multierr.Append(err, fmt.Errorf("breaker: cooldown %v is negative", c.Cooldown))
	}
	if c.ProbeInterval < 0 {
		err = multierr.Append(err, fmt.Errorf("breaker: probe_interval %d is negative", c.ProbeInterval))
	}
	return err
}

// Options expands the config into functional options. Zero fields are
// skipped so the package defaults apply.
func (c Config) Options() []Option {
	var opts []Option
	if c.FailureThreshold != 0 {
		opts = append(opts, WithFailureThreshold(c.FailureThreshold))
	}
	if c.MinThroughput != 0 {
		opts = append(opts, WithMinThroughput(c.MinThroughput))
	}
	if c.Cooldown != 0 {
		opts = append(opts, WithCooldown(c.Cooldown))
	}
	if c.ProbeInterval != 0 {
		opts = append(opts, WithProbeInterval(c.ProbeInterval))
	}
	if c.ConsecutiveFailures != 0 {
		opts = append(opts, WithConsecutiveFailures(c.ConsecutiveFailures))
	}
	if c.ConsecutiveSuccesses != 0 {
		opts = append(opts, WithConsecutiveSuccesses(c.ConsecutiveSuccesses))
	}
	return opts
}

// DeepCopy returns an independent copy of the config.
func (c *Config) DeepCopy() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Equal reports whether two configs carry the same settings.
func (c *Config) Equal(other *Config) bool {
	if c == nil || other == nil {
		return c == other
	}
	return *c == *other
}
