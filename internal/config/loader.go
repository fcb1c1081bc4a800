// Package config loads the throttler configuration with viper: defaults, an
// optional YAML file, THROTTLER_* environment variables and bound flags.
package config

import (
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"request-throttler/throttle/domain"
)

// EnvPrefix is prepended to every environment override, e.g.
// THROTTLER_LIMITER_RATE=20.
const EnvPrefix = "THROTTLER"

// SetDefaults registers Layer 1 values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("target.host", "127.0.0.1")
	v.SetDefault("target.port", 8888)
	v.SetDefault("listen.host", "127.0.0.1")
	v.SetDefault("listen.port", 8888)

	v.SetDefault("limiter.rate", 10.0)
	v.SetDefault("limiter.strategy", string(domain.StrategyTokenBucket))

	v.SetDefault("dispatch.send_timeout", 5*time.Second)
	v.SetDefault("dispatch.max_in_flight", 0)
	v.SetDefault("dispatch.in_flight_wait", time.Duration(0))

	v.SetDefault("window.horizon", time.Second)
	v.SetDefault("report.interval", 500*time.Millisecond)

	v.SetDefault("stats.enabled", false)
	v.SetDefault("stats.redis_addr", "")
	v.SetDefault("stats.redis_password", "")
	v.SetDefault("stats.redis_db", 0)
	v.SetDefault("stats.prefix", "throttler:stats")
	v.SetDefault("stats.ttl", 24*time.Hour)
	v.SetDefault("stats.bucket", "minute")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// New returns a viper instance with defaults and env binding configured.
// cfgFile is optional.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfgFile)
		}
	}
	return v, nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that have no sound runtime semantics.
func (c *Config) Validate() error {
	if c.Limiter.Rate <= 0 || math.IsNaN(c.Limiter.Rate) || math.IsInf(c.Limiter.Rate, 0) {
		return errors.Wrapf(domain.ErrInvalidRate, "limiter.rate=%v", c.Limiter.Rate)
	}
	strategy, err := domain.ParseStrategy(c.Limiter.Strategy)
	if err != nil {
		return errors.Wrapf(err, "limiter.strategy=%q", c.Limiter.Strategy)
	}
	c.Limiter.Strategy = string(strategy)

	if err := validPort("target.port", c.Target.Port); err != nil {
		return err
	}
	if err := validPort("listen.port", c.Listen.Port); err != nil {
		return err
	}
	if c.Dispatch.SendTimeout <= 0 {
		return errors.New("dispatch.send_timeout must be > 0")
	}
	if c.Dispatch.MaxInFlight < 0 {
		return errors.New("dispatch.max_in_flight must be >= 0")
	}
	if c.Window.Horizon <= 0 {
		return errors.New("window.horizon must be > 0")
	}
	if c.Report.Interval <= 0 {
		return errors.New("report.interval must be > 0")
	}
	if c.Stats.Enabled && strings.TrimSpace(c.Stats.RedisAddr) == "" {
		return errors.New("stats.redis_addr is required when stats.enabled=true")
	}
	return nil
}

// Strategy returns the parsed limiter strategy (valid after Validate).
func (c *Config) Strategy() domain.Strategy {
	s, _ := domain.ParseStrategy(c.Limiter.Strategy)
	return s
}

func validPort(key string, p int) error {
	if p < 0 || p > 65535 {
		return errors.Errorf("%s must be in [0, 65535], got %d", key, p)
	}
	return nil
}
