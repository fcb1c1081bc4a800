package config

import "time"

// Config represents the complete throttler configuration.
// Layer 1: built-in defaults (SetDefaults)
// Layer 2: optional YAML file (--config)
// Layer 3: THROTTLER_* environment variables and command-line flags
type Config struct {
	Target   EndpointConfig `mapstructure:"target" yaml:"target"`
	Listen   EndpointConfig `mapstructure:"listen" yaml:"listen"`
	Limiter  LimiterConfig  `mapstructure:"limiter" yaml:"limiter"`
	Dispatch DispatchConfig `mapstructure:"dispatch" yaml:"dispatch"`
	Window   WindowConfig   `mapstructure:"window" yaml:"window"`
	Report   ReportConfig   `mapstructure:"report" yaml:"report"`
	Stats    StatsConfig    `mapstructure:"stats" yaml:"stats"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// EndpointConfig is a host/port pair.
type EndpointConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// LimiterConfig selects the admission strategy and its rate.
type LimiterConfig struct {
	// Rate is the requests/second target; must be > 0.
	Rate float64 `mapstructure:"rate" yaml:"rate"`

	// Strategy is one of: bucket, fixed, xrate
	Strategy string `mapstructure:"strategy" yaml:"strategy"`
}

// DispatchConfig tunes the fire-and-forget send tasks.
type DispatchConfig struct {
	SendTimeout time.Duration `mapstructure:"send_timeout" yaml:"send_timeout"`

	// MaxInFlight caps concurrent sends; 0 disables the cap.
	MaxInFlight  int           `mapstructure:"max_in_flight" yaml:"max_in_flight"`
	InFlightWait time.Duration `mapstructure:"in_flight_wait" yaml:"in_flight_wait"`
}

// WindowConfig contains the request window horizon.
type WindowConfig struct {
	Horizon time.Duration `mapstructure:"horizon" yaml:"horizon"`
}

// ReportConfig contains the rate reporter cadence.
type ReportConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// StatsConfig enables the optional Redis stats store.
type StatsConfig struct {
	Enabled       bool          `mapstructure:"enabled" yaml:"enabled"`
	RedisAddr     string        `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"-"`
	RedisDB       int           `mapstructure:"redis_db" yaml:"redis_db"`
	Prefix        string        `mapstructure:"prefix" yaml:"prefix"`
	TTL           time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Bucket        string        `mapstructure:"bucket" yaml:"bucket"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level" yaml:"level"`

	// Format is console or json
	Format string `mapstructure:"format" yaml:"format"`
}
