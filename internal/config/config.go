package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"dispatchd/internal/common/fsutil"
	"dispatchd/internal/hub"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by Defaults.
type Config struct {
	Addr         string `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel     string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat    string `json:"log_format" yaml:"log_format" toml:"log_format"`
	MaxBodyBytes int64  `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	DataDir      string `json:"data_dir" yaml:"data_dir" toml:"data_dir"`
	SpoolDir     string `json:"spool_dir" yaml:"spool_dir" toml:"spool_dir"`
	// ShutdownTimeout is a Go duration string such as "5s".
	ShutdownTimeout string `json:"shutdown_timeout" yaml:"shutdown_timeout" toml:"shutdown_timeout"`

	// DefaultCapacity applies to memory sinks declared without a capacity.
	DefaultCapacity int `json:"default_capacity" yaml:"default_capacity" toml:"default_capacity"`
	// JournalLimit caps how many rows a journal sink returns from /sinks/{name}/events.
	JournalLimit int `json:"journal_limit" yaml:"journal_limit" toml:"journal_limit"`

	CORS     CORS      `json:"cors" yaml:"cors" toml:"cors"`
	Sinks    []Sink    `json:"sinks" yaml:"sinks" toml:"sinks"`
	Channels []Channel `json:"channels" yaml:"channels" toml:"channels"`
}

// CORS configures cross-origin access to the HTTP API.
type CORS struct {
	Enabled bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins"`
	Methods []string `json:"methods" yaml:"methods" toml:"methods"`
	Headers []string `json:"headers" yaml:"headers" toml:"headers"`
}

// Sink declares a sink created at startup.
type Sink struct {
	Name     string `json:"name" yaml:"name" toml:"name"`
	Kind     string `json:"kind" yaml:"kind" toml:"kind"`
	Capacity int    `json:"capacity,omitempty" yaml:"capacity,omitempty" toml:"capacity,omitempty"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
}

// Channel declares a channel created at startup and the sinks attached to it,
// in delivery order.
type Channel struct {
	Name  string   `json:"name" yaml:"name" toml:"name"`
	Sinks []string `json:"sinks" yaml:"sinks" toml:"sinks"`
}

const (
	DefaultAddr            = ":8080"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultShutdownTimeout = 5 * time.Second
)

// Defaults fills unset fields.
func (c *Config) Defaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = DefaultShutdownTimeout.String()
	}
	if c.CORS.Enabled && len(c.CORS.Origins) == 0 {
		c.CORS.Origins = []string{"*"}
	}
}

// Validate reports every problem found in the configuration.
func (c *Config) Validate() error {
	var errs error
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("log_level: %w", err))
	}
	switch c.LogFormat {
	case "", "json", "console":
	default:
		errs = multierr.Append(errs, fmt.Errorf("log_format: unsupported %q (json|console)", c.LogFormat))
	}
	if c.ShutdownTimeout != "" {
		if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("shutdown_timeout: %w", err))
		}
	}

	kinds := map[string]bool{}
	for _, k := range hub.Kinds() {
		kinds[k] = true
	}
	sinks := map[string]bool{}
	for i, s := range c.Sinks {
		switch {
		case s.Name == "":
			errs = multierr.Append(errs, fmt.Errorf("sinks[%d]: name is required", i))
		case sinks[s.Name]:
			errs = multierr.Append(errs, fmt.Errorf("sinks[%d]: duplicate sink %q", i, s.Name))
		}
		if !kinds[s.Kind] {
			errs = multierr.Append(errs, fmt.Errorf("sinks[%d]: unknown kind %q", i, s.Kind))
		}
		if s.Capacity < 0 {
			errs = multierr.Append(errs, fmt.Errorf("sinks[%d]: capacity must not be negative", i))
		}
		sinks[s.Name] = true
	}

	channels := map[string]bool{}
	for i, ch := range c.Channels {
		switch {
		case ch.Name == "":
			errs = multierr.Append(errs, fmt.Errorf("channels[%d]: name is required", i))
		case ch.Name == hub.SystemChannel:
			errs = multierr.Append(errs, fmt.Errorf("channels[%d]: %q is reserved", i, ch.Name))
		case channels[ch.Name]:
			errs = multierr.Append(errs, fmt.Errorf("channels[%d]: duplicate channel %q", i, ch.Name))
		}
		channels[ch.Name] = true
		for _, sn := range ch.Sinks {
			if !sinks[sn] {
				errs = multierr.Append(errs, fmt.Errorf("channels[%d]: unknown sink %q", i, sn))
			}
		}
	}
	return errs
}

// Shutdown returns the parsed shutdown timeout.
func (c *Config) Shutdown() time.Duration {
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil || d <= 0 {
		return DefaultShutdownTimeout
	}
	return d
}

// HubConfig translates the sink and channel declarations into a hub.Config.
func (c *Config) HubConfig(l zerolog.Logger) (hub.Config, error) {
	hc := hub.Config{
		Logger:          l,
		DefaultCapacity: c.DefaultCapacity,
		JournalLimit:    c.JournalLimit,
	}
	if c.DataDir != "" {
		dir, err := fsutil.EnsureDir(c.DataDir)
		if err != nil {
			return hc, fmt.Errorf("data_dir: %w", err)
		}
		hc.DataDir = dir
	}
	for _, s := range c.Sinks {
		hc.Sinks = append(hc.Sinks, hub.SinkSpec{Name: s.Name, Kind: s.Kind, Capacity: s.Capacity, Path: s.Path})
	}
	for _, ch := range c.Channels {
		hc.Channels = append(hc.Channels, hub.ChannelSpec{Name: ch.Name, Sinks: ch.Sinks})
	}
	return hc, nil
}
