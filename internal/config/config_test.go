package config

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

func TestDefaults(t *testing.T) {
	var c Config
	c.CORS.Enabled = true
	c.Defaults()
	if c.Addr != DefaultAddr || c.LogLevel != "info" || c.LogFormat != "json" || c.MaxBodyBytes != DefaultMaxBodyBytes {
		t.Fatalf("defaults not applied: %+v", c)
	}
	if len(c.CORS.Origins) != 1 || c.CORS.Origins[0] != "*" {
		t.Fatalf("cors origins: %v", c.CORS.Origins)
	}
	if c.Shutdown() != DefaultShutdownTimeout {
		t.Fatalf("shutdown=%v", c.Shutdown())
	}
}

func TestValidate_OK(t *testing.T) {
	c := Config{
		ShutdownTimeout: "2s",
		Sinks:           []Sink{{Name: "a", Kind: "memory"}, {Name: "b", Kind: "journal"}},
		Channels:        []Channel{{Name: "c", Sinks: []string{"a", "b", "a"}}},
	}
	c.Defaults()
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.Shutdown() != 2*time.Second {
		t.Fatalf("shutdown=%v", c.Shutdown())
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	c := Config{
		LogLevel:  "loud",
		LogFormat: "xml",
		Sinks: []Sink{
			{Name: "a", Kind: "memory"},
			{Name: "a", Kind: "memory"},
			{Name: "b", Kind: "pigeon"},
		},
		Channels: []Channel{
			{Name: "hub"},
			{Name: "c", Sinks: []string{"ghost"}},
			{Name: "c"},
		},
	}
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	if n := len(multierr.Errors(err)); n != 7 {
		t.Fatalf("expected 7 problems, got %d: %v", n, err)
	}
	for _, want := range []string{"log_level", "log_format", "duplicate sink", "unknown kind", "reserved", "unknown sink", "duplicate channel"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("missing %q in %v", want, err)
		}
	}
}

func TestHubConfig(t *testing.T) {
	c := Config{
		DataDir:         t.TempDir(),
		DefaultCapacity: 8,
		Sinks:           []Sink{{Name: "a", Kind: "memory", Capacity: 2}},
		Channels:        []Channel{{Name: "c", Sinks: []string{"a"}}},
	}
	hc, err := c.HubConfig(zerolog.Nop())
	if err != nil {
		t.Fatalf("hub config: %v", err)
	}
	if hc.DataDir != c.DataDir || hc.DefaultCapacity != 8 {
		t.Fatalf("unexpected hub config: %+v", hc)
	}
	if len(hc.Sinks) != 1 || hc.Sinks[0].Capacity != 2 || hc.Channels[0].Sinks[0] != "a" {
		t.Fatalf("unexpected declarations: %+v %+v", hc.Sinks, hc.Channels)
	}
}
