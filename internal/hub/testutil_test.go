package hub

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"dispatchd/pkg/types"
)

// traceSink records deliveries into a shared trace so tests can check
// ordering across sinks.
type traceSink struct {
	sinkBase
	trace *[]string
	panic bool
}

func (s *traceSink) Invoke(e types.Event) {
	s.received++
	*s.trace = append(*s.trace, s.name+":"+e.Name)
	if s.panic {
		panic("sink " + s.name + " exploded")
	}
}

func (s *traceSink) PublisherDied() { s.died++ }

func (s *traceSink) Close() error {
	s.Base.Close()
	return nil
}

// addTraceSink installs a traceSink directly into the hub's sink table.
func addTraceSink(t *testing.T, h *Hub, name string, trace *[]string) *traceSink {
	t.Helper()
	s := &traceSink{sinkBase: sinkBase{name: name, kind: "trace"}, trace: trace}
	h.mu.Lock()
	h.sinks[name] = s
	h.mu.Unlock()
	return s
}

func fixedClock() func() time.Time {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h, err := NewWithConfig(Config{Logger: zerolog.Nop(), Now: fixedClock()})
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func sinkInfo(t *testing.T, h *Hub, name string) types.SinkInfo {
	t.Helper()
	for _, s := range h.Sinks() {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("sink %s not listed", name)
	return types.SinkInfo{}
}

func channelInfo(t *testing.T, h *Hub, name string) types.ChannelInfo {
	t.Helper()
	for _, c := range h.Channels() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("channel %s not listed", name)
	return types.ChannelInfo{}
}
