package hub

import (
	"fmt"
	"path/filepath"

	"dispatchd/pkg/dispatcher"
	"dispatchd/pkg/types"
)

// Sink is a named listener owned by the hub.
type Sink interface {
	dispatcher.Listener[types.Event]
	Name() string
	Kind() string
	Info() types.SinkInfo
	// Close detaches the sink from every channel and releases its resources.
	Close() error
}

// eventSource is implemented by sinks that can replay what they received.
type eventSource interface {
	Recent() ([]types.Event, error)
}

// sinkBase carries the bookkeeping shared by every sink kind.
type sinkBase struct {
	dispatcher.Base[types.Event]
	name     string
	kind     string
	received uint64
	died     uint64
}

func (s *sinkBase) Name() string { return s.name }
func (s *sinkBase) Kind() string { return s.kind }

func (s *sinkBase) Info() types.SinkInfo {
	return types.SinkInfo{
		Name:          s.name,
		Kind:          s.kind,
		Subscriptions: s.Subscriptions(),
		Received:      s.received,
		PublisherDied: s.died,
	}
}

// newSink builds a sink of the requested kind. Caller holds h.mu.
func (h *Hub) newSink(spec SinkSpec) (Sink, error) {
	switch spec.Kind {
	case KindMemory:
		capacity := spec.Capacity
		if capacity <= 0 {
			capacity = h.defaultCapacity
		}
		return newMemorySink(spec.Name, capacity), nil
	case KindLog:
		return newLogSink(spec.Name, h.log.With().Str("sink", spec.Name).Logger()), nil
	case KindMetrics:
		return newMetricsSink(spec.Name), nil
	case KindJournal:
		path := spec.Path
		if path == "" && h.dataDir != "" {
			path = filepath.Join(h.dataDir, spec.Name+".db")
		}
		return openJournalSink(spec.Name, path, h.journalLimit, h.log.With().Str("sink", spec.Name).Logger())
	default:
		return nil, ErrInvalid(fmt.Sprintf("unknown sink kind %q", spec.Kind))
	}
}

// CreateSink creates a named sink. It is not attached to any channel.
func (h *Hub) CreateSink(spec SinkSpec) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if err := validName(spec.Name); err != nil {
		return err
	}
	if _, ok := h.sinks[spec.Name]; ok {
		return alreadyExistsError{kind: "sink", name: spec.Name}
	}
	s, err := h.newSink(spec)
	if err != nil {
		return err
	}
	h.sinks[spec.Name] = s
	sinksGauge.Inc()
	h.log.Info().Str("sink", spec.Name).Str("kind", spec.Kind).Msg("sink created")
	h.lifecycle(EventSinkCreated, map[string]any{"sink": spec.Name, "kind": spec.Kind})
	return nil
}

// CloseSink closes a sink, detaching it from every channel it is attached to.
func (h *Hub) CloseSink(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	s, ok := h.sinks[name]
	if !ok {
		return ErrSinkNotFound(name)
	}
	delete(h.sinks, name)
	sinksGauge.Dec()
	err := s.Close()
	if err != nil {
		h.lastErr = err.Error()
		h.log.Warn().Err(err).Str("sink", name).Msg("sink close")
	} else {
		h.log.Info().Str("sink", name).Msg("sink closed")
	}
	h.lifecycle(EventSinkClosed, map[string]any{"sink": name})
	return err
}

// Attach registers sink at the end of channel's delivery order. Attaching
// the same sink twice delivers every event to it twice.
func (h *Hub) Attach(channel, sink string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	c, s, err := h.lookupPair(channel, sink)
	if err != nil {
		return err
	}
	c.d.AddListener(s)
	h.log.Debug().Str("channel", channel).Str("sink", sink).Msg("sink attached")
	h.lifecycle(EventSinkAttached, map[string]any{"channel": channel, "sink": sink})
	return nil
}

// Detach removes one registration of sink from channel. Detaching a sink that
// is not attached is not an error.
func (h *Hub) Detach(channel, sink string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	c, s, err := h.lookupPair(channel, sink)
	if err != nil {
		return err
	}
	c.d.RemoveListener(s)
	h.log.Debug().Str("channel", channel).Str("sink", sink).Msg("sink detached")
	h.lifecycle(EventSinkDetached, map[string]any{"channel": channel, "sink": sink})
	return nil
}

// SinkEvents returns the events retained by a memory or journal sink,
// oldest first.
func (h *Hub) SinkEvents(name string) ([]types.Event, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	s, ok := h.sinks[name]
	if !ok {
		return nil, ErrSinkNotFound(name)
	}
	src, ok := s.(eventSource)
	if !ok {
		return nil, ErrInvalid(fmt.Sprintf("sink %s (%s) does not retain events", name, s.Kind()))
	}
	return src.Recent()
}

func (h *Hub) lookupPair(name, sink string) (*channelEntry, Sink, error) {
	c, ok := h.channels[name]
	if !ok {
		return nil, nil, ErrChannelNotFound(name)
	}
	s, ok := h.sinks[sink]
	if !ok {
		return nil, nil, ErrSinkNotFound(sink)
	}
	return c, s, nil
}
