package hub

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"dispatchd/pkg/dispatcher"
	"dispatchd/pkg/types"
)

// Hub owns every channel and sink of a dispatchd process.
type Hub struct {
	mu       sync.Mutex
	log      zerolog.Logger
	channels map[string]*channelEntry
	sinks    map[string]Sink
	system   *channelEntry
	closed   bool

	dataDir         string
	defaultCapacity int
	journalLimit    int
	now             func() time.Time
	startTime       time.Time

	emittedTotal uint64
	panicsTotal  uint64
	lastErr      string
}

// channelEntry is a named dispatcher plus its counters.
type channelEntry struct {
	name    string
	d       *dispatcher.Dispatcher[types.Event]
	emitted uint64
	system  bool
}

// New constructs an empty Hub with default settings.
func New(l zerolog.Logger) *Hub {
	h, _ := NewWithConfig(Config{Logger: l})
	return h
}

// NewWithConfig constructs a Hub and creates the sinks and channels listed
// in cfg, in that order. On error everything created so far is closed.
func NewWithConfig(cfg Config) (*Hub, error) {
	h := &Hub{
		log:             cfg.Logger.With().Str("component", "hub").Logger(),
		channels:        make(map[string]*channelEntry),
		sinks:           make(map[string]Sink),
		dataDir:         cfg.DataDir,
		defaultCapacity: cfg.DefaultCapacity,
		journalLimit:    cfg.JournalLimit,
		now:             cfg.Now,
	}
	// Apply defaults if unset
	if h.defaultCapacity <= 0 {
		h.defaultCapacity = defaultMemoryCapacity
	}
	if h.journalLimit <= 0 {
		h.journalLimit = defaultJournalLimit
	}
	if h.now == nil {
		h.now = time.Now
	}
	h.startTime = h.now()

	h.system = h.newChannel(SystemChannel)
	h.system.system = true
	h.channels[SystemChannel] = h.system
	channelsGauge.Inc()

	for _, s := range cfg.Sinks {
		if err := h.CreateSink(s); err != nil {
			_ = h.Close()
			return nil, fmt.Errorf("sink %s: %w", s.Name, err)
		}
	}
	for _, c := range cfg.Channels {
		if err := h.CreateChannel(c.Name, c.Sinks...); err != nil {
			_ = h.Close()
			return nil, fmt.Errorf("channel %s: %w", c.Name, err)
		}
	}
	return h, nil
}

func (h *Hub) newChannel(name string) *channelEntry {
	return &channelEntry{
		name: name,
		d: dispatcher.New[types.Event](
			dispatcher.WithName(name),
			dispatcher.WithLogger(h.log.With().Str("channel", name).Logger()),
		),
	}
}

// Close closes every channel, the hub channel last, and then every sink.
// Sinks receive PublisherDied once per registration still held.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for _, name := range h.sortedChannelNames() {
		c := h.channels[name]
		if c.system {
			continue
		}
		c.d.Close()
		channelsGauge.Dec()
	}
	h.system.d.Close()
	channelsGauge.Dec()
	h.channels = map[string]*channelEntry{}

	var errs error
	for _, name := range h.sortedSinkNames() {
		errs = multierr.Append(errs, h.sinks[name].Close())
		sinksGauge.Dec()
	}
	h.sinks = map[string]Sink{}
	h.log.Info().Msg("hub closed")
	return errs
}

// lifecycle publishes a hub event on the system channel. Caller holds h.mu.
func (h *Hub) lifecycle(name string, fields map[string]any) {
	ev := types.Event{Channel: SystemChannel, Name: name, Payload: fields}.Normalize(h.now())
	if err := h.system.d.Emit(ev); err != nil {
		h.recordPanics(h.system, err)
	}
	h.system.emitted++
	h.emittedTotal++
	emitsTotal.WithLabelValues(SystemChannel).Inc()
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

func validName(name string) error {
	if !namePattern.MatchString(name) {
		return ErrInvalid(fmt.Sprintf("invalid name %q", name))
	}
	return nil
}

func (h *Hub) sortedChannelNames() []string {
	names := make([]string, 0, len(h.channels))
	for n := range h.channels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (h *Hub) sortedSinkNames() []string {
	names := make([]string, 0, len(h.sinks))
	for n := range h.sinks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
