package hub

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultMemoryCapacity = 128
	defaultJournalLimit   = 100
)

// Sink kinds understood by CreateSink.
const (
	KindMemory  = "memory"
	KindLog     = "log"
	KindMetrics = "metrics"
	KindJournal = "journal"
)

// Kinds lists every supported sink kind.
func Kinds() []string { return []string{KindMemory, KindLog, KindMetrics, KindJournal} }

// SinkSpec describes a sink to create.
type SinkSpec struct {
	Name string
	Kind string
	// Capacity bounds the ring of a memory sink.
	Capacity int
	// Path is the SQLite database of a journal sink. Empty means a file named
	// after the sink inside Config.DataDir, or an in-memory database when
	// DataDir is unset too.
	Path string
}

// ChannelSpec describes a channel to create at startup.
type ChannelSpec struct {
	Name  string
	Sinks []string
}

// Config encapsulates all tunables for Hub construction.
type Config struct {
	Logger          zerolog.Logger
	DataDir         string
	DefaultCapacity int
	JournalLimit    int
	Sinks           []SinkSpec
	Channels        []ChannelSpec
	// Now is the clock used for event timestamps; defaults to time.Now.
	Now func() time.Time
}
