package hub

import (
	"github.com/rs/zerolog"

	"dispatchd/pkg/types"
)

// logSink writes every event it receives to a structured logger.
type logSink struct {
	sinkBase
	log zerolog.Logger
}

func newLogSink(name string, l zerolog.Logger) *logSink {
	return &logSink{sinkBase: sinkBase{name: name, kind: KindLog}, log: l}
}

func (s *logSink) Invoke(e types.Event) {
	s.received++
	s.log.Info().
		Str("channel", e.Channel).
		Str("event", e.Name).
		Str("id", e.ID).
		Fields(e.Payload).
		Msg("event")
}

func (s *logSink) PublisherDied() {
	s.died++
	s.log.Warn().Msg("publisher died")
}

func (s *logSink) Close() error {
	s.Base.Close()
	return nil
}
