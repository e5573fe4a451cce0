package hub

import "dispatchd/pkg/types"

// memorySink keeps the most recent events in a fixed-size ring.
type memorySink struct {
	sinkBase
	ring  []types.Event
	next  int
	count int
}

func newMemorySink(name string, capacity int) *memorySink {
	return &memorySink{
		sinkBase: sinkBase{name: name, kind: KindMemory},
		ring:     make([]types.Event, capacity),
	}
}

func (s *memorySink) Invoke(e types.Event) {
	s.received++
	s.ring[s.next] = e
	s.next = (s.next + 1) % len(s.ring)
	if s.count < len(s.ring) {
		s.count++
	}
}

func (s *memorySink) PublisherDied() { s.died++ }

// Recent returns the retained events, oldest first.
func (s *memorySink) Recent() ([]types.Event, error) {
	out := make([]types.Event, 0, s.count)
	start := (s.next - s.count + len(s.ring)) % len(s.ring)
	for i := 0; i < s.count; i++ {
		out = append(out, s.ring[(start+i)%len(s.ring)])
	}
	return out, nil
}

func (s *memorySink) Close() error {
	s.Base.Close()
	return nil
}
