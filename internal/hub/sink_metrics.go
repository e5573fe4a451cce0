package hub

import "dispatchd/pkg/types"

// metricsSink counts events per channel in Prometheus.
type metricsSink struct {
	sinkBase
}

func newMetricsSink(name string) *metricsSink {
	return &metricsSink{sinkBase: sinkBase{name: name, kind: KindMetrics}}
}

func (s *metricsSink) Invoke(e types.Event) {
	s.received++
	sinkEventsTotal.WithLabelValues(s.name, e.Channel).Inc()
}

func (s *metricsSink) PublisherDied() {
	s.died++
	sinkPublisherDiedTotal.WithLabelValues(s.name).Inc()
}

func (s *metricsSink) Close() error {
	s.Base.Close()
	return nil
}
