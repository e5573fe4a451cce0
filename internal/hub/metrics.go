package hub

import "github.com/prometheus/client_golang/prometheus"

var (
	channelsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dispatchd",
		Subsystem: "hub",
		Name:      "channels",
		Help:      "Open channels, including the hub lifecycle channel",
	})

	sinksGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dispatchd",
		Subsystem: "hub",
		Name:      "sinks",
		Help:      "Open sinks",
	})

	emitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dispatchd",
			Subsystem: "hub",
			Name:      "emits_total",
			Help:      "Events emitted per channel",
		},
		[]string{"channel"},
	)

	listenerPanicsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dispatchd",
			Subsystem: "hub",
			Name:      "listener_panics_total",
			Help:      "Sink panics recovered during emit, per channel",
		},
		[]string{"channel"},
	)

	sinkEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dispatchd",
			Subsystem: "sink",
			Name:      "events_total",
			Help:      "Events received by metrics sinks",
		},
		[]string{"sink", "channel"},
	)

	sinkPublisherDiedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dispatchd",
			Subsystem: "sink",
			Name:      "publisher_died_total",
			Help:      "Publisher-died notifications received by metrics sinks",
		},
		[]string{"sink"},
	)

	sinkWriteFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dispatchd",
			Subsystem: "sink",
			Name:      "write_failures_total",
			Help:      "Events journal sinks failed to persist",
		},
		[]string{"sink"},
	)
)

func init() {
	prometheus.MustRegister(channelsGauge, sinksGauge, emitsTotal, listenerPanicsTotal, sinkEventsTotal, sinkPublisherDiedTotal, sinkWriteFailuresTotal)
}
