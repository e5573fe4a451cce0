// Package hub owns the named channels and sinks served by dispatchd.
// It is structured into small files by concern:
//
//   - hub.go: Hub type, constructor, Close.
//   - config.go: Config, SinkSpec, ChannelSpec and package defaults.
//   - errors.go: error types and helpers (IsNotFound, IsAlreadyExists, IsInvalid).
//   - channels.go: channel lifecycle (create, clone, assign, close) and emit.
//   - sinks.go: Sink interface, sink lifecycle and attachment.
//   - sink_*.go: the memory, log, metrics and journal sink kinds.
//   - events.go: lifecycle events published on the built-in hub channel.
//   - metrics.go: Prometheus collectors.
//   - status_report.go: listings and Status.
//
// Channels are dispatcher.Dispatcher values and sinks are dispatcher
// listeners, so closing either side cleans up the other. The dispatcher
// package does no locking; Hub serialises every call with a single mutex.
package hub
