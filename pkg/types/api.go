package types

// EmitRequest is the body of POST /channels/{name}/emit.
type EmitRequest struct {
	// Optional event identifier; generated when omitted.
	// example: 5f0c7d0e-8a51-4c53-9b1e-6a3f8e2d1c44
	ID string `json:"id,omitempty" example:"5f0c7d0e-8a51-4c53-9b1e-6a3f8e2d1c44"`
	// Required event name.
	// example: order_created
	Name string `json:"name" example:"order_created"`
	// Arbitrary JSON payload delivered unchanged to every sink.
	Payload map[string]any `json:"payload,omitempty"`
}

// EmitResponse reports the outcome of a single emit.
type EmitResponse struct {
	// The event as delivered.
	Event Event `json:"event"`
	// Number of registrations the event was offered to.
	// example: 3
	Delivered int `json:"delivered" example:"3"`
	// Panics raised by sinks, one message per failing delivery.
	Failures []string `json:"failures,omitempty"`
}

// CreateChannelRequest is the body of POST /channels.
type CreateChannelRequest struct {
	// example: orders
	Name string `json:"name" example:"orders"`
	// Sinks to attach right away, in delivery order.
	// example: ["audit","metrics"]
	Sinks []string `json:"sinks,omitempty" example:"[\"audit\",\"metrics\"]"`
}

// CloneChannelRequest is the body of POST /channels/{name}/clone.
type CloneChannelRequest struct {
	// Name of the new channel.
	// example: orders-copy
	Name string `json:"name" example:"orders-copy"`
}

// AssignChannelRequest is the body of PUT /channels/{name}/assign.
type AssignChannelRequest struct {
	// Channel whose sink set replaces the target's.
	// example: orders
	From string `json:"from" example:"orders"`
}

// CreateSinkRequest is the body of POST /sinks.
type CreateSinkRequest struct {
	// example: audit
	Name string `json:"name" example:"audit"`
	// One of memory, log, metrics, journal.
	// example: memory
	Kind string `json:"kind" example:"memory"`
	// Ring size for memory sinks.
	// example: 256
	Capacity int `json:"capacity,omitempty" example:"256"`
	// Database path for journal sinks.
	// example: /var/lib/dispatchd/journal.db
	Path string `json:"path,omitempty" example:"/var/lib/dispatchd/journal.db"`
}

// ChannelInfo summarizes a channel for listings.
type ChannelInfo struct {
	// example: orders
	Name string `json:"name" example:"orders"`
	// Attached sinks in delivery order; duplicates are listed twice.
	// example: ["audit","metrics"]
	Sinks []string `json:"sinks" example:"[\"audit\",\"metrics\"]"`
	// Total events emitted on this channel.
	// example: 42
	Emitted uint64 `json:"emitted" example:"42"`
	// True for the built-in hub lifecycle channel.
	System bool `json:"system,omitempty"`
}

// SinkInfo summarizes a sink for listings.
type SinkInfo struct {
	// example: audit
	Name string `json:"name" example:"audit"`
	// example: memory
	Kind string `json:"kind" example:"memory"`
	// Number of channel registrations held by this sink.
	// example: 2
	Subscriptions int `json:"subscriptions" example:"2"`
	// Events received so far.
	// example: 17
	Received uint64 `json:"received" example:"17"`
	// Number of publisher-died notifications received.
	// example: 1
	PublisherDied uint64 `json:"publisher_died" example:"1"`
	// Events a journal sink failed to persist.
	// example: 0
	WriteFailures uint64 `json:"write_failures,omitempty" example:"0"`
}

// ChannelsResponse wraps GET /channels.
type ChannelsResponse struct {
	Channels []ChannelInfo `json:"channels"`
}

// SinksResponse wraps GET /sinks.
type SinksResponse struct {
	Sinks []SinkInfo `json:"sinks"`
}

// SinkEventsResponse wraps GET /sinks/{name}/events.
type SinkEventsResponse struct {
	// example: audit
	Sink   string  `json:"sink" example:"audit"`
	Events []Event `json:"events"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Channels []ChannelInfo `json:"channels"`
	Sinks    []SinkInfo    `json:"sinks"`
	// Total events emitted across all channels.
	// example: 1200
	EmittedTotal uint64 `json:"emitted_total" example:"1200"`
	// Total listener panics recovered during emits.
	// example: 0
	PanicsTotal uint64 `json:"panics_total" example:"0"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Last error observed by the hub (if any).
	LastError string `json:"last_error,omitempty"`
}
