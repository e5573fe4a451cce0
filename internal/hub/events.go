package hub

// SystemChannel is the built-in channel carrying hub lifecycle events.
// Sinks attach to it like to any other channel; it cannot be closed,
// assigned over or emitted on from outside.
const SystemChannel = "hub"

// Lifecycle event names published on SystemChannel.
const (
	EventChannelCreated  = "channel_created"
	EventChannelCloned   = "channel_cloned"
	EventChannelAssigned = "channel_assigned"
	EventChannelClosed   = "channel_closed"
	EventSinkCreated     = "sink_created"
	EventSinkClosed      = "sink_closed"
	EventSinkAttached    = "sink_attached"
	EventSinkDetached    = "sink_detached"
)
