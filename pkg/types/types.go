package types

import (
	"time"

	"github.com/google/uuid"
)

// Event is the payload carried by every dispatchd channel.
type Event struct {
	// Unique event identifier. Assigned by the server when empty.
	// example: 5f0c7d0e-8a51-4c53-9b1e-6a3f8e2d1c44
	ID string `json:"id" example:"5f0c7d0e-8a51-4c53-9b1e-6a3f8e2d1c44"`
	// Channel the event was emitted on.
	// example: orders
	Channel string `json:"channel" example:"orders"`
	// Application-defined event name.
	// example: order_created
	Name string `json:"name" example:"order_created"`
	// Arbitrary JSON payload.
	Payload map[string]any `json:"payload,omitempty"`
	// Emission time.
	Time time.Time `json:"time"`
}

// Normalize fills in the identifier and timestamp when unset.
func (e Event) Normalize(now time.Time) Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = now
	}
	return e
}
