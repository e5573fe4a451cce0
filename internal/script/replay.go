package script

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"dispatchd/pkg/types"
)

// Emitter is the part of the hub a replay needs.
type Emitter interface {
	Emit(channel string, ev types.Event) (types.EmitResponse, error)
}

// Summary counts the outcome of a replay.
type Summary struct {
	Emitted   int
	Delivered int
	// Failures counts sink panics reported by successful emits.
	Failures int
	// Rejected counts events the hub refused (unknown channel, ...).
	Rejected int
}

// Replay emits events in order. Rejected events do not stop the replay; their
// errors are combined into the returned error. Replay stops early when ctx is
// done.
func Replay(ctx context.Context, em Emitter, events []types.Event) (Summary, error) {
	var (
		sum  Summary
		errs error
	)
	for i, ev := range events {
		if err := ctx.Err(); err != nil {
			return sum, multierr.Append(errs, err)
		}
		resp, err := em.Emit(ev.Channel, ev)
		if err != nil {
			sum.Rejected++
			errs = multierr.Append(errs, fmt.Errorf("event %d (%s/%s): %w", i, ev.Channel, ev.Name, err))
			continue
		}
		sum.Emitted++
		sum.Delivered += resp.Delivered
		sum.Failures += len(resp.Failures)
	}
	return sum, errs
}
