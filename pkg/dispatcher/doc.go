// Package dispatcher provides a generic, synchronous, in-process
// publish/subscribe primitive with safe bidirectional lifetime management.
//
// A Dispatcher holds an ordered registry of listeners for one event type and
// broadcasts events to them in registration order. Every listener tracks the
// dispatchers it is registered with, so either side can be torn down first:
//
//   - Closing a listener (Base.Close) removes it from every dispatcher that
//     still references it.
//   - Closing a dispatcher (Dispatcher.Close) notifies every remaining
//     listener via PublisherDied and removes the mirrored back-reference.
//
// # Listeners
//
// A listener is any type that implements Invoke and PublisherDied and embeds
// Base for the relationship bookkeeping:
//
//	type printer struct {
//	    dispatcher.Base[string]
//	}
//
//	func (p *printer) Invoke(s string)  { fmt.Println(s) }
//	func (p *printer) PublisherDied()   {}
//
// Listeners and dispatchers are identity objects. Both carry a noCopy marker
// so `go vet` reports value copies; always pass them by pointer.
//
// # Copying dispatchers
//
// Clone returns a new dispatcher registered with the same listeners as the
// source. Assign first drains the target (each removed listener receives
// PublisherDied) and then registers the source's listeners. There is no move:
// back-references hold the dispatcher's address.
//
// # Failure policy
//
// A panic raised by a listener's Invoke is recovered, wrapped in a
// *PanicError and delivery continues with the next listener. Emit returns
// all panics of the call combined with multierr. Panics raised by
// PublisherDied are recovered and logged.
//
// # Re-entrancy
//
// Emit walks a snapshot of the registry taken when it starts. Listeners
// registered during the walk do not receive the in-flight event. Listeners
// removed during the walk, before their turn, are skipped.
//
// Teardown (Close, Assign, Base.Close) unlinks each registration before its
// listener is told PublisherDied, so a listener is notified once per
// registration. Closing the dispatcher from PublisherDied marks it closed and
// lets the running teardown finish; an Assign in progress then registers
// nothing.
//
// # Concurrency
//
// Nothing in this package locks. A dispatcher and the listeners registered
// with it must be used from a single goroutine at a time; callers that share
// them across goroutines must serialise access themselves.
package dispatcher
