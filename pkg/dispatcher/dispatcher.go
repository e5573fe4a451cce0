package dispatcher

import (
	"fmt"
	"runtime/debug"

	"go.uber.org/multierr"
)

// Dispatcher is an ordered registry of listeners for one event type.
// The registration order is the delivery order.
//
// Use New to create one. A Dispatcher must not be copied by value; use Clone
// or Assign.
type Dispatcher[E any] struct {
	noCopy   noCopy
	regs     []*registration[E]
	draining bool
	closed   bool
	opts     options
}

// New creates an empty dispatcher.
func New[E any](opts ...Option) *Dispatcher[E] {
	d := &Dispatcher[E]{opts: defaultOptions()}
	for _, opt := range opts {
		opt(&d.opts)
	}
	return d
}

// Name returns the label set with WithName.
func (d *Dispatcher[E]) Name() string { return d.opts.name }

// AddListener appends l to the delivery order. Adding the same listener
// twice results in two deliveries per Emit.
func (d *Dispatcher[E]) AddListener(l Listener[E]) {
	if l == nil {
		return
	}
	if d.closed || d.draining {
		d.opts.logger.Debug().Str("dispatcher", d.opts.name).Msg("add listener ignored: dispatcher is shutting down")
		return
	}
	d.link(l)
}

// RemoveListener removes the first registration of l. It is a no-op when l
// is not registered.
func (d *Dispatcher[E]) RemoveListener(l Listener[E]) {
	if l == nil {
		return
	}
	base := l.listenerBase()
	for _, r := range d.regs {
		if r.base == base {
			d.unlink(r)
			return
		}
	}
}

// Emit delivers event to every registered listener in registration order.
// A panicking listener does not stop delivery; the recovered panics are
// returned as *PanicError values combined with multierr.
func (d *Dispatcher[E]) Emit(event E) error {
	if d.closed {
		d.opts.logger.Debug().Str("dispatcher", d.opts.name).Msg("emit on closed dispatcher")
		return ErrClosed
	}
	snap := make([]*registration[E], len(d.regs))
	copy(snap, d.regs)

	var errs error
	for _, r := range snap {
		// removed by an earlier listener during this walk
		if !r.live {
			continue
		}
		errs = multierr.Append(errs, d.invoke(r.l, event))
	}
	return errs
}

// Clone returns a new dispatcher registered with the same listeners, in the
// same order, as d. The clone starts from d's options; opts are applied on
// top.
func (d *Dispatcher[E]) Clone(opts ...Option) *Dispatcher[E] {
	c := &Dispatcher[E]{opts: d.opts}
	for _, opt := range opts {
		opt(&c.opts)
	}
	for _, r := range d.regs {
		c.link(r.l)
	}
	return c
}

// Assign replaces d's listeners with those of src. Every listener removed
// from d is told PublisherDied first. Assigning a dispatcher to itself does
// nothing; a nil src leaves d empty.
func (d *Dispatcher[E]) Assign(src *Dispatcher[E]) {
	if src == d {
		return
	}
	if d.closed {
		d.opts.logger.Debug().Str("dispatcher", d.opts.name).Msg("assign to closed dispatcher ignored")
		return
	}
	// snapshot before draining: src may share listeners with d
	var incoming []Listener[E]
	if src != nil {
		incoming = make([]Listener[E], 0, len(src.regs))
		for _, r := range src.regs {
			incoming = append(incoming, r.l)
		}
	}
	d.drain()
	// a listener may have closed d from PublisherDied
	if d.closed {
		d.opts.logger.Debug().Str("dispatcher", d.opts.name).Msg("dispatcher closed during assign")
		return
	}
	for _, l := range incoming {
		d.link(l)
	}
}

// Close tears the dispatcher down. Every listener still registered receives
// PublisherDied and loses its back-reference. Close is idempotent; after it
// returns AddListener is ignored and Emit returns ErrClosed.
func (d *Dispatcher[E]) Close() {
	if d.closed {
		return
	}
	d.closed = true
	// called from PublisherDied: the running drain empties the registry
	if d.draining {
		return
	}
	d.drain()
}

// Closed reports whether Close has been called.
func (d *Dispatcher[E]) Closed() bool { return d.closed }

// Len returns the number of registrations, counting duplicates.
func (d *Dispatcher[E]) Len() int { return len(d.regs) }

// Listeners returns the registered listeners in delivery order.
func (d *Dispatcher[E]) Listeners() []Listener[E] {
	out := make([]Listener[E], len(d.regs))
	for i, r := range d.regs {
		out[i] = r.l
	}
	return out
}

// Count returns how many times l is registered.
func (d *Dispatcher[E]) Count(l Listener[E]) int {
	if l == nil {
		return 0
	}
	base := l.listenerBase()
	n := 0
	for _, r := range d.regs {
		if r.base == base {
			n++
		}
	}
	return n
}

func (d *Dispatcher[E]) link(l Listener[E]) {
	r := &registration[E]{d: d, l: l, base: l.listenerBase(), live: true}
	d.regs = append(d.regs, r)
	r.base.regs = append(r.base.regs, r)
}

func (d *Dispatcher[E]) unlink(r *registration[E]) {
	d.regs = removeReg(d.regs, r)
	r.base.regs = removeReg(r.base.regs, r)
	r.live = false
}

// drain always works on the current front so callbacks that touch the
// registry cannot invalidate the walk. Each registration is unlinked before
// its listener is notified, so it is notified at most once.
func (d *Dispatcher[E]) drain() {
	d.draining = true
	defer func() { d.draining = false }()
	for len(d.regs) > 0 {
		r := d.regs[0]
		d.unlink(r)
		d.notifyDied(r.l)
	}
}

func (d *Dispatcher[E]) notifyDied(l Listener[E]) {
	defer func() {
		if v := recover(); v != nil {
			d.opts.logger.Error().
				Str("dispatcher", d.opts.name).
				Str("listener", fmt.Sprintf("%T", l)).
				Interface("panic", v).
				Msg("publisher died notification panicked")
		}
	}()
	l.PublisherDied()
}

func (d *Dispatcher[E]) invoke(l Listener[E], event E) (err error) {
	defer func() {
		if v := recover(); v != nil {
			pe := &PanicError{
				Dispatcher: d.opts.name,
				Listener:   fmt.Sprintf("%T", l),
				Value:      v,
				Stack:      debug.Stack(),
			}
			d.opts.logger.Error().
				Str("dispatcher", pe.Dispatcher).
				Str("listener", pe.Listener).
				Interface("panic", v).
				Msg("listener panicked")
			err = pe
		}
	}()
	l.Invoke(event)
	return nil
}
