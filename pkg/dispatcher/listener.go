package dispatcher

// Listener receives events from the dispatchers it is registered with.
//
// Concrete listeners embed Base, which provides the unexported accessor this
// interface requires and keeps the back-references used for cleanup.
type Listener[E any] interface {
	// Invoke is called once for every event delivered to this listener.
	Invoke(event E)

	// PublisherDied is called when a dispatcher this listener is registered
	// with is closed or assigned over. The relationship is already being torn
	// down; implementations must not add or remove themselves on that
	// dispatcher from here.
	PublisherDied()

	listenerBase() *Base[E]
}

// registration is one entry of a dispatcher's registry. The same pointer is
// held by the dispatcher and by the listener's Base, so both sides always
// agree on what exists.
type registration[E any] struct {
	d    *Dispatcher[E]
	l    Listener[E]
	base *Base[E]
	live bool
}

// Base tracks the dispatchers a listener is registered with. Embed it in a
// listener type; the zero value is ready to use.
type Base[E any] struct {
	noCopy noCopy
	regs   []*registration[E]
}

func (b *Base[E]) listenerBase() *Base[E] { return b }

// Close removes the listener from every dispatcher still referencing it.
// The listener may be registered again afterwards.
//
// Types that embed Base and define their own Close must call Base.Close.
func (b *Base[E]) Close() {
	for len(b.regs) > 0 {
		r := b.regs[len(b.regs)-1]
		r.d.unlink(r)
	}
}

// Subscriptions returns the number of registrations held by the listener,
// counting duplicates.
func (b *Base[E]) Subscriptions() int { return len(b.regs) }

// SubscribedTo reports whether the listener is registered with d.
func (b *Base[E]) SubscribedTo(d *Dispatcher[E]) bool {
	for _, r := range b.regs {
		if r.d == d {
			return true
		}
	}
	return false
}

// noCopy may be embedded into structs which must not be copied after first
// use. See https://golang.org/issues/8005#issuecomment-190753527.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// removeReg deletes r from regs preserving order.
func removeReg[E any](regs []*registration[E], r *registration[E]) []*registration[E] {
	for i, x := range regs {
		if x == r {
			copy(regs[i:], regs[i+1:])
			regs[len(regs)-1] = nil
			return regs[:len(regs)-1]
		}
	}
	return regs
}
