package dispatcher

// FuncListener adapts two plain functions to the Listener interface.
type FuncListener[E any] struct {
	Base[E]
	onEvent func(E)
	onDied  func()
}

// NewFuncListener returns a listener calling onEvent for every event and
// onDied when a dispatcher goes away. Either function may be nil.
func NewFuncListener[E any](onEvent func(E), onDied func()) *FuncListener[E] {
	return &FuncListener[E]{onEvent: onEvent, onDied: onDied}
}

func (f *FuncListener[E]) Invoke(event E) {
	if f.onEvent != nil {
		f.onEvent(event)
	}
}

func (f *FuncListener[E]) PublisherDied() {
	if f.onDied != nil {
		f.onDied()
	}
}
