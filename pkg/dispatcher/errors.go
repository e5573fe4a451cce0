package dispatcher

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Emit on a dispatcher that has been closed.
var ErrClosed = errors.New("dispatcher is closed")

// PanicError records a panic raised by a listener during Emit.
type PanicError struct {
	// Dispatcher is the name given with WithName, if any.
	Dispatcher string
	// Listener is the dynamic type of the listener that panicked.
	Listener string
	// Value is the value passed to panic().
	Value any
	// Stack is the goroutine stack at the point of recovery.
	Stack []byte
}

func (e *PanicError) Error() string {
	if e.Dispatcher != "" {
		return fmt.Sprintf("dispatcher %s: listener %s panicked: %v", e.Dispatcher, e.Listener, e.Value)
	}
	return fmt.Sprintf("listener %s panicked: %v", e.Listener, e.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsPanic reports whether err is, or wraps, a *PanicError.
func IsPanic(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}
