package hub

import (
	"errors"
	"net/http"
)

// notFoundError signals an unknown channel or sink (404).
type notFoundError struct{ kind, name string }

func (e notFoundError) Error() string   { return e.kind + " not found: " + e.name }
func (e notFoundError) StatusCode() int { return http.StatusNotFound }

// ErrChannelNotFound returns an error for a channel name that is not present.
func ErrChannelNotFound(name string) error { return notFoundError{kind: "channel", name: name} }

// ErrSinkNotFound returns an error for a sink name that is not present.
func ErrSinkNotFound(name string) error { return notFoundError{kind: "sink", name: name} }

// IsNotFound reports whether err indicates a missing channel or sink.
func IsNotFound(err error) bool {
	var e notFoundError
	return errors.As(err, &e)
}

// alreadyExistsError signals a name collision (409).
type alreadyExistsError struct{ kind, name string }

func (e alreadyExistsError) Error() string   { return e.kind + " already exists: " + e.name }
func (e alreadyExistsError) StatusCode() int { return http.StatusConflict }

// IsAlreadyExists reports whether err indicates a name collision.
func IsAlreadyExists(err error) bool {
	var e alreadyExistsError
	return errors.As(err, &e)
}

// invalidError signals a request the hub refuses to act on (400).
type invalidError struct{ msg string }

func (e invalidError) Error() string   { return e.msg }
func (e invalidError) StatusCode() int { return http.StatusBadRequest }

// ErrInvalid constructs an invalidError.
func ErrInvalid(msg string) error { return invalidError{msg: msg} }

// IsInvalid reports whether err indicates a rejected request.
func IsInvalid(err error) bool {
	var e invalidError
	return errors.As(err, &e)
}

type closedError struct{}

func (closedError) Error() string   { return "hub is closed" }
func (closedError) StatusCode() int { return http.StatusServiceUnavailable }

// ErrClosed is returned by every operation after Close.
var ErrClosed error = closedError{}
