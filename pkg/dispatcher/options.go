package dispatcher

import "github.com/rs/zerolog"

// Option configures a Dispatcher.
type Option func(*options)

type options struct {
	logger zerolog.Logger
	name   string
}

func defaultOptions() options {
	return options{logger: zerolog.Nop()}
}

// WithLogger sets the logger used for recovered panics and misuse of closed
// dispatchers. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithName labels the dispatcher in log lines and panic errors.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}
