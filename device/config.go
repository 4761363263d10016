package device

import "go.uber.org/zap"

// config holds Handle construction options, generalizing go4vl's
// device_config.go functional-options idiom off its capture-only
// ioType/pixFormat/bufSize/fps fields onto what a Device Handle actually
// needs: a logger and the raw open(2) flags.
type config struct {
	logger    *zap.Logger
	openFlags int
}

// Option configures a Handle at Open time.
type Option func(*config)

// WithLogger attaches a structured logger; Open logs each probe attempt at
// debug level and the winning device at info level. Defaults to zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithOpenFlags overrides the flags passed to the underlying open(2) call
// (default O_RDWR|O_NONBLOCK).
func WithOpenFlags(flags int) Option {
	return func(c *config) { c.openFlags = flags }
}
