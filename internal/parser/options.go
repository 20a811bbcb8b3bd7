package parser

import "log/slog"

type config struct {
	logger     *slog.Logger
	strictKeys bool
}

// Option configures the series parser.
type Option func(*config)

// WithLogger sets the logger that receives skipped-line diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStrictKeys makes a repeated group key a fatal error instead of
// overwriting the earlier group.
func WithStrictKeys() Option {
	return func(c *config) {
		c.strictKeys = true
	}
}

func makeConfig(opts ...Option) config {
	c := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
