package pkgresolve

import (
	"context"
	"errors"
	"log/slog"

	"github.com/albertocavalcante/go-pkgresolve/platform"
)

// Option configures a Resolver.
type Option func(*resolverConfig) error

type resolverConfig struct {
	table       *platform.Table
	concurrency int

	// logger is nil when logging is disabled.
	logger *slog.Logger
}

// WithPlatformTable replaces the built-in platform table.
func WithPlatformTable(t *platform.Table) Option {
	return func(c *resolverConfig) error {
		if t == nil {
			return errors.New("platform table must not be nil")
		}
		c.table = t
		return nil
	}
}

// WithPlatformFile loads the platform table from a Starlark definition file.
func WithPlatformFile(path string) Option {
	return func(c *resolverConfig) error {
		t, err := platform.LoadFile(path)
		if err != nil {
			return err
		}
		c.table = t
		return nil
	}
}

// WithConcurrency bounds how many platforms PackageList works on at once.
// Zero means no limit.
func WithConcurrency(n int) Option {
	return func(c *resolverConfig) error {
		c.concurrency = n
		return nil
	}
}

// WithLogger sets a structured logger for resolution diagnostics.
// If not set, logging is disabled (silent mode).
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil)).With("component", "pkgresolve")
//	r, err := pkgresolve.NewResolver(pkgresolve.WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *resolverConfig) error {
		c.logger = l
		return nil
	}
}

func (c *resolverConfig) validate() error {
	if c.concurrency < 0 {
		return errors.New("concurrency must not be negative")
	}
	return nil
}

// log returns the configured logger, or a no-op logger if none was set.
func (c *resolverConfig) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(discardHandler{})
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

func newResolverConfig(opts ...Option) (*resolverConfig, error) {
	c := &resolverConfig{}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	if c.table == nil {
		c.table = platform.Default()
	}

	return c, nil
}
