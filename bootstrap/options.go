package bootstrap

import (
	"time"

	"github.com/kbukum/artifactstore/logger"
	"github.com/kbukum/artifactstore/storage"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
	session         any
	storageOpts     []storage.Option
	handleSignals   bool
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger. If not set, the logger is initialized
// from the config's logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithSession hands the storage backend an existing session
// (a *database.DB, *gorm.DB, s3 client or memory backend) instead of
// letting it open its own.
func WithSession(session any) Option {
	return func(o *appOptions) {
		o.session = session
	}
}

// WithStorageOptions forwards options to the storage facade.
func WithStorageOptions(opts ...storage.Option) Option {
	return func(o *appOptions) {
		o.storageOpts = append(o.storageOpts, opts...)
	}
}

// WithSignalHandling cancels the running task on SIGINT or SIGTERM.
func WithSignalHandling() Option {
	return func(o *appOptions) {
		o.handleSignals = true
	}
}
