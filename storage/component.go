package storage

import (
	"context"
	"fmt"

	"github.com/kbukum/artifactstore/component"
	"github.com/kbukum/artifactstore/logger"
)

// healthProbeKey is looked up by Health; its absence is the healthy answer.
const healthProbeKey = ".health/probe"

// SessionSource supplies a session that only exists once its owner has
// started, such as a database component registered ahead of storage.
type SessionSource interface {
	Session() any
}

// Component wraps Store and implements component.Component for lifecycle management.
type Component struct {
	store   *Store
	cfg     Config
	session any
	log     *logger.Logger
	opts    []Option
}

// NewComponent creates a storage component for use with the component registry.
// session may be nil, in which case the backend opens and owns its own, or a
// SessionSource resolved on Start.
func NewComponent(cfg Config, session any, log *logger.Logger, opts ...Option) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg:     cfg,
		session: session,
		log:     log,
		opts:    opts,
	}
}

// Store returns the underlying Store, or nil if not started.
func (c *Component) Store() *Store {
	return c.store
}

// ensure Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Name returns the component name.
func (c *Component) Name() string { return "storage" }

// Start builds the Store.
func (c *Component) Start(_ context.Context) error {
	session := c.session
	if src, ok := session.(SessionSource); ok {
		if session = src.Session(); session == nil {
			return fmt.Errorf("storage start: session source %T has not started", src)
		}
	}
	s, err := New(c.cfg, session, c.log, c.opts...)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.store = s
	return nil
}

// Stop releases the backend's connection if the backend opened it.
func (c *Component) Stop(_ context.Context) error {
	if c.store == nil {
		return nil
	}
	var err error
	if cl, ok := c.store.Backend().(Closer); ok {
		err = cl.Close()
	}
	c.store = nil
	return err
}

// Health probes the backend with an Exists lookup.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.store == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "storage not initialized",
		}
	}

	if _, err := c.store.Exists(ctx, healthProbeKey); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("health probe failed: %v", err),
		}
	}

	return component.Health{
		Name:   c.Name(),
		Status: component.StatusHealthy,
	}
}

// Describe returns infrastructure summary info for startup logging.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("provider=%s", c.cfg.Provider)
	switch c.cfg.Provider {
	case ProviderDatabase:
		details += fmt.Sprintf(" dsn=%s table=%s compression=%s",
			c.cfg.Database.DSN, c.cfg.Database.Table, c.cfg.Database.Compression)
	case ProviderS3:
		details += fmt.Sprintf(" bucket=%s", c.cfg.GetBucket())
		if c.cfg.S3.Endpoint != "" {
			details += fmt.Sprintf(" endpoint=%s", c.cfg.S3.Endpoint)
		}
	}

	return component.Description{
		Name:    "Storage",
		Type:    "storage",
		Details: details,
	}
}
