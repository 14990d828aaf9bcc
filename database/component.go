package database

import (
	"context"
	"fmt"

	"github.com/kbukum/artifactstore/component"
	"github.com/kbukum/artifactstore/logger"
)

// Component owns a DB connection for the lifetime of an application.
// Other components receive the connection through Session once it started.
type Component struct {
	db  *DB
	cfg Config
	log *logger.Logger
}

// NewComponent creates a database component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg: cfg,
		log: log,
	}
}

// DB returns the underlying *DB, or nil if not started.
func (c *Component) DB() *DB {
	return c.db
}

// Session returns the started *DB as an untyped session, or nil before
// Start so callers never see a typed nil.
func (c *Component) Session() any {
	if c.db == nil {
		return nil
	}
	return c.db
}

// ensure Component satisfies component.Component
var _ component.Component = (*Component)(nil)

// Name returns the component name.
func (c *Component) Name() string { return "database" }

// Start connects to the database.
func (c *Component) Start(ctx context.Context) error {
	db, err := Open(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}
	c.db = db
	return nil
}

// Stop closes the connection.
func (c *Component) Stop(_ context.Context) error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// Health pings the database.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.db == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "database not initialized",
		}
	}

	if err := c.db.PingContext(ctx); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}

	return component.Health{
		Name:   c.Name(),
		Status: component.StatusHealthy,
	}
}

// Describe returns infrastructure summary info for startup logging.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Database",
		Type:    "database",
		Details: fmt.Sprintf("driver=%s pool=%d/%d retries=%d", c.cfg.Driver, c.cfg.MaxOpenConns, c.cfg.MaxIdleConns, c.cfg.MaxRetries),
	}
}
