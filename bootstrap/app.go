package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/artifactstore/component"
	"github.com/kbukum/artifactstore/config"
	"github.com/kbukum/artifactstore/database"
	"github.com/kbukum/artifactstore/logger"
	"github.com/kbukum/artifactstore/storage"
)

// App carries the configured infrastructure one command runs against.
type App struct {
	Name       string
	Version    string
	Cfg        *config.Config
	Components *component.Registry
	Logger     *logger.Logger
	Database   *database.Component
	Storage    *storage.Component
	Summary    *Summary

	gracefulTimeout time.Duration
	handleSignals   bool

	onStart []Hook
	onStop  []Hook
}

// NewApp validates cfg, initializes the logger and registers the telemetry
// and storage components. With the database provider and no session given,
// a database component is registered between them and owns the connection.
// Nothing is started until RunTask.
func NewApp(cfg *config.Config, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	o := resolveOptions(opts)

	app := &App{
		Name:            cfg.Name,
		Version:         cfg.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
		handleSignals:   o.handleSignals,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&cfg.Logging)
		app.Logger = logger.GetGlobalLogger()
	}
	app.Components = component.NewRegistry(app.Logger)
	app.Summary = NewSummary(app.Name, app.Version)

	// Telemetry registers first so it stops last and flushes storage metrics.
	telemetry := newTelemetryComponent(cfg, app.Logger)
	if err := app.RegisterComponent(telemetry); err != nil {
		return nil, err
	}

	session := o.session
	if session == nil && cfg.Storage.Provider == storage.ProviderDatabase {
		app.Database = database.NewComponent(database.Config{
			Driver: cfg.Storage.Database.Driver,
			DSN:    cfg.Storage.Database.DSN,
		}, app.Logger)
		if err := app.RegisterComponent(app.Database); err != nil {
			return nil, err
		}
		session = app.Database
	}

	app.Storage = storage.NewComponent(cfg.Storage, session, app.Logger.WithComponent("storage"), o.storageOpts...)
	if err := app.RegisterComponent(app.Storage); err != nil {
		return nil, err
	}
	return app, nil
}

// RegisterComponent adds a component to the registry and the summary.
func (a *App) RegisterComponent(c component.Component) error {
	if err := a.Components.Register(c); err != nil {
		return err
	}
	a.Summary.track(c.Name())
	return nil
}

// Store returns the started storage facade, or nil before RunTask.
func (a *App) Store() *storage.Store {
	return a.Storage.Store()
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App) ReadyCheck(ctx context.Context) error {
	results := a.Components.HealthAll(ctx)
	var unhealthy []string
	for _, h := range results {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// RunTask starts every component, runs task and shuts everything down again.
// The task's error wins over a shutdown error.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context, app *App) error) error {
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.handleSignals {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		go func() {
			select {
			case sig := <-sigCh:
				a.Logger.Info("Received signal, canceling task", map[string]interface{}{
					"signal": sig.String(),
				})
				cancel()
			case <-taskCtx.Done():
			}
		}()
	}

	if err := a.startup(taskCtx); err != nil {
		if stopErr := a.stop(); stopErr != nil {
			a.Logger.Warn("Cleanup after failed startup reported errors", logger.ErrorFields("stop", stopErr))
		}
		return err
	}

	taskErr := task(taskCtx, a)

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

func (a *App) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Debug("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", map[string]interface{}{
			"error": err.Error(),
		})
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.Summary.Log(a.Components, a.Logger)
	return nil
}

func (a *App) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error

	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", map[string]interface{}{
			"error": err.Error(),
		})
		shutdownErr = err
	}

	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", map[string]interface{}{
			"error": err.Error(),
		})
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Debug("Application shutdown complete")
	return shutdownErr
}
