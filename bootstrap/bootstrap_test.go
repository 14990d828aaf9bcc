package bootstrap

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/kbukum/artifactstore/component"
	"github.com/kbukum/artifactstore/config"
	"github.com/kbukum/artifactstore/logger"
	"github.com/kbukum/artifactstore/storage"
	sqlbackend "github.com/kbukum/artifactstore/storage/database"
	"github.com/kbukum/artifactstore/storage/memory"
)

// mockComponent implements component.Component for testing.
type mockComponent struct {
	name     string
	startErr error
	health   component.Health
	started  bool
	stopped  bool
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	m.started = true
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	m.stopped = true
	return nil
}
func (m *mockComponent) Health(ctx context.Context) component.Health {
	return m.health
}

func newTestConfig() *config.Config {
	return &config.Config{
		ServiceConfig: config.ServiceConfig{
			Name:        "artifactstore-test",
			Version:     "1.0.0",
			Environment: "development",
		},
		Storage: storage.Config{Provider: storage.ProviderMemory},
	}
}

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	opts = append([]Option{WithLogger(logger.Nop())}, opts...)
	app, err := NewApp(newTestConfig(), opts...)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)

	if app.Name != "artifactstore-test" {
		t.Errorf("expected name 'artifactstore-test', got %q", app.Name)
	}
	if app.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %q", app.Version)
	}
	if app.Storage == nil {
		t.Fatal("expected storage component")
	}
	if app.Store() != nil {
		t.Error("store should be nil before RunTask")
	}

	names := app.Summary.Components()
	if len(names) != 2 || names[0] != "telemetry" || names[1] != "storage" {
		t.Errorf("registration order = %v, want [telemetry storage]", names)
	}
}

func TestNewAppValidation(t *testing.T) {
	cfg := newTestConfig()
	cfg.Environment = "moon"
	if _, err := NewApp(cfg, WithLogger(logger.Nop())); err == nil {
		t.Fatal("expected validation error for unknown environment")
	}
}

func TestRegisterComponentDuplicate(t *testing.T) {
	app := newTestApp(t)
	if err := app.RegisterComponent(&mockComponent{name: "storage"}); err == nil {
		t.Error("expected error registering a second storage component")
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app := newTestApp(t, WithGracefulTimeout(3*time.Second))
	if app.gracefulTimeout != 3*time.Second {
		t.Errorf("gracefulTimeout = %v, want 3s", app.gracefulTimeout)
	}

	def := newTestApp(t)
	if def.gracefulTimeout != 15*time.Second {
		t.Errorf("default gracefulTimeout = %v, want 15s", def.gracefulTimeout)
	}
}

func TestRunTaskIngests(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/site/index.html", []byte("<!DOCTYPE html><html><body>hi</body></html>"), 0o644)
	_ = afero.WriteFile(fs, "/site/css/main.css", []byte("body { margin: 0 }"), 0o644)

	backend := memory.New()
	app := newTestApp(t, WithSession(backend), WithStorageOptions(storage.WithFs(fs)))

	var count int
	err := app.RunTask(context.Background(), func(ctx context.Context, a *App) error {
		if a.Store() == nil {
			t.Fatal("store should be started inside the task")
		}
		m, err := a.Store().StoreAll(ctx, "/site", "docs")
		count = len(m)
		return err
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}
	if count != 2 {
		t.Errorf("manifest has %d entries, want 2", count)
	}
	if backend.Len() != 2 {
		t.Errorf("backend holds %d blobs, want 2", backend.Len())
	}
	if app.Store() != nil {
		t.Error("store should be released after RunTask")
	}
}

func TestRunTaskError(t *testing.T) {
	app := newTestApp(t)
	want := errors.New("task failed")
	err := app.RunTask(context.Background(), func(context.Context, *App) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("RunTask error = %v, want %v", err, want)
	}
}

func TestRunTaskStartFailure(t *testing.T) {
	app := newTestApp(t, WithSession("not a backend"))

	ran := false
	err := app.RunTask(context.Background(), func(context.Context, *App) error {
		ran = true
		return nil
	})
	if err == nil {
		t.Fatal("expected startup error for invalid session")
	}
	if ran {
		t.Error("task should not run when startup fails")
	}
}

func TestRunTaskHooks(t *testing.T) {
	app := newTestApp(t)

	var order []string
	app.OnStart(func(context.Context) error {
		order = append(order, "start")
		return nil
	})
	app.OnStop(func(context.Context) error {
		order = append(order, "stop")
		return nil
	})

	err := app.RunTask(context.Background(), func(context.Context, *App) error {
		order = append(order, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}
	want := []string{"start", "task", "stop"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestRunTaskStartHookError(t *testing.T) {
	app := newTestApp(t)
	app.OnStart(func(context.Context) error { return errors.New("boom") })

	err := app.RunTask(context.Background(), func(context.Context, *App) error {
		t.Error("task should not run")
		return nil
	})
	if err == nil {
		t.Fatal("expected onStart hook error")
	}
}

func TestRunTaskStopHookError(t *testing.T) {
	app := newTestApp(t)
	app.OnStop(func(context.Context) error { return errors.New("stop failed") })

	err := app.RunTask(context.Background(), func(context.Context, *App) error { return nil })
	if err == nil {
		t.Fatal("expected stop hook error to surface when the task succeeds")
	}
}

func TestRunTaskStopsRegisteredComponents(t *testing.T) {
	app := newTestApp(t)
	mc := &mockComponent{name: "extra", health: component.Health{Name: "extra", Status: component.StatusHealthy}}
	if err := app.RegisterComponent(mc); err != nil {
		t.Fatal(err)
	}

	if err := app.RunTask(context.Background(), func(context.Context, *App) error { return nil }); err != nil {
		t.Fatalf("RunTask: %v", err)
	}
	if !mc.started || !mc.stopped {
		t.Errorf("started=%v stopped=%v, want both true", mc.started, mc.stopped)
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{
		name:   "flaky",
		health: component.Health{Name: "flaky", Status: component.StatusDegraded, Message: "slow"},
	})

	err := app.RunTask(context.Background(), func(ctx context.Context, a *App) error {
		if err := a.ReadyCheck(ctx); err == nil {
			t.Error("expected ready check to report the degraded component")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}
}

func TestRunTaskDatabaseOwnsSession(t *testing.T) {
	cfg := newTestConfig()
	cfg.Storage = storage.Config{
		Provider: storage.ProviderDatabase,
		Database: storage.DatabaseConfig{DSN: filepath.Join(t.TempDir(), "artifacts.db")},
	}
	app, err := NewApp(cfg, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if app.Database == nil {
		t.Fatal("database component not registered")
	}

	err = app.RunTask(context.Background(), func(ctx context.Context, a *App) error {
		backend, ok := a.Store().Backend().(*sqlbackend.Backend)
		if !ok {
			t.Fatalf("backend = %T, want *database.Backend", a.Store().Backend())
		}
		if backend.DB() != a.Database.DB() {
			t.Error("storage did not use the database component's connection")
		}
		if err := a.Store().Put(ctx, storage.NewBlob("docs/a.html", []byte("<html>"), "text/html")); err != nil {
			return err
		}
		return a.ReadyCheck(ctx)
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}
	if app.Database.DB() != nil {
		t.Error("database connection still held after shutdown")
	}
}

func TestNewAppMemoryHasNoDatabaseComponent(t *testing.T) {
	app := newTestApp(t)
	if app.Database != nil {
		t.Error("database component registered for the memory provider")
	}
}
