package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/artifactstore/logger"
)

// BackendFactory creates a Backend from config. session is an optional,
// caller-owned connection whose concrete type each provider documents
// (for example *database.DB or an s3.ObjectAPI); nil asks the provider to
// open its own from cfg.
type BackendFactory func(cfg Config, session any, log *logger.Logger) (Backend, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]BackendFactory)
)

// RegisterFactory registers a backend factory for the given provider name.
// Backend packages call this from init, so importing them (e.g.
// _ "github.com/kbukum/artifactstore/storage/database") makes the provider
// available to New.
func RegisterFactory(name string, f BackendFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewBackend builds the backend named by cfg.Provider.
func NewBackend(cfg Config, session any, log *logger.Logger) (Backend, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factoriesMu.RLock()
	f, ok := factories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported provider %q (not registered)", cfg.Provider)
	}
	return f(cfg, session, log)
}
