package backend

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func(Config, *slog.Logger) (Backend, error))
)

// Register adds a backend factory to the registry. Called by backend
// implementations in their init() functions.
func Register(name string, factory func(Config, *slog.Logger) (Backend, error)) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New creates a backend instance from config. The logger is passed to the
// factory (nil uses a discard logger).
func New(cfg Config, logger *slog.Logger) (Backend, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("backend name not specified")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	registryMu.RLock()
	factory, ok := registry[cfg.Name]
	registryMu.RUnlock()
	if !ok {
		return nil, &UnknownBackendError{Name: cfg.Name, Available: List()}
	}
	return factory(cfg, logger)
}

// List returns all registered backend names (sorted).
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// UnknownBackendError is returned when an unregistered backend is requested.
type UnknownBackendError struct {
	Name      string
	Available []string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown backend %q\nAvailable backends: %v\nHint: check backend.name in qbridge.yaml", e.Name, e.Available)
}
