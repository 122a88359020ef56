package adapter

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Factory constructs an adapter. A nil logger means discard.
type Factory func(logger *slog.Logger) Adapter

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds an adapter factory under a driver name. Called by adapter
// implementations in their init functions.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = factory
}

// Get returns the factory registered under name.
func Get(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[strings.ToLower(name)]
	return f, ok
}

// IsRegistered reports whether a driver name has a registered adapter.
func IsRegistered(name string) bool {
	_, ok := Get(name)
	return ok
}

// ListAdapters returns all registered driver names, sorted.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownAdapterError is returned when a config names a driver no adapter
// handles.
type UnknownAdapterError struct {
	Driver    string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown database driver %q (available: %s); set driver in airlens.yaml or pass --driver",
		e.Driver, strings.Join(e.Available, ", "))
}

// NewAdapter constructs the adapter for cfg.Driver without connecting it.
func NewAdapter(cfg Config, logger *slog.Logger) (Adapter, error) {
	if cfg.Driver == "" {
		return nil, fmt.Errorf("database driver not specified")
	}
	factory, ok := Get(cfg.Driver)
	if !ok {
		return nil, &UnknownAdapterError{Driver: cfg.Driver, Available: ListAdapters()}
	}
	return factory(logger), nil
}
