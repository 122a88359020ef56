// Package dialect adapts catalog SQL to a concrete database: it expands the
// neutral money(expr) formatting call into driver-specific SQL and rewrites
// named :binds to the driver's placeholder style. Clause building never
// changes per driver; only these surface details do.
package dialect

import (
	"sort"
	"strings"
	"sync"
)

// Dialect describes one driver's SQL surface.
type Dialect struct {
	// Name matches the adapter driver name ("postgres", "duckdb", "sqlite").
	Name string

	// Positional is true when binds become numbered $N placeholders that
	// repeated names can share. False means ? placeholders, with the bound
	// value repeated per occurrence.
	Positional bool

	// Money wraps a numeric SQL expression in the driver's currency
	// formatting, with digit grouping where the driver supports it.
	Money func(expr string) string
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Dialect)
)

// Register adds a dialect to the registry. Called from init functions.
func Register(d *Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(d.Name)] = d
}

// Get returns the dialect registered under name.
func Get(name string) (*Dialect, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[strings.ToLower(name)]
	return d, ok
}

// List returns all registered dialect names, sorted.
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
