// Package query turns a catalog entry plus raw user input into a final
// statement: it validates and coerces parameter values, builds the WHERE and
// ORDER BY fragments from the min_/max_ naming convention, and keeps every
// user value as a named bind rather than interpolated text.
package query

import "fmt"

// Binding is one named, typed value destined for a bind placeholder.
type Binding struct {
	Name  string
	Value any
}

// Bindings is an ordered set of bindings. Order follows the entry's declared
// parameter order, which keeps clause assembly and bind rewriting stable.
type Bindings []Binding

// Get returns the value bound under name.
func (b Bindings) Get(name string) (any, bool) {
	for _, bind := range b {
		if bind.Name == name {
			return bind.Value, true
		}
	}
	return nil, false
}

// Names returns the bound names in order.
func (b Bindings) Names() []string {
	out := make([]string, len(b))
	for i, bind := range b {
		out[i] = bind.Name
	}
	return out
}

// Statement is an assembled query: template text with named :binds and the
// values that feed them.
type Statement struct {
	Text  string
	Binds Bindings
}

// Direction selects the sort order for a chosen sort column.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// ValidationError reports a rejected user input. Field always names the
// offending parameter so the interface can point at it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("parameter %q: %s", e.Field, e.Reason)
}
