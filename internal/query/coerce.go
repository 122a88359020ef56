package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/airlens/airlens/internal/catalog"
)

// Field pairs a parameter spec with the raw text a user typed for it.
type Field struct {
	Param catalog.Param
	Raw   string
}

// Fields returns the ordered input fields for an entry, one per declared
// parameter, with empty raw values.
func Fields(e catalog.Entry) []Field {
	out := make([]Field, len(e.Params))
	for i, p := range e.Params {
		out[i] = Field{Param: p}
	}
	return out
}

// Coerce validates raw inputs against the entry's parameter specs and
// converts them to typed bindings, in declared order.
//
// For regular entries every parameter is mandatory and an empty value is a
// ValidationError. For filterable entries an empty value means the filter is
// simply not applied, so the parameter is omitted from the result entirely.
func Coerce(e catalog.Entry, raw map[string]string) (Bindings, error) {
	var binds Bindings
	for _, p := range e.Params {
		value := strings.TrimSpace(raw[p.Name])
		if value == "" {
			if e.Filterable {
				continue
			}
			return nil, &ValidationError{Field: p.Name, Reason: "a value is required"}
		}

		typed, err := coerceValue(p.Kind, value)
		if err != nil {
			return nil, &ValidationError{Field: p.Name, Reason: err.Error()}
		}
		binds = append(binds, Binding{Name: p.Name, Value: typed})
	}
	return binds, nil
}

func coerceValue(kind catalog.Kind, value string) (any, error) {
	switch kind {
	case catalog.KindInteger:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid integer", value)
		}
		return n, nil
	case catalog.KindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid number", value)
		}
		return f, nil
	case catalog.KindText:
		return value, nil
	default:
		return nil, fmt.Errorf("unsupported parameter kind %s", kind)
	}
}
