// Package catalog holds the fixed set of canned queries the tool can run.
// Entries are baked in at startup, looked up by id, and never mutated.
package catalog

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Kind is the declared type of a query parameter.
type Kind int

const (
	KindInteger Kind = iota
	KindFloat
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// AnalysisKind selects the chart drawn for an entry's result, if any.
// Each kind fixes both the chart type and the result columns it reads.
type AnalysisKind int

const (
	AnalysisNone AnalysisKind = iota
	AnalysisNeighbourhoodPrice
	AnalysisNeighbourhoodListings
	AnalysisRoomTypeReviews
	AnalysisRoomTypeShare
	AnalysisPriceVsPopularity
	AnalysisAvailabilityVsPrice
)

func (a AnalysisKind) String() string {
	switch a {
	case AnalysisNone:
		return "none"
	case AnalysisNeighbourhoodPrice:
		return "neighbourhood-price"
	case AnalysisNeighbourhoodListings:
		return "neighbourhood-listings"
	case AnalysisRoomTypeReviews:
		return "room-type-reviews"
	case AnalysisRoomTypeShare:
		return "room-type-share"
	case AnalysisPriceVsPopularity:
		return "price-vs-popularity"
	case AnalysisAvailabilityVsPrice:
		return "availability-vs-price"
	default:
		return fmt.Sprintf("analysis(%d)", int(a))
	}
}

// Param describes one user-supplied query parameter.
type Param struct {
	Name   string
	Prompt string
	Kind   Kind
}

// Template slots filled in by the clause builder. Both are plain text
// markers; entries without them run their SQL verbatim.
const (
	WhereSlot   = "{where_clause}"
	OrderBySlot = "{order_by_clause}"
)

// Entry is one canned query: a SQL template with named :binds, the
// parameters that feed them, and optional sorting and charting hooks.
//
// Filterable entries treat every parameter as optional: values the user
// leaves empty are dropped, and the rest become WHERE conditions through
// the min_/max_ prefix convention. Non-filterable entries require every
// parameter and bind them directly into the template.
type Entry struct {
	ID          int
	Description string
	SQL         string
	Params      []Param
	Sortable    []string
	Filterable  bool
	Analysis    AnalysisKind
}

// HasWhereSlot reports whether the template carries a {where_clause} slot.
func (e Entry) HasWhereSlot() bool { return strings.Contains(e.SQL, WhereSlot) }

// HasOrderBySlot reports whether the template carries an {order_by_clause} slot.
func (e Entry) HasOrderBySlot() bool { return strings.Contains(e.SQL, OrderBySlot) }

// Param returns the named parameter spec, if declared.
func (e Entry) Param(name string) (Param, bool) {
	for _, p := range e.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// SortableColumn reports whether col may be used as a sort key for this entry.
func (e Entry) SortableColumn(col string) bool {
	for _, s := range e.Sortable {
		if s == col {
			return true
		}
	}
	return false
}

// NotFoundError is returned by Lookup for an unknown entry id.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no catalog entry with id %d", e.ID)
}

// Lookup returns the entry with the given id.
func Lookup(id int) (Entry, error) {
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, &NotFoundError{ID: id}
}

// All returns every entry in ascending id order.
func All() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var identRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// reservedTokens are SQL keywords parameter names must not collide with,
// since stripped parameter names become column identifiers in built clauses.
var reservedTokens = map[string]bool{
	"select": true, "from": true, "where": true, "and": true, "or": true,
	"not": true, "order": true, "by": true, "group": true, "having": true,
	"limit": true, "offset": true, "join": true, "on": true, "as": true,
	"asc": true, "desc": true, "null": true, "between": true, "like": true,
}

// Validate checks the whole catalog for internal consistency: unique ids,
// well-formed parameter names, and bind placeholders matching declared
// parameters. Filterable entries may declare parameters that never appear
// in the template text, since those surface through the WHERE slot instead.
func Validate() error {
	seen := make(map[int]bool, len(entries))
	for _, e := range entries {
		if e.ID <= 0 {
			return fmt.Errorf("entry %q: id must be positive", e.Description)
		}
		if seen[e.ID] {
			return fmt.Errorf("duplicate catalog id %d", e.ID)
		}
		seen[e.ID] = true
		if err := validateEntry(e); err != nil {
			return fmt.Errorf("entry %d: %w", e.ID, err)
		}
	}
	return nil
}

func validateEntry(e Entry) error {
	if strings.TrimSpace(e.Description) == "" {
		return fmt.Errorf("empty description")
	}
	if strings.TrimSpace(e.SQL) == "" {
		return fmt.Errorf("empty sql template")
	}

	names := make(map[string]bool, len(e.Params))
	for _, p := range e.Params {
		if !identRe.MatchString(p.Name) {
			return fmt.Errorf("parameter %q: name is not a valid identifier", p.Name)
		}
		if reservedTokens[p.Name] {
			return fmt.Errorf("parameter %q: name collides with a SQL keyword", p.Name)
		}
		if names[p.Name] {
			return fmt.Errorf("parameter %q declared twice", p.Name)
		}
		if strings.TrimSpace(p.Prompt) == "" {
			return fmt.Errorf("parameter %q: empty prompt", p.Name)
		}
		names[p.Name] = true
	}

	placeholders := BindNames(e.SQL)
	for _, ph := range placeholders {
		if !names[ph] {
			return fmt.Errorf("bind :%s used in template but not declared", ph)
		}
	}
	if !e.Filterable {
		used := make(map[string]bool, len(placeholders))
		for _, ph := range placeholders {
			used[ph] = true
		}
		for _, p := range e.Params {
			if !used[p.Name] {
				return fmt.Errorf("parameter %q declared but never bound", p.Name)
			}
		}
	}

	if e.Filterable && !e.HasWhereSlot() {
		return fmt.Errorf("filterable entry without a %s slot", WhereSlot)
	}
	if len(e.Sortable) > 0 && !e.HasOrderBySlot() {
		return fmt.Errorf("sortable columns declared but template has no %s slot", OrderBySlot)
	}
	if e.HasOrderBySlot() && len(e.Sortable) == 0 {
		return fmt.Errorf("%s slot present but no sortable columns declared", OrderBySlot)
	}
	for _, col := range e.Sortable {
		if !identRe.MatchString(col) {
			return fmt.Errorf("sortable column %q is not a valid identifier", col)
		}
	}
	return nil
}

// BindNames extracts the named :bind placeholders from a SQL template in
// first-appearance order, ignoring matches inside single-quoted strings.
func BindNames(sqlText string) []string {
	var (
		names    []string
		seen     = make(map[string]bool)
		inString bool
	)
	runes := []rune(sqlText)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c == '\'' {
			inString = !inString
			continue
		}
		if inString || c != ':' {
			continue
		}
		// Skip :: casts and any token not starting an identifier.
		if i+1 < len(runes) && runes[i+1] == ':' {
			i++
			continue
		}
		if i > 0 && runes[i-1] == ':' {
			continue
		}
		j := i + 1
		for j < len(runes) && (isIdentRune(runes[j])) {
			j++
		}
		if j == i+1 {
			continue
		}
		name := string(runes[i+1 : j])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		i = j - 1
	}
	return names
}

func isIdentRune(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
