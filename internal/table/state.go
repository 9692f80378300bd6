package table

import "strings"

// Direction of the active sort.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection accepts asc/desc in any case; anything else is ascending.
func ParseDirection(raw string) Direction {
	if strings.EqualFold(raw, string(Descending)) {
		return Descending
	}
	return Ascending
}

// Sort is at most one active (key, direction) pair. The zero value sorts
// nothing.
type Sort struct {
	Key       string    `json:"key,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Active reports whether a sort key is set.
func (s Sort) Active() bool {
	return s.Key != ""
}

// Toggle returns the sort after the user picks key: the active key flips
// direction, a new key starts ascending.
func (s Sort) Toggle(key string) Sort {
	if s.Key == key && s.Direction != Descending {
		return Sort{Key: key, Direction: Descending}
	}
	return Sort{Key: key, Direction: Ascending}
}

// Filters maps a column name to its filter value. Empty values are inactive.
type Filters map[string]string

// Clone copies the filters.
func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Active returns only the filters with a non-empty value.
func (f Filters) Active() Filters {
	out := Filters{}
	for k, v := range f {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Equal compares active filters.
func (f Filters) Equal(other Filters) bool {
	a, b := f.Active(), other.Active()
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
