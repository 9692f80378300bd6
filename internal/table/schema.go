package table

import (
	"fmt"

	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

// Schema is the ordered column set of one table.
type Schema[T any] struct {
	fields  []Field[T]
	index   map[string]int
	aliases map[string]string
}

// NewSchema builds a schema from its columns. Duplicate names panic since
// schemas are static declarations.
func NewSchema[T any](fields ...Field[T]) Schema[T] {
	s := Schema[T]{fields: fields, index: make(map[string]int, len(fields)), aliases: map[string]string{}}
	for i, f := range fields {
		if _, dup := s.index[f.Name]; dup {
			panic(fmt.Sprintf("table: duplicate field %q", f.Name))
		}
		s.index[f.Name] = i
	}
	return s
}

// WithAlias lets a column be addressed under a second name.
func (s Schema[T]) WithAlias(alias, name string) Schema[T] {
	aliases := make(map[string]string, len(s.aliases)+1)
	for k, v := range s.aliases {
		aliases[k] = v
	}
	aliases[alias] = name
	s.aliases = aliases
	return s
}

// Field looks up a column by name or alias.
func (s Schema[T]) Field(name string) (Field[T], bool) {
	if target, ok := s.aliases[name]; ok {
		name = target
	}
	i, ok := s.index[name]
	if !ok {
		return Field[T]{}, false
	}
	return s.fields[i], true
}

// Fields returns the columns in declaration order.
func (s Schema[T]) Fields() []Field[T] {
	out := make([]Field[T], len(s.fields))
	copy(out, s.fields)
	return out
}

// Names returns the column names in declaration order.
func (s Schema[T]) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Validate rejects filter or sort keys the table does not have. The engine
// itself tolerates them; callers use this at input boundaries.
func (s Schema[T]) Validate(filters Filters, sort Sort) error {
	for name := range filters {
		if _, ok := s.Field(name); !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown filter field %q", name))
		}
	}
	if sort.Active() {
		if _, ok := s.Field(sort.Key); !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown sort key %q", sort.Key))
		}
	}
	return nil
}
