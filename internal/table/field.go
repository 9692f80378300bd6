package table

import (
	"cmp"
	"strconv"
	"strings"
	"time"
)

// Kind is the closed set of column behaviours. Each kind fixes how a column
// is matched by a filter and how two records compare when sorting on it.
type Kind int

const (
	// KindText matches by case-insensitive substring and sorts lower-cased.
	KindText Kind = iota
	// KindEnum matches by case-insensitive equality and sorts lower-cased.
	KindEnum
	// KindNumber matches by substring on the decimal form and sorts numerically.
	KindNumber
	// KindInstant matches by substring on the display text and sorts by the parsed time.
	KindInstant
	// KindSpan matches by substring on the display text and sorts by a derived duration.
	KindSpan
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindEnum:
		return "enum"
	case KindNumber:
		return "number"
	case KindInstant:
		return "instant"
	case KindSpan:
		return "span"
	default:
		return "unknown"
	}
}

// Field describes one column of a record type. Build fields with Text, Enum,
// Number, Instant or Span.
type Field[T any] struct {
	Name string
	Kind Kind

	display func(T) string
	number  func(T) float64
	instant func(T) (time.Time, bool)
	span    func(T) (time.Duration, bool)
}

// Text declares a free-text column.
func Text[T any](name string, value func(T) string) Field[T] {
	return Field[T]{Name: name, Kind: KindText, display: value}
}

// Enum declares a column holding one of a few tokens (role, status). An
// unset value must be returned as "".
func Enum[T any](name string, value func(T) string) Field[T] {
	return Field[T]{Name: name, Kind: KindEnum, display: value}
}

// Number declares a numeric column such as an id or an hour count.
func Number[T any](name string, value func(T) float64) Field[T] {
	return Field[T]{
		Name:    name,
		Kind:    KindNumber,
		number:  value,
		display: func(rec T) string { return FormatNumber(value(rec)) },
	}
}

// Instant declares a time column. display is what the filter sees, at is the
// parsed instant used for ordering; ok=false marks the value missing.
func Instant[T any](name string, display func(T) string, at func(T) (time.Time, bool)) Field[T] {
	return Field[T]{Name: name, Kind: KindInstant, display: display, instant: at}
}

// Span declares a derived interval column such as worked duration.
func Span[T any](name string, display func(T) string, length func(T) (time.Duration, bool)) Field[T] {
	return Field[T]{Name: name, Kind: KindSpan, display: display, span: length}
}

// Display returns the text a filter is matched against.
func (f Field[T]) Display(rec T) string {
	if f.display == nil {
		return ""
	}
	return f.display(rec)
}

// Matches reports whether rec passes the filter value for this column. An
// empty filter matches everything, including unset values.
func (f Field[T]) Matches(rec T, filter string) bool {
	if filter == "" {
		return true
	}
	needle := strings.ToLower(filter)
	haystack := strings.ToLower(f.Display(rec))
	if f.Kind == KindEnum {
		return haystack == needle
	}
	return strings.Contains(haystack, needle)
}

// key is the comparison value of one record for one column.
type key struct {
	text    string
	number  float64
	at      time.Time
	span    time.Duration
	missing bool
}

func (f Field[T]) key(rec T) key {
	switch f.Kind {
	case KindNumber:
		return key{number: f.number(rec)}
	case KindInstant:
		at, ok := f.instant(rec)
		return key{at: at, missing: !ok}
	case KindSpan:
		span, ok := f.span(rec)
		return key{span: span, missing: !ok}
	default:
		return key{text: strings.ToLower(f.Display(rec))}
	}
}

// compare orders two present keys ascending.
func (f Field[T]) compare(a, b key) int {
	switch f.Kind {
	case KindNumber:
		return cmp.Compare(a.number, b.number)
	case KindInstant:
		return a.at.Compare(b.at)
	case KindSpan:
		return cmp.Compare(a.span, b.span)
	default:
		return strings.Compare(a.text, b.text)
	}
}

// FormatNumber renders a number the shortest way, "8" rather than "8.000000".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
