package table

import "slices"

// ApplyFilters keeps the records that pass every active filter. Filters on
// columns the schema does not know are ignored.
func ApplyFilters[T any](records []T, schema Schema[T], filters Filters) []T {
	type check struct {
		field Field[T]
		value string
	}
	checks := make([]check, 0, len(filters))
	for name, value := range filters {
		if value == "" {
			continue
		}
		field, ok := schema.Field(name)
		if !ok {
			continue
		}
		checks = append(checks, check{field: field, value: value})
	}

	out := make([]T, 0, len(records))
	for _, rec := range records {
		keep := true
		for _, c := range checks {
			if !c.field.Matches(rec, c.value) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, rec)
		}
	}
	return out
}

// ApplySort returns a stably sorted copy. An inactive or unknown key keeps
// the input order. Records whose comparison value is missing (a time that does
// not parse, an open shift with no checkout) sort after all others in either
// direction.
func ApplySort[T any](records []T, schema Schema[T], sort Sort) []T {
	out := slices.Clone(records)
	if !sort.Active() {
		return out
	}
	field, ok := schema.Field(sort.Key)
	if !ok {
		return out
	}

	type decorated struct {
		rec T
		key key
	}
	rows := make([]decorated, len(out))
	for i, rec := range out {
		rows[i] = decorated{rec: rec, key: field.key(rec)}
	}

	desc := sort.Direction == Descending
	slices.SortStableFunc(rows, func(a, b decorated) int {
		switch {
		case a.key.missing && b.key.missing:
			return 0
		case a.key.missing:
			return 1
		case b.key.missing:
			return -1
		}
		c := field.compare(a.key, b.key)
		if desc {
			return -c
		}
		return c
	})

	for i := range rows {
		out[i] = rows[i].rec
	}
	return out
}

// Page is one visible slice of an ordered record set.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// Paginate cuts page (1-based) out of records. A page past the end yields an
// empty slice rather than being clamped; the caller resets to page 1.
func Paginate[T any](records []T, page, perPage int) Page[T] {
	result := Page[T]{Items: []T{}, Page: page, PerPage: perPage, TotalItems: len(records)}
	if perPage <= 0 {
		return result
	}
	result.TotalPages = (len(records) + perPage - 1) / perPage

	// bounds are checked before multiplying so a huge page cannot overflow
	if page < 1 || page-1 >= result.TotalPages {
		return result
	}
	start := (page - 1) * perPage
	end := min(start+perPage, len(records))
	result.Items = slices.Clone(records[start:end])
	return result
}

// Derive runs filter, sort and paginate in order.
func Derive[T any](records []T, schema Schema[T], filters Filters, sort Sort, page, perPage int) Page[T] {
	return Paginate(ApplySort(ApplyFilters(records, schema, filters), schema, sort), page, perPage)
}
