package table

import (
	"fmt"
	"slices"

	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

// DefaultPageSizes mirrors the page size selector of the dashboard tables.
var DefaultPageSizes = []int{5, 10, 20, 50}

// State is the caller-owned presentation state of a table.
type State struct {
	Filters Filters `json:"filters"`
	Sort    Sort    `json:"sort"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
}

// View holds one table's records and presentation state. Changing filters,
// sort or page size moves back to page 1 so the view never points past the
// last page. A View has a single owner and is not safe for concurrent use.
type View[T any] struct {
	schema    Schema[T]
	records   []T
	pageSizes []int
	state     State
}

// NewView starts a view with no filter, no sort and page 1. perPage must be
// one of pageSizes; otherwise the first size is used.
func NewView[T any](schema Schema[T], pageSizes []int, perPage int) *View[T] {
	if len(pageSizes) == 0 {
		pageSizes = DefaultPageSizes
	}
	if !slices.Contains(pageSizes, perPage) {
		perPage = pageSizes[0]
	}
	return &View[T]{
		schema:    schema,
		pageSizes: slices.Clone(pageSizes),
		state:     State{Filters: Filters{}, Page: 1, PerPage: perPage},
	}
}

// Schema returns the view's columns.
func (v *View[T]) Schema() Schema[T] {
	return v.schema
}

// PageSizes returns the admissible page sizes.
func (v *View[T]) PageSizes() []int {
	return slices.Clone(v.pageSizes)
}

// SetRecords replaces the whole batch.
func (v *View[T]) SetRecords(records []T) {
	v.records = slices.Clone(records)
}

// Records returns the raw batch.
func (v *View[T]) Records() []T {
	return slices.Clone(v.records)
}

// UpdateRecord replaces the first record for which match returns true.
func (v *View[T]) UpdateRecord(match func(T) bool, rec T) bool {
	for i := range v.records {
		if match(v.records[i]) {
			v.records[i] = rec
			return true
		}
	}
	return false
}

// SetFilter changes one column filter.
func (v *View[T]) SetFilter(name, value string) {
	if v.state.Filters[name] == value {
		return
	}
	next := v.state.Filters.Clone()
	next[name] = value
	v.state.Filters = next
	v.state.Page = 1
}

// SetFilters replaces every filter.
func (v *View[T]) SetFilters(filters Filters) {
	if v.state.Filters.Equal(filters) {
		return
	}
	v.state.Filters = filters.Clone()
	v.state.Page = 1
}

// ToggleSort applies a header click on key.
func (v *View[T]) ToggleSort(key string) {
	v.state.Sort = v.state.Sort.Toggle(key)
	v.state.Page = 1
}

// SetSort replaces the sort.
func (v *View[T]) SetSort(sort Sort) {
	if sort.Active() && sort.Direction == "" {
		sort.Direction = Ascending
	}
	if v.state.Sort == sort {
		return
	}
	v.state.Sort = sort
	v.state.Page = 1
}

// SetPerPage changes the page size.
func (v *View[T]) SetPerPage(perPage int) error {
	if !slices.Contains(v.pageSizes, perPage) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("page size must be one of %v", v.pageSizes))
	}
	if v.state.PerPage == perPage {
		return nil
	}
	v.state.PerPage = perPage
	v.state.Page = 1
	return nil
}

// SetPage moves to page. It is not clamped.
func (v *View[T]) SetPage(page int) {
	v.state.Page = page
}

// ResetPage moves back to page 1, for callers whose own parameters (such as a
// selected month) change what the table shows.
func (v *View[T]) ResetPage() {
	v.state.Page = 1
}

// State returns a copy of the presentation state.
func (v *View[T]) State() State {
	s := v.state
	s.Filters = v.state.Filters.Clone()
	return s
}

// Apply sets page size, filters, sort and then page, so a request that
// changes parameters and names a page keeps the named page. A page size the
// view does not offer is reported, but the filters and sort still apply.
func (v *View[T]) Apply(state State) error {
	if err := v.schema.Validate(state.Filters, state.Sort); err != nil {
		return err
	}
	var sizeErr error
	if state.PerPage != 0 {
		sizeErr = v.SetPerPage(state.PerPage)
	}
	v.SetFilters(state.Filters)
	v.SetSort(state.Sort)
	// a page counted in another page size means nothing here
	if state.Page != 0 && sizeErr == nil {
		v.SetPage(state.Page)
	}
	return sizeErr
}

// Current derives the visible page.
func (v *View[T]) Current() Page[T] {
	return Derive(v.records, v.schema, v.state.Filters, v.state.Sort, v.state.Page, v.state.PerPage)
}

// MaxPage bounds page numbers accepted from callers.
const MaxPage = 1_000_000

// Change is a partial update of a view's state. Nil or zero fields are left
// alone.
type Change struct {
	Filters *Filters
	Sort    *Sort
	PerPage int
	Page    int
}

// Update applies change. A requested page only sticks when the filters, sort
// and page size came through unchanged; otherwise the view is on page 1.
func (v *View[T]) Update(change Change) error {
	var filters Filters
	if change.Filters != nil {
		filters = *change.Filters
	}
	var sort Sort
	if change.Sort != nil {
		sort = *change.Sort
	}
	if err := v.schema.Validate(filters, sort); err != nil {
		return err
	}

	before := v.State()
	if change.PerPage != 0 {
		if err := v.SetPerPage(change.PerPage); err != nil {
			return err
		}
	}
	if change.Filters != nil {
		v.SetFilters(filters)
	}
	if change.Sort != nil {
		v.SetSort(sort)
	}

	after := v.state
	unchanged := after.PerPage == before.PerPage &&
		after.Sort == before.Sort &&
		after.Filters.Equal(before.Filters)
	if change.Page != 0 && unchanged {
		v.SetPage(change.Page)
	}
	return nil
}
