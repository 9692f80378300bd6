package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	"github.com/noah-isme/attendance-dashboard/internal/table"
)

// StateStore keeps small per-session values. session.Storage satisfies it.
type StateStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Table names used as state keys.
const (
	TableUsers   = "users"
	TableHistory = "history"
	TableRekap   = "rekap"
)

func viewStateKey(name string) string {
	return "view:" + name
}

// viewState is what is remembered about a table between requests.
type viewState struct {
	Table table.State `json:"table"`
	Month string      `json:"month,omitempty"`
}

func loadViewState(ctx context.Context, store StateStore, name string, logger *zap.Logger) (viewState, bool) {
	if store == nil {
		return viewState{}, false
	}
	raw, ok, err := store.Get(ctx, viewStateKey(name))
	if err != nil {
		logger.Warn("failed to load table state", zap.String("table", name), zap.Error(err))
		return viewState{}, false
	}
	if !ok {
		return viewState{}, false
	}
	var st viewState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		logger.Warn("discarding unreadable table state", zap.String("table", name), zap.Error(err))
		return viewState{}, false
	}
	return st, true
}

func saveViewState(ctx context.Context, store StateStore, name string, st viewState, logger *zap.Logger) {
	if store == nil {
		return
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := store.Set(ctx, viewStateKey(name), string(raw)); err != nil {
		logger.Warn("failed to save table state", zap.String("table", name), zap.Error(err))
	}
}

// restoreView rebuilds a view from remembered state. A page size dropped
// from the configuration falls back to the default while the remembered
// filters and sort are kept; columns the table no longer has drop the state.
func restoreView[T any](view *table.View[T], st viewState, ok bool, logger *zap.Logger) {
	if !ok {
		return
	}
	if err := view.Apply(st.Table); err != nil {
		logger.Debug("remembered table state partly ignored", zap.Error(err))
	}
}

// TableOptions carries the page size selector shared by every table.
type TableOptions struct {
	PageSizes       []int
	DefaultPageSize int
}

func newView[T any](schema table.Schema[T], opts TableOptions) *table.View[T] {
	return table.NewView(schema, opts.PageSizes, opts.DefaultPageSize)
}

// TablePage is one derived page of a table plus what a renderer needs to
// draw it: column names, display cells and the pagination footer.
type TablePage[T any] struct {
	Items      []T                 `json:"items"`
	Columns    []string            `json:"columns"`
	Rows       []map[string]string `json:"rows"`
	State      table.State         `json:"state"`
	Pagination models.Pagination   `json:"-"`
}

func pageOf[T any](view *table.View[T]) TablePage[T] {
	page := view.Current()
	schema := view.Schema()
	return TablePage[T]{
		Items:   page.Items,
		Columns: schema.Names(),
		Rows:    displayRows(schema, page.Items),
		State:   view.State(),
		Pagination: models.Pagination{
			Page:       page.Page,
			PageSize:   page.PerPage,
			TotalCount: page.TotalItems,
			TotalPages: page.TotalPages,
			PageSizes:  view.PageSizes(),
		},
	}
}

func displayRows[T any](schema table.Schema[T], items []T) []map[string]string {
	rows := make([]map[string]string, len(items))
	fields := schema.Fields()
	for i, item := range items {
		row := make(map[string]string, len(fields))
		for _, f := range fields {
			row[f.Name] = f.Display(item)
		}
		rows[i] = row
	}
	return rows
}
