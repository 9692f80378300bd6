package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	"github.com/noah-isme/attendance-dashboard/internal/table"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

type historyBackend interface {
	History(ctx context.Context, month time.Time) ([]models.AttendanceRecord, error)
}

// HistoryPage is the signed-in user's attendance for one month.
type HistoryPage struct {
	TablePage[models.AttendanceRecord]
	Month string `json:"month"`
}

// HistoryService derives the monthly history table.
type HistoryService struct {
	backend historyBackend
	store   StateStore
	opts    TableOptions
	loc     *time.Location
	now     func() time.Time
	logger  *zap.Logger
}

// NewHistoryService creates a HistoryService. Clock times render in loc.
func NewHistoryService(backend historyBackend, store StateStore, opts TableOptions, loc *time.Location, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &HistoryService{backend: backend, store: store, opts: opts, loc: loc, now: time.Now, logger: logger}
}

// Page loads month (YYYY-MM; empty keeps the last month viewed, else the
// current one). Picking another month sends the table back to page 1.
func (s *HistoryService) Page(ctx context.Context, month string, change table.Change) (*HistoryPage, error) {
	st, ok := loadViewState(ctx, s.store, TableHistory, s.logger)

	selected := month
	if selected == "" {
		selected = st.Month
	}
	if selected == "" {
		selected = s.now().In(s.loc).Format(models.MonthLayout)
	}
	at, err := models.ParseMonth(selected)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be formatted as YYYY-MM")
	}

	records, err := s.backend.History(ctx, at)
	if err != nil {
		return nil, err
	}

	view := newView(table.HistoryColumns(s.loc), s.opts)
	restoreView(view, st, ok, s.logger)
	view.SetRecords(records)
	if err := view.Update(change); err != nil {
		return nil, err
	}
	if ok && st.Month != "" && st.Month != selected {
		view.ResetPage()
	}
	saveViewState(ctx, s.store, TableHistory, viewState{Table: view.State(), Month: selected}, s.logger)

	return &HistoryPage{TablePage: pageOf(view), Month: selected}, nil
}
