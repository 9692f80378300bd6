package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	"github.com/noah-isme/attendance-dashboard/internal/table"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
	"github.com/noah-isme/attendance-dashboard/pkg/export"
)

type rekapBackend interface {
	Rekap(ctx context.Context) ([]models.RekapEntry, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// RekapPage is the aggregate report table.
type RekapPage struct {
	TablePage[models.RekapEntry]
	Statuses []string `json:"statuses"`
}

// ExportResult is a rendered report file.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

// RekapService derives and exports the aggregate attendance report.
type RekapService struct {
	backend rekapBackend
	store   StateStore
	csv     csvRenderer
	pdf     pdfRenderer
	opts    TableOptions
	now     func() time.Time
	logger  *zap.Logger
}

// NewRekapService constructs a RekapService. Nil renderers use the defaults.
func NewRekapService(backend rekapBackend, store StateStore, opts TableOptions, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *RekapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &RekapService{backend: backend, store: store, csv: csv, pdf: pdf, opts: opts, now: time.Now, logger: logger}
}

// Page fetches the report and derives the requested page.
func (s *RekapService) Page(ctx context.Context, change table.Change) (*RekapPage, error) {
	view, err := s.view(ctx, change)
	if err != nil {
		return nil, err
	}
	return &RekapPage{TablePage: pageOf(view), Statuses: distinctStatuses(view.Records())}, nil
}

// Export renders every row passing the current filters, in the current sort
// order, not just the visible page.
func (s *RekapService) Export(ctx context.Context, format export.Format, change table.Change) (*ExportResult, error) {
	view, err := s.view(ctx, change)
	if err != nil {
		return nil, err
	}
	st := view.State()
	schema := view.Schema()
	rows := table.ApplySort(table.ApplyFilters(view.Records(), schema, st.Filters), schema, st.Sort)

	data := export.Dataset{Title: "Attendance Rekap", Headers: schema.Names()}
	for _, rec := range rows {
		cells := make([]string, 0, len(data.Headers))
		for _, f := range schema.Fields() {
			cells = append(cells, f.Display(rec))
		}
		data.Rows = append(data.Rows, cells)
	}

	var body []byte
	switch format {
	case export.FormatCSV:
		body, err = s.csv.Render(data)
	case export.FormatPDF:
		body, err = s.pdf.Render(data)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render rekap export")
	}

	s.logger.Info("rekap exported", zap.String("format", string(format)), zap.Int("rows", len(rows)))
	return &ExportResult{
		Filename:    format.Filename("rekap", s.now()),
		ContentType: format.ContentType(),
		Body:        body,
		Rows:        len(rows),
	}, nil
}

func (s *RekapService) view(ctx context.Context, change table.Change) (*table.View[models.RekapEntry], error) {
	entries, err := s.backend.Rekap(ctx)
	if err != nil {
		return nil, err
	}
	view := newView(table.RekapColumns(), s.opts)
	st, ok := loadViewState(ctx, s.store, TableRekap, s.logger)
	restoreView(view, st, ok, s.logger)
	view.SetRecords(entries)
	if err := view.Update(change); err != nil {
		return nil, err
	}
	saveViewState(ctx, s.store, TableRekap, viewState{Table: view.State()}, s.logger)
	return view, nil
}

func distinctStatuses(entries []models.RekapEntry) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, e := range entries {
		if e.Status == "" {
			continue
		}
		if _, ok := seen[e.Status]; ok {
			continue
		}
		seen[e.Status] = struct{}{}
		out = append(out, e.Status)
	}
	return out
}
