package service

import (
	"context"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-dashboard/internal/capture"
	"github.com/noah-isme/attendance-dashboard/internal/fetch"
	"github.com/noah-isme/attendance-dashboard/internal/models"
)

type attendanceBackend interface {
	TodayAttendance(ctx context.Context) (*models.TodayAttendance, error)
	Submit(ctx context.Context, sub models.Submission) (models.SubmissionResult, error)
}

// Placeholders for absent times.
const (
	NoCheckIn  = "No Check In"
	NoCheckOut = "No Check Out"
)

const displayLayout = "02 Jan 2006 15:04"

// TodayView is today's attendance as the attendance page shows it.
type TodayView struct {
	Record      *models.TodayAttendance `json:"record"`
	CheckIn     string                  `json:"check_in"`
	CheckOut    string                  `json:"check_out"`
	Status      string                  `json:"status,omitempty"`
	CanCheckIn  bool                    `json:"can_check_in"`
	CanCheckOut bool                    `json:"can_check_out"`
	// CameraLive is false once the day is complete.
	CameraLive bool   `json:"camera_live"`
	Loading    bool   `json:"loading"`
	Error      string `json:"error,omitempty"`
	Refresh    uint64 `json:"refresh"`
}

// AttendanceService owns today's attendance resource and submissions.
type AttendanceService struct {
	backend attendanceBackend
	creds   fetch.Credentials
	today   *fetch.Resource[*models.TodayAttendance]
	metrics *MetricsService
	opts    capture.Options
	loc     *time.Location
	logger  *zap.Logger
}

// NewAttendanceService wires the today resource to backend and creds.
func NewAttendanceService(backend attendanceBackend, creds fetch.Credentials, metrics *MetricsService, opts capture.Options, loc *time.Location, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &AttendanceService{
		backend: backend,
		creds:   creds,
		today:   fetch.NewResource("today", backend.TodayAttendance, creds, logger),
		metrics: metrics,
		opts:    opts,
		loc:     loc,
		logger:  logger,
	}
}

// Resource exposes today's attendance for callers running its refresh loop.
func (s *AttendanceService) Resource() *fetch.Resource[*models.TodayAttendance] {
	return s.today
}

// Today fetches and formats today's attendance.
func (s *AttendanceService) Today(ctx context.Context) TodayView {
	return s.render(s.today.Load(ctx))
}

// Current formats the last fetched state without a network call.
func (s *AttendanceService) Current() TodayView {
	return s.render(s.today.Snapshot())
}

func (s *AttendanceService) render(snap fetch.Snapshot[*models.TodayAttendance]) TodayView {
	rec := snap.Value
	view := TodayView{
		Record:      rec,
		CheckIn:     FormatDisplayTime(todayField(rec, func(t *models.TodayAttendance) *string { return t.CheckIn }), NoCheckIn, s.loc),
		CheckOut:    FormatDisplayTime(todayField(rec, func(t *models.TodayAttendance) *string { return t.CheckOut }), NoCheckOut, s.loc),
		CanCheckIn:  capture.CanCheckIn(rec),
		CanCheckOut: capture.CanCheckOut(rec),
		CameraLive:  !rec.HasCheckedOut(),
		Loading:     snap.Loading,
		Error:       snap.Message(),
		Refresh:     snap.Refresh,
	}
	if rec != nil && rec.Status != nil {
		view.Status = *rec.Status
	}
	if snap.Err != nil {
		// nothing may be submitted against an unknown day
		view.CanCheckIn = false
		view.CanCheckOut = false
	}
	return view
}

// NewFlow starts a capture bound to this service's backend. A successful
// submission refreshes today's attendance.
func (s *AttendanceService) NewFlow(camera capture.Camera, locator capture.Locator) *capture.Flow {
	return capture.NewFlow(camera, locator, s.backend, s.creds, s.today, s.opts, s.logger)
}

// Submit posts flow's capture as action after re-reading today's attendance
// for the guards.
func (s *AttendanceService) Submit(ctx context.Context, flow *capture.Flow, action models.AttendanceAction) (models.SubmissionResult, error) {
	snap := s.today.Load(ctx)
	if snap.Err != nil {
		return models.SubmissionResult{}, snap.Err
	}
	res, err := flow.Submit(ctx, action, snap.Value)
	s.metrics.RecordSubmission(action, err)
	return res, err
}

// SubmitFrame captures frame at loc and submits it in one step, for callers
// that already hold both.
func (s *AttendanceService) SubmitFrame(ctx context.Context, action models.AttendanceAction, frame image.Image, loc models.Location) (models.SubmissionResult, TodayView, error) {
	flow := s.NewFlow(capture.ImageCamera(frame), capture.FixedLocator(loc))
	if err := flow.CaptureAndLocate(ctx); err != nil {
		return models.SubmissionResult{}, s.Current(), err
	}
	res, err := s.Submit(ctx, flow, action)
	if err != nil {
		return res, s.Current(), err
	}
	return res, s.Today(ctx), nil
}

// FormatDisplayTime renders a backend timestamp as "06 Jan 2025 08:00" in
// loc, or placeholder when absent.
func FormatDisplayTime(raw, placeholder string, loc *time.Location) string {
	if raw == "" {
		return placeholder
	}
	ts, ok := models.ParseTimestamp(raw)
	if !ok {
		return raw
	}
	return ts.In(loc).Format(displayLayout)
}

func todayField(rec *models.TodayAttendance, get func(*models.TodayAttendance) *string) string {
	if rec == nil {
		return ""
	}
	if v := get(rec); v != nil {
		return *v
	}
	return ""
}
