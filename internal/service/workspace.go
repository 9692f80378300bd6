package service

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-dashboard/internal/capture"
	"github.com/noah-isme/attendance-dashboard/internal/client"
	"github.com/noah-isme/attendance-dashboard/internal/session"
)

// Dependencies are shared by every session's services.
type Dependencies struct {
	Client    *client.Client
	Metrics   *MetricsService
	Validator *validator.Validate
	Table     TableOptions
	Capture   capture.Options
	Location  *time.Location
	Logger    *zap.Logger
}

// Workspace is the set of services bound to one session: every backend call
// carries that session's token and table state is remembered in its storage.
type Workspace struct {
	Session    *session.Manager
	Auth       *AuthService
	Users      *UserAccessService
	History    *HistoryService
	Rekap      *RekapService
	Attendance *AttendanceService
	Home       *HomeService
}

// NewWorkspace binds deps to manager. store keeps per-table state and may be
// nil.
func NewWorkspace(deps Dependencies, manager *session.Manager, store StateStore) *Workspace {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := deps.Validator
	if validate == nil {
		validate = NewValidator()
	}
	backend := deps.Client.WithTokens(manager)

	attendance := NewAttendanceService(backend, manager, deps.Metrics, deps.Capture, deps.Location, logger)
	return &Workspace{
		Session:    manager,
		Auth:       NewAuthService(backend, manager, validate, logger),
		Users:      NewUserAccessService(backend, store, validate, deps.Table, logger),
		History:    NewHistoryService(backend, store, deps.Table, deps.Location, logger),
		Rekap:      NewRekapService(backend, store, deps.Table, logger, nil, nil),
		Attendance: attendance,
		Home:       NewHomeService(backend, attendance, deps.Location, logger),
	}
}
