package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/attendance-dashboard/internal/models"
)

type homeBackend interface {
	rekapBackend
	ListUsers(ctx context.Context) ([]models.User, error)
	History(ctx context.Context, month time.Time) ([]models.AttendanceRecord, error)
}

type todaySource interface {
	Today(ctx context.Context) TodayView
}

// AdminOverview summarises the workforce for administrators.
type AdminOverview struct {
	Users         int            `json:"users"`
	WithoutRole   int            `json:"without_role"`
	RekapEntries  int            `json:"rekap_entries"`
	ByStatus      map[string]int `json:"by_status"`
	HoursRecorded float64        `json:"hours_recorded"`
}

// UserOverview summarises the signed-in employee's month.
type UserOverview struct {
	Today        TodayView `json:"today"`
	Month        string    `json:"month"`
	DaysRecorded int       `json:"days_recorded"`
	OpenShifts   int       `json:"open_shifts"`
}

// HomeView is the landing page, filled according to role.
type HomeView struct {
	Identity models.Identity `json:"identity"`
	Admin    *AdminOverview  `json:"admin,omitempty"`
	User     *UserOverview   `json:"user,omitempty"`
}

// HomeService loads the landing page. Its backend calls are independent and
// run concurrently.
type HomeService struct {
	backend homeBackend
	today   todaySource
	loc     *time.Location
	now     func() time.Time
	logger  *zap.Logger
}

// NewHomeService constructs a HomeService.
func NewHomeService(backend homeBackend, today todaySource, loc *time.Location, logger *zap.Logger) *HomeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &HomeService{backend: backend, today: today, loc: loc, now: time.Now, logger: logger}
}

// Overview builds the landing page for identity.
func (s *HomeService) Overview(ctx context.Context, identity models.Identity) (*HomeView, error) {
	view := &HomeView{Identity: identity}
	switch identity.Role {
	case models.RoleAdmin:
		overview, err := s.admin(ctx)
		if err != nil {
			return nil, err
		}
		view.Admin = overview
	case models.RoleUser:
		overview, err := s.user(ctx)
		if err != nil {
			return nil, err
		}
		view.User = overview
	}
	return view, nil
}

func (s *HomeService) admin(ctx context.Context) (*AdminOverview, error) {
	var (
		users []models.User
		rekap []models.RekapEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.backend.ListUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rekap, err = s.backend.Rekap(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &AdminOverview{Users: len(users), RekapEntries: len(rekap), ByStatus: map[string]int{}}
	for _, u := range users {
		if u.Role == nil {
			out.WithoutRole++
		}
	}
	for _, e := range rekap {
		out.ByStatus[e.Status]++
		out.HoursRecorded += e.Hours
	}
	return out, nil
}

func (s *HomeService) user(ctx context.Context) (*UserOverview, error) {
	month := s.now().In(s.loc)
	out := &UserOverview{Month: month.Format(models.MonthLayout)}
	var records []models.AttendanceRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.Today = s.today.Today(gctx)
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = s.backend.History(gctx, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.DaysRecorded = len(records)
	for _, r := range records {
		if r.CheckOut == nil || *r.CheckOut == "" {
			out.OpenShifts++
		}
	}
	return out, nil
}
