package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	"github.com/noah-isme/attendance-dashboard/internal/session"
)

type backendStub struct {
	mu sync.Mutex

	users     []models.User
	usersErr  error
	setReqs   []models.SetAccessRequest
	setResp   *models.SetAccessResponse
	setErr    error
	history   []models.AttendanceRecord
	months    []time.Time
	rekap     []models.RekapEntry
	rekapErr  error
	today     *models.TodayAttendance
	todayErr  error
	subs      []models.Submission
	submitErr error
	registers []models.RegisterRequest
	regErr    error
}

func (b *backendStub) ListUsers(context.Context) ([]models.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.usersErr != nil {
		return nil, b.usersErr
	}
	out := make([]models.User, len(b.users))
	copy(out, b.users)
	return out, nil
}

func (b *backendStub) SetAccess(_ context.Context, req models.SetAccessRequest) (models.SetAccessResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setReqs = append(b.setReqs, req)
	if b.setErr != nil {
		return models.SetAccessResponse{}, b.setErr
	}
	if b.setResp != nil {
		return *b.setResp, nil
	}
	return models.SetAccessResponse{}, nil
}

func (b *backendStub) History(_ context.Context, month time.Time) ([]models.AttendanceRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.months = append(b.months, month)
	return b.history, nil
}

func (b *backendStub) Rekap(context.Context) ([]models.RekapEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rekap, b.rekapErr
}

func (b *backendStub) TodayAttendance(context.Context) (*models.TodayAttendance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.today, b.todayErr
}

func (b *backendStub) Submit(_ context.Context, sub models.Submission) (models.SubmissionResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, sub)
	if b.submitErr != nil {
		return models.SubmissionResult{}, b.submitErr
	}
	now := "2025-01-06T08:00:00Z"
	if sub.Action == models.ActionCheckIn {
		b.today = &models.TodayAttendance{CheckIn: &now}
	} else if b.today != nil {
		b.today.CheckOut = &now
	}
	return models.SubmissionResult{Message: sub.Action.Label() + " successful!"}, nil
}

func (b *backendStub) Register(_ context.Context, req models.RegisterRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registers = append(b.registers, req)
	return b.regErr
}

func role(r models.Role) *models.Role { return &r }

func strPtr(s string) *string { return &s }

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func signedInManager(t *testing.T, r models.Role) *session.Manager {
	t.Helper()
	manager := session.NewManager(session.NewMemoryStorage(), "", nil)
	_, err := manager.SignIn(context.Background(), signedToken(t, jwt.MapClaims{"id": 9, "username": "budi", "role": string(r)}))
	require.NoError(t, err)
	return manager
}
