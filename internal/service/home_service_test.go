package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-dashboard/internal/capture"
	"github.com/noah-isme/attendance-dashboard/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

func TestHomeAdminOverview(t *testing.T) {
	backend := &backendStub{users: threeUsers(), rekap: rekapEntries()}
	svc := NewHomeService(backend, nil, time.UTC, nil)

	view, err := svc.Overview(context.Background(), models.Identity{ID: "1", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.NotNil(t, view.Admin)
	assert.Nil(t, view.User)
	assert.Equal(t, 3, view.Admin.Users)
	assert.Equal(t, 1, view.Admin.WithoutRole)
	assert.Equal(t, 3, view.Admin.RekapEntries)
	assert.Equal(t, map[string]int{"Present": 2, "Absent": 1}, view.Admin.ByStatus)
	assert.InDelta(t, 15.5, view.Admin.HoursRecorded, 0.001)
}

func TestHomeAdminOverviewFailsWhenAnyCallFails(t *testing.T) {
	backend := &backendStub{users: threeUsers(), rekapErr: appErrors.Rejected(401, "")}
	svc := NewHomeService(backend, nil, time.UTC, nil)

	_, err := svc.Overview(context.Background(), models.Identity{Role: models.RoleAdmin})
	assert.ErrorIs(t, err, appErrors.ErrServerRejected)
}

func TestHomeUserOverview(t *testing.T) {
	backend := &backendStub{history: historyRecords(), today: &models.TodayAttendance{CheckIn: strPtr("2025-01-20T08:00:00Z")}}
	attendance := NewAttendanceService(backend, signedInManager(t, models.RoleUser), nil, capture.Options{}, time.UTC, nil)
	svc := NewHomeService(backend, attendance, time.UTC, nil)
	svc.now = func() time.Time { return time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC) }

	view, err := svc.Overview(context.Background(), models.Identity{ID: "9", Role: models.RoleUser})
	require.NoError(t, err)
	require.NotNil(t, view.User)
	assert.Nil(t, view.Admin)
	assert.Equal(t, "2025-01", view.User.Month)
	assert.Equal(t, 3, view.User.DaysRecorded)
	assert.Equal(t, 1, view.User.OpenShifts)
	assert.Equal(t, "20 Jan 2025 08:00", view.User.Today.CheckIn)
}
