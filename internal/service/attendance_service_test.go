package service

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-dashboard/internal/capture"
	"github.com/noah-isme/attendance-dashboard/internal/models"
	"github.com/noah-isme/attendance-dashboard/internal/session"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

var office = models.Location{Latitude: -6.2, Longitude: 106.8}

func frame() image.Image {
	return image.NewGray(image.Rect(0, 0, 16, 16))
}

func TestTodayFormatsTimes(t *testing.T) {
	backend := &backendStub{today: &models.TodayAttendance{CheckIn: strPtr("2025-01-06T08:05:00Z"), Status: strPtr("present")}}
	svc := NewAttendanceService(backend, signedInManager(t, models.RoleUser), nil, capture.Options{}, time.UTC, nil)

	view := svc.Today(context.Background())
	assert.Equal(t, "06 Jan 2025 08:05", view.CheckIn)
	assert.Equal(t, NoCheckOut, view.CheckOut)
	assert.Equal(t, "present", view.Status)
	assert.False(t, view.CanCheckIn)
	assert.True(t, view.CanCheckOut)
	assert.True(t, view.CameraLive)
	assert.Empty(t, view.Error)
}

func TestTodayWithoutRecord(t *testing.T) {
	svc := NewAttendanceService(&backendStub{}, signedInManager(t, models.RoleUser), nil, capture.Options{}, time.UTC, nil)

	view := svc.Today(context.Background())
	assert.Nil(t, view.Record)
	assert.Equal(t, NoCheckIn, view.CheckIn)
	assert.True(t, view.CanCheckIn)
	assert.False(t, view.CanCheckOut)
}

func TestTodayWithoutTokenBlocksActions(t *testing.T) {
	manager := session.NewManager(session.NewMemoryStorage(), "", nil)
	svc := NewAttendanceService(&backendStub{}, manager, nil, capture.Options{}, time.UTC, nil)

	view := svc.Today(context.Background())
	assert.Equal(t, "No token found. Please log in.", view.Error)
	assert.False(t, view.CanCheckIn)
	assert.False(t, view.CanCheckOut)
}

func TestSubmitFrameChecksInAndRefreshes(t *testing.T) {
	backend := &backendStub{}
	metrics := NewMetricsService()
	svc := NewAttendanceService(backend, signedInManager(t, models.RoleUser), metrics, capture.Options{}, time.UTC, nil)

	res, view, err := svc.SubmitFrame(context.Background(), models.ActionCheckIn, frame(), office)
	require.NoError(t, err)
	assert.Equal(t, "Check-in successful!", res.Message)
	require.Len(t, backend.subs, 1)
	assert.Equal(t, office, backend.subs[0].Location)
	assert.NotEmpty(t, backend.subs[0].Photo)

	assert.Equal(t, "06 Jan 2025 08:00", view.CheckIn)
	assert.False(t, view.CanCheckIn)
	assert.True(t, view.CanCheckOut)
	assert.Equal(t, uint64(1), view.Refresh)
	assert.Equal(t, uint64(1), metrics.Snapshot().Submissions)
}

func TestSubmitFrameRespectsGuards(t *testing.T) {
	backend := &backendStub{}
	svc := NewAttendanceService(backend, signedInManager(t, models.RoleUser), nil, capture.Options{}, time.UTC, nil)

	_, _, err := svc.SubmitFrame(context.Background(), models.ActionCheckOut, frame(), office)
	assert.ErrorIs(t, err, capture.ErrNotCheckedIn)
	assert.Empty(t, backend.subs)
}

func TestSubmitFrameSurfacesBackendRejection(t *testing.T) {
	backend := &backendStub{submitErr: appErrors.Rejected(400, "Bad Request (400): Outside office radius")}
	svc := NewAttendanceService(backend, signedInManager(t, models.RoleUser), nil, capture.Options{}, time.UTC, nil)

	_, view, err := svc.SubmitFrame(context.Background(), models.ActionCheckIn, frame(), office)
	require.Error(t, err)
	assert.Equal(t, "Bad Request (400): Outside office radius", appErrors.FromError(err).Message)
	assert.True(t, view.CanCheckIn)
}

func TestFlowSubmitKeepsCaptureOnFailure(t *testing.T) {
	backend := &backendStub{submitErr: appErrors.Rejected(500, "Server Error (500): Please try again later.")}
	svc := NewAttendanceService(backend, signedInManager(t, models.RoleUser), nil, capture.Options{}, time.UTC, nil)
	ctx := context.Background()

	flow := svc.NewFlow(capture.ImageCamera(frame()), capture.FixedLocator(office))
	require.NoError(t, flow.CaptureAndLocate(ctx))
	_, err := svc.Submit(ctx, flow, models.ActionCheckIn)
	require.Error(t, err)
	assert.Equal(t, capture.StateFailed, flow.Snapshot().State)

	backend.mu.Lock()
	backend.submitErr = nil
	backend.mu.Unlock()
	_, err = svc.Submit(ctx, flow, models.ActionCheckIn)
	require.NoError(t, err)
	assert.Equal(t, capture.StateSucceeded, flow.Snapshot().State)
}

func TestFormatDisplayTime(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	assert.Equal(t, "06 Jan 2025 15:05", FormatDisplayTime("2025-01-06T08:05:00Z", NoCheckOut, jakarta))
	assert.Equal(t, NoCheckOut, FormatDisplayTime("", NoCheckOut, jakarta))
	assert.Equal(t, "soon", FormatDisplayTime("soon", NoCheckOut, jakarta))
}
