package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

type submitterStub struct {
	mu    sync.Mutex
	subs  []models.Submission
	err   error
	reply models.SubmissionResult
}

func (s *submitterStub) Submit(_ context.Context, sub models.Submission) (models.SubmissionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, sub)
	return s.reply, s.err
}

type credsStub struct{ token string }

func (c credsStub) Token(context.Context) (string, error) {
	if c.token == "" {
		return "", appErrors.ErrMissingCredential
	}
	return c.token, nil
}

type refresherStub struct{ n uint64 }

func (r *refresherStub) Refresh() uint64 {
	r.n++
	return r.n
}

func testFrame(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	return img
}

var here = models.Location{Latitude: -6.2, Longitude: 106.8}

func strPtr(s string) *string { return &s }

func newFlow(sub Submitter, refresher Refresher, locator Locator) *Flow {
	return NewFlow(ImageCamera(testFrame(64, 48)), locator, sub, credsStub{token: "tok"}, refresher, Options{}, nil)
}

func TestCaptureEncodesJPEGAndStopsCamera(t *testing.T) {
	flow := newFlow(&submitterStub{}, nil, FixedLocator(here))
	assert.True(t, flow.Snapshot().CameraLive)

	require.NoError(t, flow.Capture(context.Background()))
	snap := flow.Snapshot()
	assert.Equal(t, StateCaptured, snap.State)
	assert.False(t, snap.CameraLive)
	assert.True(t, snap.HasPhoto)
	assert.Nil(t, snap.Location)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(flow.Photo()))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 48, cfg.Height)
}

func TestCaptureShrinksLargeFrames(t *testing.T) {
	flow := NewFlow(ImageCamera(testFrame(400, 200)), nil, &submitterStub{}, credsStub{token: "tok"}, nil, Options{MaxDimension: 100}, nil)
	require.NoError(t, flow.Capture(context.Background()))

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(flow.Photo()))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestCaptureWithoutCamera(t *testing.T) {
	flow := NewFlow(nil, nil, &submitterStub{}, credsStub{token: "tok"}, nil, Options{}, nil)
	err := flow.Capture(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrCameraUnavailable)
	assert.Equal(t, StateIdle, flow.Snapshot().State)
	assert.Equal(t, "Webcam not available", flow.Snapshot().Message)
}

func TestLocateMakesReady(t *testing.T) {
	flow := newFlow(&submitterStub{}, nil, FixedLocator(here))
	require.NoError(t, flow.CaptureAndLocate(context.Background()))

	snap := flow.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	require.NotNil(t, snap.Location)
	assert.Equal(t, here, *snap.Location)
}

func TestLocateBeforeCaptureIsRefused(t *testing.T) {
	flow := newFlow(&submitterStub{}, nil, FixedLocator(here))
	err := flow.Locate(context.Background())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict.Code))
}

func TestLocationFailuresAreDistinguished(t *testing.T) {
	cases := []struct {
		name    string
		locator Locator
		code    string
	}{
		{"denied", LocatorFunc(func(context.Context) (models.Location, error) {
			return models.Location{}, appErrors.ErrLocationDenied
		}), appErrors.ErrLocationDenied.Code},
		{"unavailable", LocatorFunc(func(context.Context) (models.Location, error) {
			return models.Location{}, errors.New("no fix")
		}), appErrors.ErrLocationUnavailable.Code},
		{"unsupported", NoLocator, appErrors.ErrLocationUnsupported.Code},
		{"timeout", LocatorFunc(func(ctx context.Context) (models.Location, error) {
			<-ctx.Done()
			return models.Location{}, ctx.Err()
		}), appErrors.ErrLocationTimeout.Code},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			flow := NewFlow(ImageCamera(testFrame(8, 8)), tc.locator, &submitterStub{}, credsStub{token: "tok"}, nil,
				Options{LocationTimeout: 20 * time.Millisecond}, nil)
			err := flow.CaptureAndLocate(context.Background())
			require.Error(t, err)
			assert.True(t, appErrors.HasCode(err, tc.code), "got %v", err)

			snap := flow.Snapshot()
			assert.Equal(t, StateCaptured, snap.State)
			assert.True(t, snap.HasPhoto)
			assert.NotEmpty(t, snap.Message)
		})
	}
}

func TestDiscardReturnsToIdle(t *testing.T) {
	flow := newFlow(&submitterStub{}, nil, FixedLocator(here))
	require.NoError(t, flow.CaptureAndLocate(context.Background()))

	require.NoError(t, flow.Discard())
	snap := flow.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.True(t, snap.CameraLive)
	assert.False(t, snap.HasPhoto)
	assert.Nil(t, snap.Location)
	assert.Nil(t, flow.Photo())
}

func TestCaptureTwiceRequiresDiscard(t *testing.T) {
	flow := newFlow(&submitterStub{}, nil, FixedLocator(here))
	require.NoError(t, flow.Capture(context.Background()))
	assert.Error(t, flow.Capture(context.Background()))
}

func TestConcurrentCaptureIsRefused(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	camera := CameraFunc(func(context.Context) (image.Image, error) {
		close(entered)
		<-release
		return testFrame(8, 8), nil
	})
	flow := NewFlow(camera, nil, &submitterStub{}, credsStub{token: "tok"}, nil, Options{}, nil)

	done := make(chan error, 1)
	go func() { done <- flow.Capture(context.Background()) }()
	<-entered

	err := flow.Capture(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict.Code))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateCaptured, flow.Snapshot().State)
}

func TestSubmitSuccessClearsAndRefreshes(t *testing.T) {
	sub := &submitterStub{reply: models.SubmissionResult{Message: "Check-in successful!"}}
	refresher := &refresherStub{}
	flow := newFlow(sub, refresher, FixedLocator(here))
	require.NoError(t, flow.CaptureAndLocate(context.Background()))

	res, err := flow.Submit(context.Background(), models.ActionCheckIn, nil)
	require.NoError(t, err)
	assert.Equal(t, "Check-in successful!", res.Message)
	require.Len(t, sub.subs, 1)
	assert.Equal(t, models.ActionCheckIn, sub.subs[0].Action)
	assert.Equal(t, here, sub.subs[0].Location)
	assert.NotEmpty(t, sub.subs[0].Photo)

	snap := flow.Snapshot()
	assert.Equal(t, StateSucceeded, snap.State)
	assert.False(t, snap.HasPhoto)
	assert.Nil(t, snap.Location)
	assert.Equal(t, uint64(1), refresher.n)
}

func TestSubmitFailureKeepsCaptureForRetry(t *testing.T) {
	sub := &submitterStub{err: appErrors.Rejected(400, "Bad Request (400): Invalid data sent.")}
	refresher := &refresherStub{}
	flow := newFlow(sub, refresher, FixedLocator(here))
	require.NoError(t, flow.CaptureAndLocate(context.Background()))

	_, err := flow.Submit(context.Background(), models.ActionCheckIn, nil)
	require.Error(t, err)
	snap := flow.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.True(t, snap.HasPhoto)
	require.NotNil(t, snap.Location)
	assert.Equal(t, "Bad Request (400): Invalid data sent.", snap.Message)
	assert.Zero(t, refresher.n)

	sub.err = nil
	_, err = flow.Submit(context.Background(), models.ActionCheckIn, nil)
	require.NoError(t, err)
	assert.Len(t, sub.subs, 2)
	assert.Equal(t, sub.subs[0].Photo, sub.subs[1].Photo)
}

func TestSubmitPreconditions(t *testing.T) {
	sub := &submitterStub{}

	noToken := NewFlow(ImageCamera(testFrame(8, 8)), FixedLocator(here), sub, credsStub{}, nil, Options{}, nil)
	require.NoError(t, noToken.CaptureAndLocate(context.Background()))
	_, err := noToken.Submit(context.Background(), models.ActionCheckIn, nil)
	assert.ErrorIs(t, err, appErrors.ErrMissingCredential)

	noPhoto := newFlow(sub, nil, FixedLocator(here))
	_, err = noPhoto.Submit(context.Background(), models.ActionCheckIn, nil)
	assert.EqualError(t, err, "Please capture a photo first.")

	noLocation := newFlow(sub, nil, FixedLocator(here))
	require.NoError(t, noLocation.Capture(context.Background()))
	_, err = noLocation.Submit(context.Background(), models.ActionCheckIn, nil)
	assert.EqualError(t, err, "Location not available. Please try capturing again")

	assert.Empty(t, sub.subs)
}

func TestCheckOutDisabledWithoutCheckInEvenWithPhoto(t *testing.T) {
	sub := &submitterStub{}
	flow := newFlow(sub, nil, FixedLocator(here))
	require.NoError(t, flow.CaptureAndLocate(context.Background()))

	today := &models.TodayAttendance{}
	assert.False(t, CanCheckOut(today))
	_, err := flow.Submit(context.Background(), models.ActionCheckOut, today)
	assert.ErrorIs(t, err, ErrNotCheckedIn)
	assert.Empty(t, sub.subs)
	assert.Equal(t, StateReady, flow.Snapshot().State)
}

func TestGuards(t *testing.T) {
	in := &models.TodayAttendance{CheckIn: strPtr("2025-01-06T08:00:00Z")}
	done := &models.TodayAttendance{CheckIn: strPtr("2025-01-06T08:00:00Z"), CheckOut: strPtr("2025-01-06T17:00:00Z")}
	blank := &models.TodayAttendance{CheckIn: strPtr("")}

	assert.True(t, CanCheckIn(nil))
	assert.False(t, CanCheckOut(nil))
	assert.True(t, CanCheckIn(blank))

	assert.False(t, CanCheckIn(in))
	assert.True(t, CanCheckOut(in))

	assert.False(t, CanCheckIn(done))
	assert.False(t, CanCheckOut(done))

	assert.ErrorIs(t, CheckAllowed(models.ActionCheckIn, in), ErrAlreadyCheckedIn)
	assert.ErrorIs(t, CheckAllowed(models.ActionCheckOut, done), ErrAlreadyCheckedOut)
	assert.NoError(t, CheckAllowed(models.ActionCheckOut, in))
	assert.Error(t, CheckAllowed("lunch", nil))
}

func TestDecodeFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testFrame(10, 6), nil))
	img, err := DecodeFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())

	_, err = DecodeFrame(bytes.NewReader([]byte("not an image")))
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestFileCameraMissingFile(t *testing.T) {
	_, err := FileCamera(t.TempDir() + "/missing.jpg").Frame(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrCameraUnavailable)
}
