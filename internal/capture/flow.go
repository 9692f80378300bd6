package capture

import (
	"bytes"
	"context"
	"image"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

// State is a step of the capture flow.
type State string

const (
	StateIdle       State = "idle"
	StateCaptured   State = "captured"
	StateReady      State = "ready"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Default tuning.
const (
	DefaultJPEGQuality     = 80
	DefaultLocationTimeout = 30 * time.Second
	DefaultMaxDimension    = 1280
)

// Submitter posts a finished capture.
type Submitter interface {
	Submit(ctx context.Context, sub models.Submission) (models.SubmissionResult, error)
}

// Credentials reports the current bearer credential.
type Credentials interface {
	Token(ctx context.Context) (string, error)
}

// Refresher is signalled after a successful submission so today's attendance
// is fetched again.
type Refresher interface {
	Refresh() uint64
}

// Options tunes a Flow.
type Options struct {
	JPEGQuality     int
	LocationTimeout time.Duration
	// MaxDimension bounds the longer side of the encoded photo. Zero keeps
	// the frame size.
	MaxDimension int
}

func (o Options) withDefaults() Options {
	if o.JPEGQuality <= 0 || o.JPEGQuality > 100 {
		o.JPEGQuality = DefaultJPEGQuality
	}
	if o.LocationTimeout <= 0 {
		o.LocationTimeout = DefaultLocationTimeout
	}
	return o
}

// Snapshot describes the flow for rendering.
type Snapshot struct {
	State      State            `json:"state"`
	CameraLive bool             `json:"cameraLive"`
	HasPhoto   bool             `json:"hasPhoto"`
	PhotoBytes int              `json:"photoBytes,omitempty"`
	Location   *models.Location `json:"location,omitempty"`
	Message    string           `json:"message,omitempty"`
	Err        error            `json:"-"`
}

// Flow drives one capture from live camera to submitted attendance. The
// photo and location survive a failed submission so it can be retried.
type Flow struct {
	camera    Camera
	locator   Locator
	submitter Submitter
	creds     Credentials
	refresher Refresher
	opts      Options
	logger    *zap.Logger

	mu       sync.Mutex
	state    State
	photo    []byte
	location *models.Location
	err      error
	message  string
	// capturing is set while a Capture holds the camera.
	capturing bool
}

// NewFlow builds an idle flow with the camera live.
func NewFlow(camera Camera, locator Locator, submitter Submitter, creds Credentials, refresher Refresher, opts Options, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locator == nil {
		locator = NoLocator
	}
	return &Flow{
		camera:    camera,
		locator:   locator,
		submitter: submitter,
		creds:     creds,
		refresher: refresher,
		opts:      opts.withDefaults(),
		logger:    logger,
		state:     StateIdle,
	}
}

// Snapshot returns the current flow state.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := Snapshot{
		State:      f.state,
		CameraLive: f.state == StateIdle || f.state == StateSucceeded,
		HasPhoto:   len(f.photo) > 0,
		PhotoBytes: len(f.photo),
		Message:    f.message,
		Err:        f.err,
	}
	if f.location != nil {
		loc := *f.location
		snap.Location = &loc
	}
	return snap
}

// Photo returns a copy of the encoded photo, nil when none is held.
func (f *Flow) Photo() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.photo == nil {
		return nil
	}
	return append([]byte(nil), f.photo...)
}

// Capture takes a still from the camera, encodes it as JPEG and turns the
// live feed off. Only one capture runs at a time.
func (f *Flow) Capture(ctx context.Context) error {
	f.mu.Lock()
	if f.capturing {
		f.mu.Unlock()
		return appErrors.Clone(appErrors.ErrConflict, "A photo is already being captured.")
	}
	if f.state != StateIdle && f.state != StateSucceeded {
		f.mu.Unlock()
		return appErrors.Clone(appErrors.ErrConflict, "Discard the current photo before capturing again.")
	}
	f.capturing = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.capturing = false
		f.mu.Unlock()
	}()

	if f.camera == nil {
		return f.fail(appErrors.ErrCameraUnavailable)
	}
	frame, err := f.camera.Frame(ctx)
	if err != nil {
		return f.fail(err)
	}
	photo, err := f.encode(frame)
	if err != nil {
		return f.fail(err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.photo = photo
	f.location = nil
	f.err = nil
	f.message = ""
	f.state = StateCaptured
	f.logger.Debug("photo captured", zap.Int("bytes", len(photo)))
	return nil
}

func (f *Flow) encode(frame image.Image) ([]byte, error) {
	if f.opts.MaxDimension > 0 {
		b := frame.Bounds()
		if b.Dx() > f.opts.MaxDimension || b.Dy() > f.opts.MaxDimension {
			frame = imaging.Fit(frame, f.opts.MaxDimension, f.opts.MaxDimension, imaging.Lanczos)
		}
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, frame, imaging.JPEG, imaging.JPEGQuality(f.opts.JPEGQuality)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to capture photo")
	}
	return buf.Bytes(), nil
}

// Locate asks the locator for a position, giving up after the configured
// timeout. A located capture is ready to submit.
func (f *Flow) Locate(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateCaptured && f.state != StateReady {
		f.mu.Unlock()
		return appErrors.Clone(appErrors.ErrConflict, "Please capture a photo first.")
	}
	f.mu.Unlock()

	loc, err := f.locate(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateCaptured && f.state != StateReady {
		// discarded meanwhile
		return appErrors.Clone(appErrors.ErrConflict, "Capture was discarded.")
	}
	if err != nil {
		f.err = err
		f.message = err.Message
		f.state = StateCaptured
		return err
	}
	f.location = &loc
	f.err = nil
	f.message = ""
	f.state = StateReady
	return nil
}

func (f *Flow) locate(ctx context.Context) (models.Location, *appErrors.Error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.LocationTimeout)
	defer cancel()

	type result struct {
		loc models.Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		loc, err := f.locator.Locate(ctx)
		done <- result{loc: loc, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return models.Location{}, ClassifyLocation(res.err)
		}
		return res.loc, nil
	case <-ctx.Done():
		return models.Location{}, ClassifyLocation(ctx.Err())
	}
}

// CaptureAndLocate runs Capture then Locate, the single user action of the
// capture button.
func (f *Flow) CaptureAndLocate(ctx context.Context) error {
	if err := f.Capture(ctx); err != nil {
		return err
	}
	return f.Locate(ctx)
}

// Discard drops the photo and location and turns the camera back on. It is
// refused only while a submission is in flight.
func (f *Flow) Discard() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return appErrors.Clone(appErrors.ErrConflict, "Submission in progress.")
	}
	f.reset(StateIdle)
	return nil
}

func (f *Flow) reset(state State) {
	f.photo = nil
	f.location = nil
	f.err = nil
	f.message = ""
	f.state = state
}

// Submit posts the capture as action. today is the freshly fetched record
// that decides whether the action is allowed at all.
func (f *Flow) Submit(ctx context.Context, action models.AttendanceAction, today *models.TodayAttendance) (models.SubmissionResult, error) {
	var out models.SubmissionResult
	if err := CheckAllowed(action, today); err != nil {
		return out, err
	}
	if f.creds == nil {
		return out, appErrors.ErrMissingCredential
	}
	if _, err := f.creds.Token(ctx); err != nil {
		return out, err
	}

	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return out, appErrors.Clone(appErrors.ErrConflict, "Submission in progress.")
	}
	if len(f.photo) == 0 {
		f.mu.Unlock()
		return out, ErrNoPhoto
	}
	if f.location == nil {
		f.mu.Unlock()
		return out, ErrNoLocation
	}
	sub := models.Submission{Action: action, Photo: f.photo, Location: *f.location}
	f.state = StateSubmitting
	f.mu.Unlock()

	out, err := f.submitter.Submit(ctx, sub)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.err = err
		f.message = appErrors.FromError(err).Message
		f.state = StateFailed
		f.logger.Info("attendance submission failed", zap.String("action", string(action)), zap.Error(err))
		return out, err
	}
	f.reset(StateSucceeded)
	f.message = out.Message
	if f.refresher != nil {
		f.refresher.Refresh()
	}
	return out, nil
}

func (f *Flow) fail(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	f.message = appErrors.FromError(err).Message
	return err
}
