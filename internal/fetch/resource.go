package fetch

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

// Loader fetches the current value of a resource.
type Loader[T any] func(ctx context.Context) (T, error)

// Credentials reports whether a credential is present. A missing credential
// short-circuits every load.
type Credentials interface {
	Token(ctx context.Context) (string, error)
}

// Snapshot is a consistent copy of a resource's state.
type Snapshot[T any] struct {
	Value   T
	Present bool
	Loading bool
	Err     error
	Refresh uint64
}

// Message returns the error text, or empty.
func (s Snapshot[T]) Message() string {
	if s.Err == nil {
		return ""
	}
	if appErr := appErrors.FromError(s.Err); appErr.Code != appErrors.ErrInternal.Code {
		return appErr.Message
	}
	return s.Err.Error()
}

// Resource is the single source of truth for one server-derived value. Every
// load is numbered and only the newest one may write its result.
type Resource[T any] struct {
	name   string
	load   Loader[T]
	creds  Credentials
	logger *zap.Logger

	mu      sync.Mutex
	value   T
	present bool
	loading int
	err     error
	refresh uint64
	gen     uint64
	kick    chan struct{}
}

// NewResource builds a resource. creds may be nil when the loader needs no
// credential.
func NewResource[T any](name string, load Loader[T], creds Credentials, logger *zap.Logger) *Resource[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resource[T]{
		name:   name,
		load:   load,
		creds:  creds,
		logger: logger.With(zap.String("resource", name)),
		kick:   make(chan struct{}, 1),
	}
}

// Name returns the resource label.
func (r *Resource[T]) Name() string {
	return r.name
}

// Snapshot returns the current state.
func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Resource[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Value:   r.value,
		Present: r.present,
		Loading: r.loading > 0,
		Err:     r.err,
		Refresh: r.refresh,
	}
}

// Refresh bumps the refresh counter and asks a running loop to reload.
func (r *Resource[T]) Refresh() uint64 {
	r.mu.Lock()
	r.refresh++
	n := r.refresh
	r.mu.Unlock()

	select {
	case r.kick <- struct{}{}:
	default:
	}
	return n
}

// Load fetches now and returns the resulting state. When a newer load was
// started meanwhile, this load's result is dropped and the newer state is
// returned instead.
func (r *Resource[T]) Load(ctx context.Context) Snapshot[T] {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.loading++
	r.mu.Unlock()

	value, err := r.fetch(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading--
	if gen != r.gen {
		r.logger.Debug("discarding stale response", zap.Uint64("generation", gen))
		return r.snapshotLocked()
	}
	if err != nil && ctx.Err() != nil {
		// abandoned by the caller; keep what we had
		return r.snapshotLocked()
	}
	if err != nil {
		var zero T
		r.value = zero
		r.present = false
		r.err = err
		return r.snapshotLocked()
	}
	r.value = value
	r.present = true
	r.err = nil
	return r.snapshotLocked()
}

func (r *Resource[T]) fetch(ctx context.Context) (T, error) {
	var zero T
	if r.creds != nil {
		if _, err := r.creds.Token(ctx); err != nil {
			if !errors.Is(err, appErrors.ErrMissingCredential) {
				r.logger.Warn("credential lookup failed", zap.Error(err))
			}
			return zero, err
		}
	}
	value, err := r.load(ctx)
	if err != nil {
		r.logger.Info("load failed", zap.Error(err))
		return zero, err
	}
	return value, nil
}

// Run loads once, then again whenever Refresh is called or changes fires,
// until ctx is done.
func (r *Resource[T]) Run(ctx context.Context, changes <-chan struct{}) error {
	r.Load(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.kick:
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
		}
		r.Load(ctx)
	}
}
