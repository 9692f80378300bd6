package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

// DefaultTokenKey is the storage key of the credential token.
const DefaultTokenKey = "token"

const userDataKey = "userData"

// Status of the session gate.
type Status string

const (
	StatusUnauthenticated Status = "unauthenticated"
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
)

// State is the gate's current view of the session.
type State struct {
	Status   Status           `json:"status"`
	Identity *models.Identity `json:"identity,omitempty"`
}

// Role returns the authenticated role, empty otherwise.
func (s State) Role() models.Role {
	if s.Status != StatusAuthenticated || s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}

// Manager is the explicit session state store. It owns the stored token,
// decodes it into an identity and notifies subscribers whenever the token
// changes. Gating here is a UX convenience only and is never a security
// boundary; the backend authorizes each request on its own.
type Manager struct {
	storage  Storage
	tokenKey string
	logger   *zap.Logger

	mu        sync.Mutex
	state     State
	lastToken string
	subs      map[int]chan struct{}
	nextSub   int
}

// NewManager wires a manager over storage. An empty tokenKey uses DefaultTokenKey.
func NewManager(storage Storage, tokenKey string, logger *zap.Logger) *Manager {
	if tokenKey == "" {
		tokenKey = DefaultTokenKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		storage:  storage,
		tokenKey: tokenKey,
		logger:   logger,
		state:    State{Status: StatusUnauthenticated},
		subs:     map[int]chan struct{}{},
	}
}

// Evaluate reads the stored token and drives the gate:
// no token leaves it Unauthenticated; a token moves it to Loading and then to
// Authenticated when the claims decode with a role. A token that fails to
// decode is treated as corrupt and removed.
func (m *Manager) Evaluate(ctx context.Context) (State, error) {
	token, ok, err := m.storage.Get(ctx, m.tokenKey)
	if err != nil {
		return m.Current(), appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read session")
	}
	if !ok || token == "" {
		m.transition(State{Status: StatusUnauthenticated}, "")
		return m.Current(), nil
	}

	m.transition(State{Status: StatusLoading}, token)

	identity, err := DecodeClaims(token)
	if err != nil {
		m.logger.Warn("discarding corrupt session token", zap.Error(err))
		if rmErr := m.storage.Remove(ctx, m.tokenKey); rmErr != nil {
			m.logger.Error("failed to remove corrupt token", zap.Error(rmErr))
		}
		m.transition(State{Status: StatusUnauthenticated}, "")
		return m.Current(), nil
	}

	m.transition(State{Status: StatusAuthenticated, Identity: &identity}, token)
	return m.Current(), nil
}

// SignIn stores a token issued by the backend and evaluates it. A token
// without a usable role is rejected and not kept.
func (m *Manager) SignIn(ctx context.Context, token string) (models.Identity, error) {
	identity, err := DecodeClaims(token)
	if err != nil {
		return models.Identity{}, err
	}
	if err := m.storage.Set(ctx, m.tokenKey, token); err != nil {
		return models.Identity{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store session")
	}
	if raw, err := json.Marshal(identity); err == nil {
		if err := m.storage.Set(ctx, userDataKey, string(raw)); err != nil {
			m.logger.Warn("failed to cache user data", zap.Error(err))
		}
	}
	m.transition(State{Status: StatusAuthenticated, Identity: &identity}, token)
	return identity, nil
}

// SignOut clears the token and the cached user data.
func (m *Manager) SignOut(ctx context.Context) error {
	errUser := m.storage.Remove(ctx, userDataKey)
	errToken := m.storage.Remove(ctx, m.tokenKey)
	m.transition(State{Status: StatusUnauthenticated}, "")
	if err := errors.Join(errUser, errToken); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session")
	}
	return nil
}

// Token returns the stored credential or a MISSING_CREDENTIAL error.
func (m *Manager) Token(ctx context.Context) (string, error) {
	token, ok, err := m.storage.Get(ctx, m.tokenKey)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read session")
	}
	if !ok || token == "" {
		return "", appErrors.ErrMissingCredential
	}
	return token, nil
}

// Current returns the last evaluated state.
func (m *Manager) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.state
	if s.Identity != nil {
		id := *s.Identity
		s.Identity = &id
	}
	return s
}

// HasRole reports whether the authenticated identity has role.
func (m *Manager) HasRole(role models.Role) bool {
	return m.Current().Role() == role
}

// Subscribe returns a channel signalled after every token change. Signals
// coalesce: a slow reader sees one pending signal, then reads fresh state.
func (m *Manager) Subscribe() (<-chan struct{}, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	ch := make(chan struct{}, 1)
	m.subs[id] = ch
	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(ch)
		}
	}
}

// Watch re-evaluates the stored token every interval until ctx ends, so a
// token written by another process (a second CLI invocation) is noticed.
// In-process sign-in and sign-out notify immediately and need no watch.
func (m *Manager) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Evaluate(ctx); err != nil && ctx.Err() == nil {
				m.logger.Warn("session re-evaluation failed", zap.Error(err))
			}
		}
	}
}

func (m *Manager) transition(next State, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = next
	if token == m.lastToken {
		return
	}
	m.lastToken = token
	for _, ch := range m.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
