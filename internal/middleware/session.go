package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-dashboard/internal/service"
	"github.com/noah-isme/attendance-dashboard/internal/session"
	"github.com/noah-isme/attendance-dashboard/pkg/response"
)

const (
	contextWorkspaceKey = "workspace"
	contextStateKey     = "sessionState"
)

// StorageFactory returns the storage of one dashboard session.
type StorageFactory func(sessionID string) session.Storage

// WorkspaceFactory binds the shared services to one session.
type WorkspaceFactory func(manager *session.Manager, store session.Storage) *service.Workspace

// SessionOptions configures the session cookie.
type SessionOptions struct {
	CookieName string
	TokenKey   string
	TTL        time.Duration
	SecureOnly bool
}

// Session resolves the caller's session before any handler runs. Browser
// callers are tracked by a cookie holding a random session id; API callers
// may instead send the backend token as a bearer header, which lives only for
// the request.
func Session(opts SessionOptions, storage StorageFactory, workspace WorkspaceFactory, metrics *service.MetricsService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CookieName == "" {
		opts.CookieName = "attendance_session"
	}

	return func(c *gin.Context) {
		store, err := resolveStorage(c, opts, storage)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		manager := session.NewManager(store, opts.TokenKey, logger)
		state, err := manager.Evaluate(c.Request.Context())
		if err != nil {
			logger.Warn("session evaluation failed", zap.Error(err))
			response.Error(c, err)
			c.Abort()
			return
		}
		metrics.RecordSessionLookup(state.Status == session.StatusAuthenticated)

		c.Set(contextStateKey, state)
		c.Set(contextWorkspaceKey, workspace(manager, store))
		c.Next()
	}
}

func resolveStorage(c *gin.Context, opts SessionOptions, storage StorageFactory) (session.Storage, error) {
	if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
		store := session.NewMemoryStorage()
		key := opts.TokenKey
		if key == "" {
			key = session.DefaultTokenKey
		}
		if err := store.Set(c.Request.Context(), key, token); err != nil {
			return nil, err
		}
		return store, nil
	}

	id, err := c.Cookie(opts.CookieName)
	if _, parseErr := uuid.Parse(id); err != nil || parseErr != nil {
		id = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(opts.CookieName, id, int(opts.TTL.Seconds()), "/", "", opts.SecureOnly, true)
	}
	return storage(id), nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// WorkspaceFrom returns the session-bound services stored by Session.
func WorkspaceFrom(c *gin.Context) *service.Workspace {
	value, exists := c.Get(contextWorkspaceKey)
	if !exists {
		return nil
	}
	ws, ok := value.(*service.Workspace)
	if !ok {
		return nil
	}
	return ws
}

// StateFrom returns the session state evaluated for this request.
func StateFrom(c *gin.Context) session.State {
	value, exists := c.Get(contextStateKey)
	if !exists {
		return session.State{Status: session.StatusUnauthenticated}
	}
	state, ok := value.(session.State)
	if !ok {
		return session.State{Status: session.StatusUnauthenticated}
	}
	return state
}
