package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
	"github.com/noah-isme/attendance-dashboard/pkg/logger"
	"github.com/noah-isme/attendance-dashboard/pkg/middleware/requestid"
)

// Backend paths.
const (
	PathRegister   = "/api/auth/register"
	PathUsers      = "/api/user/all-user"
	PathSetAccess  = "/api/user/set-access"
	PathToday      = "/api/attendance/data-harian"
	PathCheckIn    = "/api/attendance/checkin"
	PathCheckOut   = "/api/attendance/checkout"
	PathHistory    = "/api/history/datas"
	PathRekap      = "/api/rekap/all"
	maxErrorBodyKB = 64
)

// TokenSource yields the bearer credential for authenticated calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

// Token implements TokenSource.
func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken always returns the same credential.
func StaticToken(token string) TokenSource {
	return TokenFunc(func(context.Context) (string, error) {
		if token == "" {
			return "", appErrors.ErrMissingCredential
		}
		return token, nil
	})
}

// CallObserver receives the timing of every backend call.
type CallObserver interface {
	ObserveBackendCall(endpoint, outcome string, duration time.Duration)
}

// Client talks to the attendance REST backend.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenSource
	logger   *zap.Logger
	observer CallObserver
}

// Option customises a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver reports call timings, typically to the metrics service.
func WithObserver(o CallObserver) Option {
	return func(c *Client) { c.observer = o }
}

// New builds a client. A nil httpClient uses a client with a 15s timeout.
func New(baseURL string, httpClient *http.Client, tokens TokenSource, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	c := &Client{baseURL: baseURL, http: httpClient, tokens: tokens, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTokens returns a copy of the client using another credential source,
// for per-request sessions.
func (c *Client) WithTokens(tokens TokenSource) *Client {
	clone := *c
	clone.tokens = tokens
	return &clone
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	auth        bool
}

func jsonRequest(method, path string, payload interface{}, auth bool) (request, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return request{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode request")
	}
	return request{method: method, path: path, body: bytes.NewReader(raw), contentType: "application/json", auth: auth}, nil
}

// do performs the call and decodes a 2xx JSON body into dest when dest is
// not nil. Failures come back as typed errors: MISSING_CREDENTIAL before any
// network call, NETWORK_ERROR when the server was not reached, and
// SERVER_REJECTED for non-2xx answers.
func (c *Client) do(ctx context.Context, req request, dest interface{}) error {
	start := time.Now()
	outcome := "ok"
	defer func() {
		if c.observer != nil {
			c.observer.ObserveBackendCall(req.path, outcome, time.Since(start))
		}
	}()

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.url(req.path, req.query), req.body)
	if err != nil {
		outcome = "invalid"
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if id := requestid.FromContext(ctx); id != "" {
		httpReq.Header.Set(requestid.Header, id)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.auth {
		if c.tokens == nil {
			outcome = "no_credential"
			return appErrors.ErrMissingCredential
		}
		token, err := c.tokens.Token(ctx)
		if err != nil {
			outcome = "no_credential"
			return err
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	log := logger.ForContext(ctx, c.logger)
	resp, err := c.http.Do(httpReq)
	if err != nil {
		outcome = "network"
		log.Warn("backend unreachable", zap.String("path", req.path), zap.Error(err))
		if errors.Is(err, context.Canceled) {
			return appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, "request cancelled")
		}
		return appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, "Network error: unable to reach the attendance server.")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = fmt.Sprintf("%dxx", resp.StatusCode/100)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyKB<<10))
		rejected := Classify(resp.StatusCode, serverMessage(body))
		log.Info("backend rejected request",
			zap.String("path", req.path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", rejected.Message))
		return rejected
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil && !errors.Is(err, io.EOF) {
		outcome = "decode"
		return appErrors.Wrap(err, appErrors.ErrServerRejected.Code, http.StatusBadGateway, "unreadable response from the attendance server")
	}
	return nil
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Classify turns a non-2xx backend answer into a SERVER_REJECTED error whose
// message is fit for the user.
func Classify(status int, message string) *appErrors.Error {
	switch status {
	case http.StatusBadRequest:
		if message == "" {
			message = "Invalid data sent."
		}
		return appErrors.Rejected(status, fmt.Sprintf("Bad Request (400): %s", message))
	case http.StatusUnauthorized:
		return appErrors.Rejected(status, "Unauthorized (401): Please check your token.")
	case http.StatusInternalServerError:
		return appErrors.Rejected(status, "Server Error (500): Please try again later.")
	default:
		if message == "" {
			message = http.StatusText(status)
		}
		return appErrors.Rejected(status, fmt.Sprintf("Error %d: %s", status, message))
	}
}

func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
