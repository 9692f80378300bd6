package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
	"github.com/noah-isme/attendance-dashboard/pkg/middleware/requestid"
)

type recordedCall struct {
	endpoint string
	outcome  string
}

type observerStub struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (o *observerStub) ObserveBackendCall(endpoint, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, recordedCall{endpoint: endpoint, outcome: outcome})
}

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) (*Client, *observerStub) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	obs := &observerStub{}
	return New(srv.URL, srv.Client(), StaticToken(token), WithObserver(obs)), obs
}

func TestListUsersSendsBearer(t *testing.T) {
	c, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathUsers, r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[{"id":1,"username":"ana","name":"Ana","email":"ana@x.io","role":null},{"id":2,"username":"bo","name":"Bo","email":"bo@x.io","role":"ADMIN"}]`)
	}, "tok")

	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Nil(t, users[0].Role)
	assert.Equal(t, "ADMIN", users[1].RoleName())
	assert.Equal(t, []recordedCall{{endpoint: PathUsers, outcome: "ok"}}, obs.calls)
}

func TestMissingTokenMakesNoCall(t *testing.T) {
	called := false
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, "")

	_, err := c.Rekap(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrMissingCredential)
	assert.False(t, called)
}

func TestRegisterIsAnonymous(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ana", body["username"])
		_, hasRetype := body["RetypePassword"]
		assert.False(t, hasRetype)
		w.WriteHeader(http.StatusCreated)
	}, "")

	err := c.Register(context.Background(), models.RegisterRequest{
		Username: "ana", Name: "Ana", Email: "ana@x.io", Password: "secret1", RetypePassword: "secret1",
	})
	require.NoError(t, err)
}

func TestClassifyStatuses(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		message  string
		httpCode int
	}{
		{"bad request with message", http.StatusBadRequest, `{"message":"Already checked in"}`, "Bad Request (400): Already checked in", http.StatusBadRequest},
		{"bad request without message", http.StatusBadRequest, ``, "Bad Request (400): Invalid data sent.", http.StatusBadRequest},
		{"unauthorized", http.StatusUnauthorized, `{"message":"expired"}`, "Unauthorized (401): Please check your token.", http.StatusUnauthorized},
		{"server error", http.StatusInternalServerError, `{"message":"db down"}`, "Server Error (500): Please try again later.", http.StatusBadGateway},
		{"other", http.StatusConflict, `{"error":"duplicate"}`, "Error 409: duplicate", http.StatusConflict},
		{"other without message", http.StatusServiceUnavailable, `oops`, "Error 503: Service Unavailable", http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}, "tok")

			_, err := c.Submit(context.Background(), models.Submission{Action: models.ActionCheckIn, Photo: []byte{1}})
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrServerRejected.Code, appErr.Code)
			assert.Equal(t, tc.message, appErr.Message)
			assert.Equal(t, tc.status, appErr.Upstream)
			assert.Equal(t, tc.httpCode, appErr.Status)
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	obs := &observerStub{}
	c := New(url, nil, StaticToken("tok"), WithObserver(obs))
	_, err := c.ListUsers(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNetwork.Code))
	assert.Equal(t, "network", obs.calls[0].outcome)
}

func TestSubmitMultipart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathCheckOut, r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "-6.2", r.FormValue("latitude"))
		assert.Equal(t, "106.816666", r.FormValue("longitude"))
		file, header, err := r.FormFile("photo")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "photo.jpg", header.Filename)
		raw, _ := io.ReadAll(file)
		assert.Equal(t, []byte{0xff, 0xd8, 0xff}, raw)
		_, _ = io.WriteString(w, `{}`)
	}, "tok")

	res, err := c.Submit(context.Background(), models.Submission{
		Action:   models.ActionCheckOut,
		Photo:    []byte{0xff, 0xd8, 0xff},
		Location: models.Location{Latitude: -6.2, Longitude: 106.816666},
	})
	require.NoError(t, err)
	assert.Equal(t, "Check-out successful!", res.Message)
}

func TestTodayAttendanceShapes(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		checkIn string
		isNil   bool
	}{
		{"object", `{"checkIn":"2025-01-06T08:00:00Z","status":"present"}`, "2025-01-06T08:00:00Z", false},
		{"array", `[{"checkIn":"2025-01-06T08:05:00Z"}]`, "2025-01-06T08:05:00Z", false},
		{"empty array", `[]`, "", true},
		{"null", `null`, "", true},
		{"empty object", `{}`, "", true},
		{"empty body", ``, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tc.body)
			}, "tok")

			today, err := c.TodayAttendance(context.Background())
			require.NoError(t, err)
			if tc.isNil {
				assert.Nil(t, today)
				return
			}
			require.NotNil(t, today)
			assert.True(t, today.HasCheckedIn())
			assert.Equal(t, tc.checkIn, *today.CheckIn)
		})
	}
}

func TestHistoryQueriesFirstOfMonth(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "01/12/2025", r.URL.Query().Get("date"))
		_, _ = io.WriteString(w, `[{"id":4,"checkIn":"2025-12-01T08:00:00Z","checkOut":null,"date":"2025-12-01","status":"present"}]`)
	}, "tok")

	month, err := models.ParseMonth("2025-12")
	require.NoError(t, err)
	records, err := c.History(context.Background(), month)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].CheckOut)
}

func TestSetAccessDecodesUser(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req models.SetAccessRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, models.RoleAdmin, req.Role)
		_, _ = io.WriteString(w, `{"message":"ok","user":{"id":7,"username":"cy","role":"ADMIN"}}`)
	}, "tok")

	res, err := c.SetAccess(context.Background(), models.SetAccessRequest{ID: 7, Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.User.ID)
	assert.Equal(t, "ADMIN", res.User.RoleName())
}

func TestWithTokensDoesNotMutateOriginal(t *testing.T) {
	base := New("http://example.invalid", nil, StaticToken("a"))
	other := base.WithTokens(StaticToken("b"))

	tokA, _ := base.tokens.Token(context.Background())
	tokB, _ := other.tokens.Token(context.Background())
	assert.Equal(t, "a", tokA)
	assert.Equal(t, "b", tokB)
}

func TestRequestIDForwarded(t *testing.T) {
	var seen []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get(requestid.Header))
		_, _ = io.WriteString(w, `[]`)
	}, "tok")

	_, err := c.Rekap(requestid.NewContext(context.Background(), "req-42"))
	require.NoError(t, err)
	_, err = c.Rekap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"req-42", ""}, seen)
}
