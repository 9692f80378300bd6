package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

// Register creates an account. It needs no credential.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) error {
	r, err := jsonRequest(http.MethodPost, PathRegister, req, false)
	if err != nil {
		return err
	}
	return c.do(ctx, r, nil)
}

// ListUsers returns every account with its role.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, request{method: http.MethodGet, path: PathUsers, auth: true}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetAccess assigns a role and returns the updated user as the backend sees it.
func (c *Client) SetAccess(ctx context.Context, req models.SetAccessRequest) (models.SetAccessResponse, error) {
	var out models.SetAccessResponse
	r, err := jsonRequest(http.MethodPost, PathSetAccess, req, true)
	if err != nil {
		return out, err
	}
	if err := c.do(ctx, r, &out); err != nil {
		return out, err
	}
	return out, nil
}

// TodayAttendance returns the caller's record for today, or nil when there is
// none. The backend answers with an object, a one-element array or null.
func (c *Client) TodayAttendance(ctx context.Context) (*models.TodayAttendance, error) {
	var raw json.RawMessage
	if err := c.do(ctx, request{method: http.MethodGet, path: PathToday, auth: true}, &raw); err != nil {
		return nil, err
	}
	return decodeToday(raw)
}

func decodeToday(raw json.RawMessage) (*models.TodayAttendance, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '[' {
		var list []models.TodayAttendance
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrServerRejected.Code, http.StatusBadGateway, "unreadable attendance record")
		}
		if len(list) == 0 {
			return nil, nil
		}
		return &list[0], nil
	}
	var today models.TodayAttendance
	if err := json.Unmarshal(raw, &today); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrServerRejected.Code, http.StatusBadGateway, "unreadable attendance record")
	}
	if today == (models.TodayAttendance{}) {
		return nil, nil
	}
	return &today, nil
}

// Submit posts a check-in or check-out as multipart form data.
func (c *Client) Submit(ctx context.Context, sub models.Submission) (models.SubmissionResult, error) {
	var out models.SubmissionResult
	path := PathCheckIn
	if sub.Action == models.ActionCheckOut {
		path = PathCheckOut
	}

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	part, err := form.CreateFormFile("photo", "photo.jpg")
	if err != nil {
		return out, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode photo")
	}
	if _, err := part.Write(sub.Photo); err != nil {
		return out, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode photo")
	}
	_ = form.WriteField("latitude", strconv.FormatFloat(sub.Location.Latitude, 'f', -1, 64))
	_ = form.WriteField("longitude", strconv.FormatFloat(sub.Location.Longitude, 'f', -1, 64))
	if err := form.Close(); err != nil {
		return out, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode form")
	}

	r := request{method: http.MethodPost, path: path, body: body, contentType: form.FormDataContentType(), auth: true}
	if err := c.do(ctx, r, &out); err != nil {
		return out, err
	}
	if out.Message == "" {
		out.Message = fmt.Sprintf("%s successful!", sub.Action.Label())
	}
	return out, nil
}

// HistoryDate renders the first day of month as the backend's DD/MM/YYYY.
func HistoryDate(month time.Time) string {
	return fmt.Sprintf("01/%02d/%04d", int(month.Month()), month.Year())
}

// History returns the caller's records for the month containing month.
func (c *Client) History(ctx context.Context, month time.Time) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	query := url.Values{"date": []string{HistoryDate(month)}}
	if err := c.do(ctx, request{method: http.MethodGet, path: PathHistory, query: query, auth: true}, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Rekap returns the aggregate report across all users.
func (c *Client) Rekap(ctx context.Context) ([]models.RekapEntry, error) {
	var entries []models.RekapEntry
	if err := c.do(ctx, request{method: http.MethodGet, path: PathRekap, auth: true}, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
