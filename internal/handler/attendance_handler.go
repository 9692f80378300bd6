package handler

import (
	"errors"
	"image"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-dashboard/internal/capture"
	"github.com/noah-isme/attendance-dashboard/internal/models"
	"github.com/noah-isme/attendance-dashboard/internal/service"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
	"github.com/noah-isme/attendance-dashboard/pkg/response"
)

const defaultMaxPhotoBytes = 8 << 20

// SubmissionView is the answer to a check-in or check-out.
type SubmissionView struct {
	Result models.SubmissionResult `json:"result"`
	Today  service.TodayView       `json:"today"`
}

// AttendanceHandler serves today's attendance, submissions and the live clock.
type AttendanceHandler struct {
	clock         *service.LiveClock
	maxPhotoBytes int64
}

// NewAttendanceHandler constructs an attendance handler. A non-positive
// maxPhotoBytes uses 8 MiB.
func NewAttendanceHandler(clock *service.LiveClock, maxPhotoBytes int64) *AttendanceHandler {
	if maxPhotoBytes <= 0 {
		maxPhotoBytes = defaultMaxPhotoBytes
	}
	return &AttendanceHandler{clock: clock, maxPhotoBytes: maxPhotoBytes}
}

// Today godoc
// @Summary Today's attendance
// @Description Formatted check-in/check-out times and which action is available
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/pages/attendance [get]
func (h *AttendanceHandler) Today(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	view := ws.Attendance.Today(c.Request.Context())
	respond(c, http.StatusOK, gin.H{"today": view, "clock": h.clock.Now()}, nil)
}

// CheckIn godoc
// @Summary Check in
// @Tags Attendance
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Still frame"
// @Param latitude formData number true "Latitude"
// @Param longitude formData number true "Longitude"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /api/pages/attendance/checkin [post]
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	h.submit(c, models.ActionCheckIn)
}

// CheckOut godoc
// @Summary Check out
// @Tags Attendance
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Still frame"
// @Param latitude formData number true "Latitude"
// @Param longitude formData number true "Longitude"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /api/pages/attendance/checkout [post]
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	h.submit(c, models.ActionCheckOut)
}

func (h *AttendanceHandler) submit(c *gin.Context, action models.AttendanceAction) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxPhotoBytes)

	frame, err := h.frame(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	loc, err := formLocation(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, today, err := ws.Attendance.SubmitFrame(c.Request.Context(), action, frame, loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.WithAlert(c, http.StatusOK, SubmissionView{Result: result, Today: today}, models.SuccessAlert(result.Message))
}

func (h *AttendanceHandler) frame(c *gin.Context) (image.Image, error) {
	header, err := c.FormFile("photo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "photo is too large")
		}
		return nil, capture.ErrNoPhoto
	}
	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Failed to capture photo")
	}
	defer file.Close()
	return capture.DecodeFrame(file)
}

func formLocation(c *gin.Context) (models.Location, error) {
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(c.PostForm("latitude")), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(c.PostForm("longitude")), 64)
	if latErr != nil || lonErr != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return models.Location{}, capture.ErrNoLocation
	}
	return models.Location{Latitude: lat, Longitude: lon}, nil
}

// Clock godoc
// @Summary Live clock
// @Description Server-sent HH:MM:SS ticks until the client disconnects; once=true returns a single reading
// @Tags Attendance
// @Produce text/event-stream
// @Param once query bool false "Single JSON reading"
// @Success 200
// @Router /api/pages/attendance/clock [get]
func (h *AttendanceHandler) Clock(c *gin.Context) {
	if once, _ := strconv.ParseBool(c.Query("once")); once {
		respond(c, http.StatusOK, gin.H{"time": h.clock.Now()}, nil)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("X-Accel-Buffering", "no")
	_ = h.clock.Run(c.Request.Context(), func(now string) {
		c.SSEvent("tick", now)
		c.Writer.Flush()
	})
}
