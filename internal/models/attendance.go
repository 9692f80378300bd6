package models

import "time"

// TodayAttendance is the signed-in user's check-in/check-out for the current
// day. Every field is optional because the backend returns whatever exists.
type TodayAttendance struct {
	ID           *int64   `json:"id,omitempty"`
	CheckIn      *string  `json:"checkIn,omitempty"`
	CheckOut     *string  `json:"checkOut,omitempty"`
	Date         *string  `json:"date,omitempty"`
	LatitudeIn   *float64 `json:"latitude_in,omitempty"`
	LongitudeIn  *float64 `json:"longitude_in,omitempty"`
	LatitudeOut  *float64 `json:"latitude_out,omitempty"`
	LongitudeOut *float64 `json:"longitude_out,omitempty"`
	PhotoIn      *string  `json:"photo_in,omitempty"`
	PhotoOut     *string  `json:"photo_out,omitempty"`
	Status       *string  `json:"status,omitempty"`
}

// HasCheckedIn reports whether today's check-in exists.
func (t *TodayAttendance) HasCheckedIn() bool {
	return t != nil && t.CheckIn != nil && *t.CheckIn != ""
}

// HasCheckedOut reports whether today's check-out exists.
func (t *TodayAttendance) HasCheckedOut() bool {
	return t != nil && t.CheckOut != nil && *t.CheckOut != ""
}

// AttendanceRecord is one row of the monthly attendance history.
type AttendanceRecord struct {
	ID           int64   `json:"id"`
	UserID       int64   `json:"userId"`
	CheckIn      string  `json:"checkIn"`
	CheckOut     *string `json:"checkOut"`
	Date         string  `json:"date"`
	LatitudeIn   float64 `json:"latitude_in"`
	LongitudeIn  float64 `json:"longitude_in"`
	LatitudeOut  float64 `json:"latitude_out"`
	LongitudeOut float64 `json:"longitude_out"`
	PhotoURLIn   string  `json:"photoUrl_in"`
	PhotoURLOut  string  `json:"photoUrl_out"`
	Status       string  `json:"status"`
}

// Location is a device position.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AttendanceAction distinguishes the two submissions.
type AttendanceAction string

const (
	ActionCheckIn  AttendanceAction = "checkin"
	ActionCheckOut AttendanceAction = "checkout"
)

// Label returns the human label used in alerts.
func (a AttendanceAction) Label() string {
	if a == ActionCheckOut {
		return "Check-out"
	}
	return "Check-in"
}

// Submission is the payload posted to the check-in/check-out endpoints.
type Submission struct {
	Action   AttendanceAction
	Photo    []byte
	Location Location
}

// SubmissionResult is the backend acknowledgement.
type SubmissionResult struct {
	Message string `json:"message"`
}

// RekapEntry is one row of the aggregate attendance report.
type RekapEntry struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Date   string  `json:"date"`
	Status string  `json:"status"`
	Hours  float64 `json:"hours"`
}

// ParseTimestamp parses the timestamp formats the backend emits.
func ParseTimestamp(raw string) (time.Time, bool) {
	layouts := []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// MonthLayout is the month selector format.
const MonthLayout = "2006-01"

// ParseMonth parses a YYYY-MM month selector.
func ParseMonth(raw string) (time.Time, error) {
	return time.Parse(MonthLayout, raw)
}
