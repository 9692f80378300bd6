package table

import (
	"fmt"
	"time"

	"github.com/noah-isme/attendance-dashboard/internal/models"
)

// UserColumns is the user access table.
func UserColumns() Schema[models.User] {
	return NewSchema(
		Number("id", func(u models.User) float64 { return float64(u.ID) }),
		Text("username", func(u models.User) string { return u.Username }),
		Text("name", func(u models.User) string { return u.Name }),
		Text("email", func(u models.User) string { return u.Email }),
		Enum("role", models.User.RoleName),
	)
}

// HistoryColumns is the monthly attendance history table. Clock times are
// rendered in loc.
func HistoryColumns(loc *time.Location) Schema[models.AttendanceRecord] {
	if loc == nil {
		loc = time.Local
	}
	return NewSchema(
		Instant("date",
			func(r models.AttendanceRecord) string { return r.Date },
			func(r models.AttendanceRecord) (time.Time, bool) { return models.ParseTimestamp(r.Date) }),
		Instant("checkIn",
			func(r models.AttendanceRecord) string { return ClockTime(r.CheckIn, loc) },
			func(r models.AttendanceRecord) (time.Time, bool) { return models.ParseTimestamp(r.CheckIn) }),
		Instant("checkOut",
			func(r models.AttendanceRecord) string { return ClockTime(deref(r.CheckOut), loc) },
			func(r models.AttendanceRecord) (time.Time, bool) { return models.ParseTimestamp(deref(r.CheckOut)) }),
		Text("location", func(r models.AttendanceRecord) string {
			return fmt.Sprintf("%s, %s", FormatNumber(r.LatitudeIn), FormatNumber(r.LongitudeIn))
		}),
		Enum("status", func(r models.AttendanceRecord) string { return r.Status }),
		Span("duration",
			func(r models.AttendanceRecord) string { return FormatWorked(r.CheckIn, deref(r.CheckOut)) },
			func(r models.AttendanceRecord) (time.Duration, bool) { return Worked(r.CheckIn, deref(r.CheckOut)) }),
	).
		WithAlias("clockIn", "checkIn").
		WithAlias("clockOut", "checkOut").
		WithAlias("time", "duration")
}

// RekapColumns is the aggregate attendance report table.
func RekapColumns() Schema[models.RekapEntry] {
	return NewSchema(
		Number("id", func(r models.RekapEntry) float64 { return float64(r.ID) }),
		Text("name", func(r models.RekapEntry) string { return r.Name }),
		Instant("date",
			func(r models.RekapEntry) string { return r.Date },
			func(r models.RekapEntry) (time.Time, bool) { return models.ParseTimestamp(r.Date) }),
		Enum("status", func(r models.RekapEntry) string { return r.Status }),
		Number("hours", func(r models.RekapEntry) float64 { return r.Hours }),
	)
}

// ClockTime renders an ISO timestamp as HH:MM, empty when absent or invalid.
func ClockTime(raw string, loc *time.Location) string {
	if raw == "" {
		return ""
	}
	ts, ok := models.ParseTimestamp(raw)
	if !ok {
		return ""
	}
	return ts.In(loc).Format("15:04")
}

// Worked is checkout minus checkin; ok is false while the shift is open.
func Worked(checkIn, checkOut string) (time.Duration, bool) {
	if checkOut == "" {
		return 0, false
	}
	in, okIn := models.ParseTimestamp(checkIn)
	out, okOut := models.ParseTimestamp(checkOut)
	if !okIn || !okOut {
		return 0, false
	}
	return out.Sub(in), true
}

// FormatWorked renders the worked time as "8h 5m", empty while the shift is open.
func FormatWorked(checkIn, checkOut string) string {
	d, ok := Worked(checkIn, checkOut)
	if !ok {
		return ""
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
