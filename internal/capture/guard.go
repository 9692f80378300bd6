package capture

import (
	"github.com/noah-isme/attendance-dashboard/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

// Guard messages.
var (
	ErrAlreadyCheckedIn  = appErrors.Clone(appErrors.ErrConflict, "You have already checked in today.")
	ErrNotCheckedIn      = appErrors.Clone(appErrors.ErrConflict, "Check in before checking out.")
	ErrAlreadyCheckedOut = appErrors.Clone(appErrors.ErrConflict, "Attendance completed for today.")

	ErrNoPhoto    = appErrors.Clone(appErrors.ErrValidation, "Please capture a photo first.")
	ErrNoLocation = appErrors.Clone(appErrors.ErrValidation, "Location not available. Please try capturing again")
)

// CanCheckIn reports whether today's record still allows a check-in.
func CanCheckIn(today *models.TodayAttendance) bool {
	return !today.HasCheckedIn()
}

// CanCheckOut reports whether today's record allows a check-out.
func CanCheckOut(today *models.TodayAttendance) bool {
	return today.HasCheckedIn() && !today.HasCheckedOut()
}

// CheckAllowed returns the guard error blocking action, or nil.
func CheckAllowed(action models.AttendanceAction, today *models.TodayAttendance) error {
	switch action {
	case models.ActionCheckIn:
		if !CanCheckIn(today) {
			return ErrAlreadyCheckedIn
		}
	case models.ActionCheckOut:
		if today.HasCheckedOut() {
			return ErrAlreadyCheckedOut
		}
		if !today.HasCheckedIn() {
			return ErrNotCheckedIn
		}
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown attendance action")
	}
	return nil
}
