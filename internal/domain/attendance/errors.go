package attendance

import "errors"

// Attendance domain errors
var (
	ErrAlreadyCheckedIn  = errors.New("you have already checked in today")
	ErrNotCheckedIn      = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut = errors.New("you have already checked out")
	ErrInvalidAction     = errors.New("action must be check_in or check_out")
	ErrCheckOutBeforeIn  = errors.New("check-out time must be after check-in time")

	ErrAttendanceNotFound = errors.New("attendance record not found")
)
