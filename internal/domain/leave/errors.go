package leave

import "errors"

var (
	ErrLeaveNotFound         = errors.New("leave request not found")
	ErrOverlappingLeave      = errors.New("leave request overlaps with an existing pending or approved request")
	ErrInsufficientBalance   = errors.New("insufficient leave balance")
	ErrLeaveAlreadyProcessed = errors.New("leave request has already been processed")
	ErrCannotCancel          = errors.New("leave request can no longer be cancelled")
	ErrStartDateInPast       = errors.New("start date cannot be in the past")
	ErrRejectionReason       = errors.New("rejection reason is required")
)
