package performance

import "errors"

var (
	ErrReviewNotFound    = errors.New("performance review not found")
	ErrInvalidTransition = errors.New("invalid review status transition")
	ErrNotEditable       = errors.New("only draft reviews can be edited")
	ErrInvalidAction     = errors.New("action must be submit, approve or acknowledge")
)
