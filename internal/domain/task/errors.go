package task

import "errors"

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTransition = errors.New("invalid task status transition")
	ErrAssigneeNotFound  = errors.New("one or more assignees do not exist")
	ErrDueBeforeStart    = errors.New("due date must be after start date")
)
