package payroll

import "errors"

var (
	ErrPayrollNotFound   = errors.New("payroll record not found")
	ErrInvalidTransition = errors.New("payroll status can only move draft -> processed -> paid")
	ErrPayrollLocked     = errors.New("payroll for this period is already processed")
	ErrNoActiveEmployees = errors.New("no active employees to generate payroll for")
)
