package response

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync/atomic"

	"github.com/etms-hr/etms-backend-go/internal/domain/attendance"
	"github.com/etms-hr/etms-backend-go/internal/domain/auth"
	"github.com/etms-hr/etms-backend-go/internal/domain/department"
	"github.com/etms-hr/etms-backend-go/internal/domain/employee"
	"github.com/etms-hr/etms-backend-go/internal/domain/leave"
	"github.com/etms-hr/etms-backend-go/internal/domain/payroll"
	"github.com/etms-hr/etms-backend-go/internal/domain/performance"
	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/domain/task"
	"github.com/etms-hr/etms-backend-go/internal/domain/user"
	"github.com/etms-hr/etms-backend-go/internal/pkg/validator"
)

var development atomic.Bool

// SetDevelopment makes 500 responses carry the error and a stack trace.
func SetDevelopment(on bool) {
	development.Store(on)
}

type sentinel struct {
	err    error
	status int
}

// Business-rule errors whose own message is safe to return.
var sentinels = []sentinel{
	// Authentication
	{user.ErrUnauthenticated, http.StatusUnauthorized},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized},
	{auth.ErrInvalidToken, http.StatusUnauthorized},
	{auth.ErrTokenExpired, http.StatusUnauthorized},
	{auth.ErrTokenRevoked, http.StatusUnauthorized},
	{auth.ErrMissingToken, http.StatusUnauthorized},
	{auth.ErrInvalidAPIKey, http.StatusUnauthorized},

	// Authorization
	{user.ErrRoleNotAllowed, http.StatusForbidden},
	{user.ErrNoEmployeeProfile, http.StatusForbidden},
	{user.ErrUserInactive, http.StatusForbidden},
	{employee.ErrFieldNotEditable, http.StatusForbidden},

	// Not found
	{user.ErrUserNotFound, http.StatusNotFound},
	{employee.ErrEmployeeNotFound, http.StatusNotFound},
	{department.ErrDepartmentNotFound, http.StatusNotFound},
	{attendance.ErrAttendanceNotFound, http.StatusNotFound},
	{leave.ErrLeaveNotFound, http.StatusNotFound},
	{task.ErrTaskNotFound, http.StatusNotFound},
	{performance.ErrReviewNotFound, http.StatusNotFound},
	{payroll.ErrPayrollNotFound, http.StatusNotFound},

	// Conflict
	{user.ErrUserEmailExists, http.StatusConflict},
	{employee.ErrEmployeeCodeExists, http.StatusConflict},
	{employee.ErrEmailExists, http.StatusConflict},
	{employee.ErrAlreadyTerminated, http.StatusConflict},
	{department.ErrDepartmentNameExists, http.StatusConflict},
	{department.ErrDepartmentHasMembers, http.StatusConflict},
	{leave.ErrOverlappingLeave, http.StatusConflict},
	{leave.ErrLeaveAlreadyProcessed, http.StatusConflict},
	{payroll.ErrPayrollLocked, http.StatusConflict},

	// Business rules
	{user.ErrInvalidRole, http.StatusBadRequest},
	{employee.ErrManagerNotFound, http.StatusBadRequest},
	{employee.ErrSelfManager, http.StatusBadRequest},
	{employee.ErrManagerCycle, http.StatusBadRequest},
	{department.ErrHeadNotFound, http.StatusBadRequest},
	{attendance.ErrAlreadyCheckedIn, http.StatusBadRequest},
	{attendance.ErrNotCheckedIn, http.StatusBadRequest},
	{attendance.ErrAlreadyCheckedOut, http.StatusBadRequest},
	{attendance.ErrInvalidAction, http.StatusBadRequest},
	{attendance.ErrCheckOutBeforeIn, http.StatusBadRequest},
	{leave.ErrInsufficientBalance, http.StatusBadRequest},
	{leave.ErrCannotCancel, http.StatusBadRequest},
	{leave.ErrStartDateInPast, http.StatusBadRequest},
	{leave.ErrRejectionReason, http.StatusBadRequest},
	{task.ErrInvalidTransition, http.StatusBadRequest},
	{task.ErrAssigneeNotFound, http.StatusBadRequest},
	{task.ErrDueBeforeStart, http.StatusBadRequest},
	{performance.ErrInvalidTransition, http.StatusBadRequest},
	{performance.ErrNotEditable, http.StatusBadRequest},
	{performance.ErrInvalidAction, http.StatusBadRequest},
	{payroll.ErrInvalidTransition, http.StatusBadRequest},
	{payroll.ErrNoActiveEmployees, http.StatusBadRequest},
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var denied *policy.DeniedError
	if errors.As(err, &denied) {
		Forbidden(w, denied.Reason)
		return
	}

	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			writeJSON(w, s.status, Response{Success: false, Message: s.err.Error()})
			return
		}
	}

	slog.Error("Unhandled error", "error", err)
	ServerError(w, err, nil)
}

// ServerError writes a generic 500. stack defaults to the current goroutine.
func ServerError(w http.ResponseWriter, err error, stack []byte) {
	body := Response{
		Success: false,
		Message: "An unexpected error occurred",
	}
	if development.Load() {
		if err != nil {
			body.Error = err.Error()
		}
		if stack == nil {
			stack = debug.Stack()
		}
		body.Stack = string(stack)
	}
	writeJSON(w, http.StatusInternalServerError, body)
}
