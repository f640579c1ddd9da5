// Package policy evaluates role-based access to records and builds the
// per-caller visibility scope.
package policy

import (
	"errors"

	"github.com/etms-hr/etms-backend-go/internal/domain/user"
)

type Entity string

const (
	EntityEmployee   Entity = "employee"
	EntityAttendance Entity = "attendance"
	EntityLeave      Entity = "leave"
	EntityTask       Entity = "task"
	EntityReview     Entity = "performance_review"
	EntityDepartment Entity = "department"
	EntityPayroll    Entity = "payroll"
)

type Action string

const (
	ActionView        Action = "view"
	ActionCreate      Action = "create"
	ActionUpdate      Action = "update"
	ActionDelete      Action = "delete"
	ActionApprove     Action = "approve"
	ActionReject      Action = "reject"
	ActionCancel      Action = "cancel"
	ActionSubmit      Action = "submit"
	ActionAcknowledge Action = "acknowledge"
	ActionComment     Action = "comment"
	ActionProgress    Action = "progress" // assignee-level task update
	ActionExport      Action = "export"
	ActionGenerate    Action = "generate"
)

// Resource describes the record an action targets. Zero fields are unknown
// or not applicable.
type Resource struct {
	OwnerEmployeeID string   // employee the record belongs to; the assigner for tasks
	CreatorUserID   string   // task assigner or review author
	AssigneeIDs     []string // task assignees
}

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

var ErrForbidden = errors.New("forbidden")

// DeniedError carries the reason of a denied decision.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return e.Reason
}

func (e *DeniedError) Unwrap() error {
	return ErrForbidden
}

// Err converts a denial into an error wrapping ErrForbidden.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Reason: d.Reason}
}

// Check is Evaluate followed by Err.
func Check(a Actor, entity Entity, action Action, res Resource) error {
	return Evaluate(a, entity, action, res).Err()
}

// Evaluate returns whether actor may perform action on a record of entity.
func Evaluate(a Actor, entity Entity, action Action, res Resource) Decision {
	switch entity {
	case EntityEmployee:
		return evaluateEmployee(a, action, res)
	case EntityAttendance:
		return evaluateAttendance(a, action, res)
	case EntityLeave:
		return evaluateLeave(a, action, res)
	case EntityTask:
		return evaluateTask(a, action, res)
	case EntityReview:
		return evaluateReview(a, action, res)
	case EntityDepartment:
		return evaluateDepartment(a, action)
	case EntityPayroll:
		return evaluatePayroll(a, action, res)
	}
	return deny("unknown resource type")
}

func (a Actor) privileged() bool {
	return a.Role.Privileged()
}

func (a Actor) isSelf(employeeID string) bool {
	return a.EmployeeID != "" && a.EmployeeID == employeeID
}

// canSee covers self, direct reports for managers and everything for
// privileged roles.
func (a Actor) canSee(employeeID string) bool {
	return a.privileged() || a.Scope.Allows(employeeID)
}

func evaluateEmployee(a Actor, action Action, res Resource) Decision {
	switch action {
	case ActionView:
		if a.canSee(res.OwnerEmployeeID) {
			return allow()
		}
		return deny("you can only view your own profile or your direct reports")
	case ActionCreate:
		if a.privileged() {
			return allow()
		}
		return deny("only admin or hr_manager can create employees")
	case ActionUpdate:
		if a.privileged() || a.isSelf(res.OwnerEmployeeID) {
			return allow()
		}
		return deny("you can only update your own profile")
	case ActionDelete:
		if !a.privileged() {
			return deny("only admin or hr_manager can delete employees")
		}
		if a.isSelf(res.OwnerEmployeeID) {
			return deny("you cannot delete your own employee record")
		}
		return allow()
	}
	return deny("action not supported on employees")
}

func evaluateAttendance(a Actor, action Action, res Resource) Decision {
	switch action {
	case ActionView:
		if a.canSee(res.OwnerEmployeeID) {
			return allow()
		}
		return deny("you can only view attendance within your scope")
	case ActionCreate:
		if a.EmployeeID == "" {
			return deny("an employee profile is required to record attendance")
		}
		if a.isSelf(res.OwnerEmployeeID) {
			return allow()
		}
		return deny("you can only record your own attendance")
	case ActionUpdate:
		if a.privileged() {
			return allow()
		}
		return deny("only admin or hr_manager can correct attendance")
	case ActionExport:
		if a.privileged() || a.Role == user.RoleManager {
			return allow()
		}
		return deny("only managers and above can export attendance")
	}
	return deny("action not supported on attendance")
}

func evaluateLeave(a Actor, action Action, res Resource) Decision {
	switch action {
	case ActionView:
		if a.canSee(res.OwnerEmployeeID) {
			return allow()
		}
		return deny("you can only view leave requests within your scope")
	case ActionCreate:
		if a.isSelf(res.OwnerEmployeeID) || a.privileged() {
			return allow()
		}
		return deny("you can only request leave for yourself")
	case ActionApprove, ActionReject:
		if a.isSelf(res.OwnerEmployeeID) {
			return deny("you cannot approve or reject your own leave request")
		}
		if a.privileged() || (a.Role == user.RoleManager && a.Scope.Allows(res.OwnerEmployeeID)) {
			return allow()
		}
		return deny("only admin, hr_manager or the employee's manager can decide this leave request")
	case ActionCancel:
		if a.isSelf(res.OwnerEmployeeID) || a.privileged() {
			return allow()
		}
		return deny("only the requester or hr can cancel a leave request")
	}
	return deny("action not supported on leave requests")
}

func evaluateTask(a Actor, action Action, res Resource) Decision {
	creator := res.CreatorUserID != "" && res.CreatorUserID == a.UserID
	assignee := a.EmployeeID != "" && containsID(res.AssigneeIDs, a.EmployeeID)

	switch action {
	case ActionView, ActionComment:
		if a.privileged() || creator || assignee || a.Scope.AllowsAny(res.AssigneeIDs) ||
			(res.OwnerEmployeeID != "" && a.Scope.Allows(res.OwnerEmployeeID)) {
			return allow()
		}
		return deny("you are not involved in this task")
	case ActionCreate:
		if a.privileged() {
			return allow()
		}
		if a.Role != user.RoleManager {
			return deny("only admin, hr_manager or manager can create tasks")
		}
		if !a.Scope.AllowsAll(res.AssigneeIDs) {
			return deny("managers can only assign tasks to themselves or their direct reports")
		}
		return allow()
	case ActionUpdate:
		if a.privileged() || creator {
			return allow()
		}
		if assignee {
			return deny("assignees can only update status and actual hours")
		}
		return deny("only the task assigner can update this task")
	case ActionProgress:
		if a.privileged() || creator || assignee {
			return allow()
		}
		return deny("only assignees or the assigner can update task progress")
	case ActionDelete:
		if a.privileged() || creator {
			return allow()
		}
		return deny("only the task assigner can delete this task")
	}
	return deny("action not supported on tasks")
}

func evaluateReview(a Actor, action Action, res Resource) Decision {
	reviewer := res.CreatorUserID != "" && res.CreatorUserID == a.UserID

	switch action {
	case ActionView:
		if a.canSee(res.OwnerEmployeeID) || reviewer {
			return allow()
		}
		return deny("you can only view reviews within your scope")
	case ActionCreate:
		if a.isSelf(res.OwnerEmployeeID) {
			return deny("you cannot review yourself")
		}
		if a.privileged() || (a.Role == user.RoleManager && a.Scope.Allows(res.OwnerEmployeeID)) {
			return allow()
		}
		return deny("only admin, hr_manager or the employee's manager can create reviews")
	case ActionUpdate, ActionSubmit:
		if a.privileged() || reviewer {
			return allow()
		}
		return deny("only the reviewer can change this review")
	case ActionApprove:
		if a.isSelf(res.OwnerEmployeeID) {
			return deny("you cannot approve your own review")
		}
		if a.privileged() {
			return allow()
		}
		return deny("only admin or hr_manager can approve reviews")
	case ActionAcknowledge:
		if a.isSelf(res.OwnerEmployeeID) {
			return allow()
		}
		return deny("only the reviewed employee can acknowledge a review")
	}
	return deny("action not supported on reviews")
}

func evaluateDepartment(a Actor, action Action) Decision {
	switch action {
	case ActionView:
		return allow()
	case ActionCreate, ActionUpdate, ActionDelete:
		if a.privileged() {
			return allow()
		}
		return deny("only admin or hr_manager can manage departments")
	}
	return deny("action not supported on departments")
}

func evaluatePayroll(a Actor, action Action, res Resource) Decision {
	switch action {
	case ActionView:
		if a.privileged() || a.isSelf(res.OwnerEmployeeID) {
			return allow()
		}
		return deny("you can only view your own payroll")
	case ActionGenerate, ActionUpdate:
		if a.privileged() {
			return allow()
		}
		return deny("only admin or hr_manager can manage payroll")
	}
	return deny("action not supported on payroll")
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
