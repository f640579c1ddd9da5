package leave

import (
	"time"
)

type Type string

const (
	TypeAnnual    Type = "annual"
	TypeSick      Type = "sick"
	TypePersonal  Type = "personal"
	TypeMaternity Type = "maternity"
	TypePaternity Type = "paternity"
	TypeEmergency Type = "emergency"
	TypeUnpaid    Type = "unpaid"
)

// Entitlements are yearly day allowances per leave type. Unpaid leave is
// not limited.
var Entitlements = map[Type]int{
	TypeAnnual:    20,
	TypeSick:      10,
	TypePersonal:  5,
	TypeMaternity: 90,
	TypePaternity: 10,
	TypeEmergency: 3,
}

var AllTypes = []Type{TypeAnnual, TypeSick, TypePersonal, TypeMaternity, TypePaternity, TypeEmergency, TypeUnpaid}

func (t Type) Valid() bool {
	for _, v := range AllTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Limited reports whether requests of this type draw from a yearly balance.
func (t Type) Limited() bool {
	_, ok := Entitlements[t]
	return ok
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

type Leave struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employeeId"`
	LeaveType       Type       `json:"leaveType"`
	StartDate       time.Time  `json:"startDate"`
	EndDate         time.Time  `json:"endDate"`
	TotalDays       int        `json:"totalDays"`
	Reason          string     `json:"reason"`
	Status          Status     `json:"status"`
	ApprovedBy      *string    `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	CancelledAt     *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	// Join
	EmployeeName *string `json:"employeeName,omitempty"`
}

// CountDays is the inclusive number of calendar days between start and end.
func CountDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// Overlaps reports whether two inclusive date ranges share a day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// Blocking reports whether the request reserves its dates.
func (l Leave) Blocking() bool {
	return l.Status == StatusPending || l.Status == StatusApproved
}

// Decide applies approve or reject to a pending request.
func (l *Leave) Decide(approve bool, approverID string, reason *string, at time.Time) error {
	if l.Status != StatusPending {
		return ErrLeaveAlreadyProcessed
	}
	if approve {
		l.Status = StatusApproved
		l.RejectionReason = nil
	} else {
		l.Status = StatusRejected
		l.RejectionReason = reason
	}
	l.ApprovedBy = &approverID
	l.ApprovedAt = &at
	return nil
}

// Cancel withdraws a pending request, or an approved one before it starts.
func (l *Leave) Cancel(at time.Time) error {
	switch l.Status {
	case StatusPending:
	case StatusApproved:
		today := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
		if !today.Before(l.StartDate) {
			return ErrCannotCancel
		}
	default:
		return ErrCannotCancel
	}
	l.Status = StatusCancelled
	l.CancelledAt = &at
	return nil
}

// Balance is the state of one leave type for an employee in a year.
type Balance struct {
	LeaveType Type `json:"leaveType"`
	Entitled  int  `json:"entitled"`
	Used      int  `json:"used"`
	Pending   int  `json:"pending"`
	Remaining int  `json:"remaining"`
	Unlimited bool `json:"unlimited"`
}

// Usage is the approved and pending day count of one leave type.
type Usage struct {
	Approved int
	Pending  int
}

// ComputeBalances builds the per-type balance from recorded usage.
func ComputeBalances(usage map[Type]Usage) []Balance {
	out := make([]Balance, 0, len(AllTypes))
	for _, t := range AllTypes {
		u := usage[t]
		b := Balance{LeaveType: t, Used: u.Approved, Pending: u.Pending}
		if entitled, ok := Entitlements[t]; ok {
			b.Entitled = entitled
			b.Remaining = entitled - u.Approved - u.Pending
			if b.Remaining < 0 {
				b.Remaining = 0
			}
		} else {
			b.Unlimited = true
		}
		out = append(out, b)
	}
	return out
}

type Summary struct {
	ByStatus     map[Status]int64 `json:"byStatus"`
	DaysByStatus map[Status]int64 `json:"daysByStatus"`
}
