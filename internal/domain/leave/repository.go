package leave

import (
	"context"
	"time"
)

type LeaveRepository interface {
	Create(ctx context.Context, l Leave) (Leave, error)
	GetByID(ctx context.Context, id string) (Leave, error)
	// UpdateStatus writes l only while the stored status is still from.
	UpdateStatus(ctx context.Context, l Leave, from Status) (Leave, error)
	// LockEmployee serializes leave writes for one employee until the
	// surrounding transaction ends.
	LockEmployee(ctx context.Context, employeeID string) error
	// HasOverlap reports a pending or approved request of employeeID that
	// shares a day with [start, end].
	HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error)
	UsageByType(ctx context.Context, employeeID string, year int) (map[Type]Usage, error)
	ApprovedDays(ctx context.Context, employeeID string, leaveType Type, from, to time.Time) (int, error)

	Count(ctx context.Context, filter LeaveFilter) (int64, error)
	List(ctx context.Context, filter LeaveFilter) ([]Leave, error)
	Summarize(ctx context.Context, filter LeaveFilter) (Summary, error)
}
