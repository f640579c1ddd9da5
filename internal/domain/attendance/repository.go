package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// GetByEmployeeAndDate returns nil when the employee has no row for date.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)
	GetByID(ctx context.Context, id string) (Attendance, error)
	Create(ctx context.Context, a Attendance) (Attendance, error)
	Update(ctx context.Context, a Attendance) (Attendance, error)

	Count(ctx context.Context, filter AttendanceFilter) (int64, error)
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, error)
	ListAll(ctx context.Context, filter AttendanceFilter) ([]Attendance, error)
	Summarize(ctx context.Context, filter AttendanceFilter) (Summary, error)
	SummarizeByEmployee(ctx context.Context, filter AttendanceFilter) ([]EmployeeSummary, error)

	// FillMissing inserts on_leave or absent rows for active employees
	// without a row on date.
	FillMissing(ctx context.Context, date time.Time) (SweepResult, error)
	SumOvertime(ctx context.Context, employeeID string, from, to time.Time) (float64, error)
}
