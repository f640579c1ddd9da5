package employee

import (
	"context"
	"time"
)

type EmployeeRepository interface {
	Create(ctx context.Context, e Employee) (Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	Update(ctx context.Context, e Employee) (Employee, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	LastEmployeeCode(ctx context.Context) (string, error)
	ListDirectReportIDs(ctx context.Context, managerID string) ([]string, error)
	ListActive(ctx context.Context) ([]Employee, error)

	Count(ctx context.Context, filter EmployeeFilter) (int64, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	Summarize(ctx context.Context, filter EmployeeFilter) (Summary, error)
}
