package department

import "context"

type DepartmentRepository interface {
	Create(ctx context.Context, d Department) (Department, error)
	GetByID(ctx context.Context, id string) (Department, error)
	Update(ctx context.Context, d Department) (Department, error)
	Delete(ctx context.Context, id string) error
	CountMembers(ctx context.Context, id string) (int64, error)

	Count(ctx context.Context, filter DepartmentFilter) (int64, error)
	List(ctx context.Context, filter DepartmentFilter) ([]Department, error)
	Summarize(ctx context.Context, filter DepartmentFilter) (Summary, error)
}
