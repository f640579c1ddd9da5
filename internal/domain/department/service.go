package department

import (
	"context"

	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
)

type DepartmentService interface {
	Create(ctx context.Context, req CreateDepartmentRequest) (Department, error)
	GetByID(ctx context.Context, id string) (Department, error)
	Update(ctx context.Context, req UpdateDepartmentRequest) (Department, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter DepartmentFilter) (pagination.Result[Department, Summary], error)
}
