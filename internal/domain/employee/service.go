package employee

import (
	"context"

	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
)

type EmployeeService interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	Update(ctx context.Context, req UpdateEmployeeRequest) (Employee, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter EmployeeFilter) (pagination.Result[Employee, Summary], error)
}
