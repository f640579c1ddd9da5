package leave

import (
	"context"

	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
)

type LeaveService interface {
	Create(ctx context.Context, req CreateLeaveRequest) (Leave, error)
	GetByID(ctx context.Context, id string) (Leave, error)
	Act(ctx context.Context, req ActionRequest) (Leave, error)
	Balance(ctx context.Context, employeeID string, year int) ([]Balance, error)
	List(ctx context.Context, filter LeaveFilter) (pagination.Result[Leave, Summary], error)
}
