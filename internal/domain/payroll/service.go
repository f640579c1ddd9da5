package payroll

import (
	"context"

	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
)

type PayrollService interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
	GetByID(ctx context.Context, id string) (Payroll, error)
	UpdateStatus(ctx context.Context, req StatusRequest) (Payroll, error)
	List(ctx context.Context, filter PayrollFilter) (pagination.Result[Payroll, Summary], error)
	Payslip(ctx context.Context, id string) ([]byte, string, error)
}
