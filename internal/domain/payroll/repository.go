package payroll

import "context"

type PayrollRepository interface {
	// Upsert writes a draft snapshot. It returns ErrPayrollLocked when the
	// period already exists in a non-draft state.
	Upsert(ctx context.Context, p Payroll) (Payroll, error)
	GetByID(ctx context.Context, id string) (Payroll, error)
	UpdateStatus(ctx context.Context, p Payroll) (Payroll, error)

	Count(ctx context.Context, filter PayrollFilter) (int64, error)
	List(ctx context.Context, filter PayrollFilter) ([]Payroll, error)
	Summarize(ctx context.Context, filter PayrollFilter) (Summary, error)
}
