package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/attendance"
	"github.com/etms-hr/etms-backend-go/internal/domain/employee"
	"github.com/etms-hr/etms-backend-go/internal/domain/leave"
	"github.com/etms-hr/etms-backend-go/internal/domain/payroll"
	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/pkg/database"
	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
	"github.com/etms-hr/etms-backend-go/internal/service/query"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	tx             database.Transactor
	payrollRepo    payroll.PayrollRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	leaveRepo      leave.LeaveRepository
	rates          payroll.Rates
	now            func() time.Time
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.LeaveRepository,
	rates payroll.Rates,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		tx:             tx,
		payrollRepo:    payrollRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
		rates:          rates,
		now:            time.Now,
	}
}

// Generate writes a draft payroll for every selected employee in one
// transaction. Employees whose period is already processed are skipped.
func (s *PayrollServiceImpl) Generate(ctx context.Context, req payroll.GenerateRequest) (payroll.GenerateResult, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return payroll.GenerateResult{}, err
	}
	if err := policy.Check(actor, policy.EntityPayroll, policy.ActionGenerate, policy.Resource{}); err != nil {
		return payroll.GenerateResult{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.GenerateResult{}, err
	}

	employees, err := s.selectEmployees(ctx, req.EmployeeIDs)
	if err != nil {
		return payroll.GenerateResult{}, err
	}
	if len(employees) == 0 {
		return payroll.GenerateResult{}, payroll.ErrNoActiveEmployees
	}

	allowances := decimal.Zero
	if req.Allowances != nil {
		allowances = *req.Allowances
	}

	result := payroll.GenerateResult{
		Period:  req.PeriodStart.Format("2006-01"),
		Skipped: []string{},
		Records: []payroll.Payroll{},
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, emp := range employees {
			p, err := s.snapshot(ctx, emp, req.PeriodStart, req.PeriodEnd, allowances)
			if err != nil {
				return err
			}

			saved, err := s.payrollRepo.Upsert(ctx, p)
			if errors.Is(err, payroll.ErrPayrollLocked) {
				result.Skipped = append(result.Skipped, emp.ID)
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to save payroll for employee %s: %w", emp.ID, err)
			}
			result.Records = append(result.Records, saved)
		}
		return nil
	})
	if err != nil {
		return payroll.GenerateResult{}, err
	}

	result.Generated = len(result.Records)
	slog.Info("Payroll generated", "period", result.Period, "generated", result.Generated, "skipped", len(result.Skipped), "by", actor.UserID)
	return result, nil
}

func (s *PayrollServiceImpl) selectEmployees(ctx context.Context, ids []string) ([]employee.Employee, error) {
	if len(ids) == 0 {
		return s.employeeRepo.ListActive(ctx)
	}

	employees := make([]employee.Employee, 0, len(ids))
	for _, id := range ids {
		emp, err := s.employeeRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if emp.Status != employee.StatusActive || emp.DeletedAt != nil {
			continue
		}
		employees = append(employees, emp)
	}
	return employees, nil
}

// snapshot computes the period figures of one employee from salary, overtime
// recorded in attendance and approved unpaid leave.
func (s *PayrollServiceImpl) snapshot(ctx context.Context, emp employee.Employee, start, end time.Time, allowances decimal.Decimal) (payroll.Payroll, error) {
	overtime, err := s.attendanceRepo.SumOvertime(ctx, emp.ID, start, end)
	if err != nil {
		return payroll.Payroll{}, err
	}
	unpaid, err := s.leaveRepo.ApprovedDays(ctx, emp.ID, leave.TypeUnpaid, start, end)
	if err != nil {
		return payroll.Payroll{}, err
	}

	b := payroll.Compute(payroll.Input{
		BaseSalary:      emp.Salary,
		Allowances:      allowances,
		OvertimeHours:   overtime,
		UnpaidLeaveDays: unpaid,
	}, s.rates)

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to generate id: %w", err)
	}

	return payroll.Payroll{
		ID:              id.String(),
		EmployeeID:      emp.ID,
		PeriodStart:     start,
		PeriodEnd:       end,
		BaseSalary:      emp.Salary,
		OvertimeHours:   overtime,
		OvertimePay:     b.OvertimePay,
		Allowances:      allowances,
		UnpaidLeaveDays: unpaid,
		Deductions:      b.Deductions,
		Tax:             b.Tax,
		GrossPay:        b.Gross,
		NetPay:          b.Net,
		Status:          payroll.StatusDraft,
	}, nil
}

func (s *PayrollServiceImpl) GetByID(ctx context.Context, id string) (payroll.Payroll, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return payroll.Payroll{}, err
	}
	p, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.Payroll{}, err
	}
	if err := policy.Check(actor, policy.EntityPayroll, policy.ActionView, policy.Resource{OwnerEmployeeID: p.EmployeeID}); err != nil {
		return payroll.Payroll{}, err
	}
	return p, nil
}

// UpdateStatus moves a payroll from draft to processed or processed to paid.
func (s *PayrollServiceImpl) UpdateStatus(ctx context.Context, req payroll.StatusRequest) (payroll.Payroll, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return payroll.Payroll{}, err
	}
	if err := policy.Check(actor, policy.EntityPayroll, policy.ActionUpdate, policy.Resource{}); err != nil {
		return payroll.Payroll{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.Payroll{}, err
	}

	p, err := s.payrollRepo.GetByID(ctx, req.ID)
	if err != nil {
		return payroll.Payroll{}, err
	}
	if err := p.Advance(payroll.Status(req.Status), s.now().UTC()); err != nil {
		return payroll.Payroll{}, err
	}

	updated, err := s.payrollRepo.UpdateStatus(ctx, p)
	if err != nil {
		return payroll.Payroll{}, err
	}

	slog.Info("Payroll status changed", "payroll_id", updated.ID, "status", updated.Status, "by", actor.UserID)
	return updated, nil
}

// List shows everything to admin and hr, and only the caller's own payroll
// to anyone else, managers included.
func (s *PayrollServiceImpl) List(ctx context.Context, filter payroll.PayrollFilter) (pagination.Result[payroll.Payroll, payroll.Summary], error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return pagination.Result[payroll.Payroll, payroll.Summary]{}, err
	}
	if err := filter.Validate(); err != nil {
		return pagination.Result[payroll.Payroll, payroll.Summary]{}, err
	}
	filter.Params = filter.Params.Normalize(payroll.DefaultLimit)

	scope := policy.All()
	if !actor.Role.Privileged() {
		scope = policy.Only(actor.EmployeeID)
	}
	filter.Scope = scope.Narrow(filter.EmployeeID)

	return query.Execute(ctx, filter.Params, query.Reader[payroll.Payroll, payroll.Summary]{
		Count: func(ctx context.Context) (int64, error) {
			return s.payrollRepo.Count(ctx, filter)
		},
		Find: func(ctx context.Context) ([]payroll.Payroll, error) {
			return s.payrollRepo.List(ctx, filter)
		},
		Summarize: func(ctx context.Context) (payroll.Summary, error) {
			return s.payrollRepo.Summarize(ctx, filter)
		},
	})
}
