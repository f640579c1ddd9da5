package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/etms-hr/etms-backend-go/internal/domain/payroll"
	"github.com/etms-hr/etms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type payrollRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepositoryImpl{db: db}
}

const payrollSelect = `
		SELECT p.id, p.employee_id, p.period_start, p.period_end, p.base_salary, p.overtime_hours,
			p.overtime_pay, p.allowances, p.unpaid_leave_days, p.deductions, p.tax, p.gross_pay,
			p.net_pay, p.status, p.processed_at, p.paid_at, p.created_at, p.updated_at,
			NULLIF(TRIM(CONCAT(e.first_name, ' ', e.last_name)), '') AS employee_name,
			e.employee_code
		FROM payrolls p
		INNER JOIN employees e ON e.id = p.employee_id
`

func scanPayroll(row pgx.Row) (payroll.Payroll, error) {
	var p payroll.Payroll
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.PeriodStart, &p.PeriodEnd, &p.BaseSalary, &p.OvertimeHours,
		&p.OvertimePay, &p.Allowances, &p.UnpaidLeaveDays, &p.Deductions, &p.Tax, &p.GrossPay,
		&p.NetPay, &p.Status, &p.ProcessedAt, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt,
		&p.EmployeeName, &p.EmployeeCode,
	)
	return p, err
}

// Upsert implements payroll.PayrollRepository. The conflict update only fires
// for draft rows; a locked row yields no RETURNING row.
func (r *payrollRepositoryImpl) Upsert(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payrolls (
			id, employee_id, period_start, period_end, base_salary, overtime_hours, overtime_pay,
			allowances, unpaid_leave_days, deductions, tax, gross_pay, net_pay, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 'draft')
		ON CONFLICT (employee_id, period_start) DO UPDATE
		SET period_end = EXCLUDED.period_end,
			base_salary = EXCLUDED.base_salary,
			overtime_hours = EXCLUDED.overtime_hours,
			overtime_pay = EXCLUDED.overtime_pay,
			allowances = EXCLUDED.allowances,
			unpaid_leave_days = EXCLUDED.unpaid_leave_days,
			deductions = EXCLUDED.deductions,
			tax = EXCLUDED.tax,
			gross_pay = EXCLUDED.gross_pay,
			net_pay = EXCLUDED.net_pay,
			updated_at = NOW()
		WHERE payrolls.status = 'draft'
		RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		p.ID, p.EmployeeID, p.PeriodStart, p.PeriodEnd, p.BaseSalary, p.OvertimeHours, p.OvertimePay,
		p.Allowances, p.UnpaidLeaveDays, p.Deductions, p.Tax, p.GrossPay, p.NetPay,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollLocked
		}
		return payroll.Payroll{}, fmt.Errorf("failed to upsert payroll: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanPayroll(q.QueryRow(ctx, payrollSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to get payroll: %w", err)
	}
	return found, nil
}

// UpdateStatus implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) UpdateStatus(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payrolls
		SET status = $1, processed_at = $2, paid_at = $3, updated_at = NOW()
		WHERE id = $4
	`

	tag, err := q.Exec(ctx, query, p.Status, p.ProcessedAt, p.PaidAt, p.ID)
	if err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to update payroll status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	return r.GetByID(ctx, p.ID)
}

func payrollWhere(filter payroll.PayrollFilter) *whereBuilder {
	w := newWhere()
	if filter.EmployeeID != "" {
		w.add("p.employee_id = $%[1]d", filter.EmployeeID)
	}
	if filter.Status != "" {
		w.add("p.status = $%[1]d", filter.Status)
	}
	if filter.PeriodStart != nil {
		w.add("p.period_start = $%[1]d", *filter.PeriodStart)
	}
	w.scope("p.employee_id", filter.Scope)
	return w
}

// Count implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) Count(ctx context.Context, filter payroll.PayrollFilter) (int64, error) {
	q := GetQuerier(ctx, r.db)
	w := payrollWhere(filter)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payrolls p WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count payrolls: %w", err)
	}
	return total, nil
}

// List implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)
	w := payrollWhere(filter)

	query := payrollSelect + ` WHERE ` + w.String() + ` ORDER BY p.period_start DESC, e.employee_code ` + w.page(filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payrolls: %w", err)
	}
	defer rows.Close()

	var payrolls []payroll.Payroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll: %w", err)
		}
		payrolls = append(payrolls, p)
	}
	return payrolls, rows.Err()
}

// Summarize implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) Summarize(ctx context.Context, filter payroll.PayrollFilter) (payroll.Summary, error) {
	q := GetQuerier(ctx, r.db)
	w := payrollWhere(filter)

	query := `
		SELECT p.status, COUNT(*), COALESCE(SUM(p.gross_pay), 0), COALESCE(SUM(p.net_pay), 0)
		FROM payrolls p
		WHERE ` + w.String() + `
		GROUP BY p.status
	`

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return payroll.Summary{}, fmt.Errorf("failed to summarize payrolls: %w", err)
	}
	defer rows.Close()

	summary := payroll.Summary{ByStatus: map[payroll.Status]int64{}, TotalGross: decimal.Zero, TotalNet: decimal.Zero}
	for rows.Next() {
		var (
			status     payroll.Status
			n          int64
			gross, net decimal.Decimal
		)
		if err := rows.Scan(&status, &n, &gross, &net); err != nil {
			return payroll.Summary{}, err
		}
		summary.ByStatus[status] = n
		summary.TotalGross = summary.TotalGross.Add(gross)
		summary.TotalNet = summary.TotalNet.Add(net)
	}
	return summary, rows.Err()
}
