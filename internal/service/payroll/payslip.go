package payroll

import (
	"context"
	"fmt"

	"github.com/etms-hr/etms-backend-go/internal/domain/payroll"
	"github.com/etms-hr/etms-backend-go/internal/pkg/export"
	"github.com/shopspring/decimal"
)

// Payslip renders a payroll as PDF and returns it with a download name.
func (s *PayrollServiceImpl) Payslip(ctx context.Context, id string) ([]byte, string, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	code := p.EmployeeID
	if p.EmployeeCode != nil {
		code = *p.EmployeeCode
	}
	name := ""
	if p.EmployeeName != nil {
		name = *p.EmployeeName
	}

	data, err := export.PayslipPDF(export.Payslip{
		Title:        "Payslip " + p.Period(),
		EmployeeName: name,
		EmployeeCode: code,
		Period:       p.PeriodStart.Format("2006-01-02") + " to " + p.PeriodEnd.Format("2006-01-02"),
		Status:       string(p.Status),
		Earnings: []export.Line{
			{Label: "Base salary", Value: money(p.BaseSalary)},
			{Label: "Allowances", Value: money(p.Allowances)},
			{Label: fmt.Sprintf("Overtime (%.2f h)", p.OvertimeHours), Value: money(p.OvertimePay)},
			{Label: "Gross pay", Value: money(p.GrossPay)},
		},
		Deductions: []export.Line{
			{Label: fmt.Sprintf("Unpaid leave (%d days)", p.UnpaidLeaveDays), Value: money(p.Deductions)},
			{Label: "Tax", Value: money(p.Tax)},
		},
		NetPay: money(p.NetPay),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to render payslip: %w", err)
	}

	return data, fmt.Sprintf("payslip-%s-%s.pdf", code, p.Period()), nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

var _ payroll.PayrollService = (*PayrollServiceImpl)(nil)
