package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusProcessed Status = "processed"
	StatusPaid      Status = "paid"
)

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusProcessed || s == StatusPaid
}

type Payroll struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employeeId"`
	PeriodStart     time.Time       `json:"periodStart"`
	PeriodEnd       time.Time       `json:"periodEnd"`
	BaseSalary      decimal.Decimal `json:"baseSalary"`
	OvertimeHours   float64         `json:"overtimeHours"`
	OvertimePay     decimal.Decimal `json:"overtimePay"`
	Allowances      decimal.Decimal `json:"allowances"`
	UnpaidLeaveDays int             `json:"unpaidLeaveDays"`
	Deductions      decimal.Decimal `json:"deductions"`
	Tax             decimal.Decimal `json:"tax"`
	GrossPay        decimal.Decimal `json:"grossPay"`
	NetPay          decimal.Decimal `json:"netPay"`
	Status          Status          `json:"status"`
	ProcessedAt     *time.Time      `json:"processedAt,omitempty"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	// Join
	EmployeeName *string `json:"employeeName,omitempty"`
	EmployeeCode *string `json:"employeeCode,omitempty"`
}

// Period returns the YYYY-MM label of the pay period.
func (p Payroll) Period() string {
	return p.PeriodStart.Format("2006-01")
}

// Advance moves the payroll forward: draft to processed, processed to paid.
func (p *Payroll) Advance(to Status, at time.Time) error {
	switch {
	case p.Status == StatusDraft && to == StatusProcessed:
		p.ProcessedAt = &at
	case p.Status == StatusProcessed && to == StatusPaid:
		p.PaidAt = &at
	default:
		return ErrInvalidTransition
	}
	p.Status = to
	return nil
}

// ParsePeriod turns "2024-03" into the first and last day of that month.
func ParsePeriod(month string) (start, end time.Time, err error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period %q: %w", month, err)
	}
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end, nil
}

// Rates are the payroll parameters applied to every employee.
type Rates struct {
	WorkingDays        int
	StandardHours      float64
	OvertimeMultiplier decimal.Decimal
	TaxRate            decimal.Decimal
}

type Input struct {
	BaseSalary      decimal.Decimal
	Allowances      decimal.Decimal
	OvertimeHours   float64
	UnpaidLeaveDays int
}

type Breakdown struct {
	OvertimePay decimal.Decimal
	Deductions  decimal.Decimal
	Tax         decimal.Decimal
	Gross       decimal.Decimal
	Net         decimal.Decimal
}

// Compute derives a monthly payslip. Unpaid days are deducted at the daily
// rate, overtime is paid at the hourly rate times the multiplier, and tax
// applies to gross minus deductions.
func Compute(in Input, r Rates) Breakdown {
	days := decimal.NewFromInt(int64(r.WorkingDays))
	if r.WorkingDays <= 0 {
		days = decimal.NewFromInt(22)
	}
	hours := decimal.NewFromFloat(r.StandardHours)
	if r.StandardHours <= 0 {
		hours = decimal.NewFromInt(8)
	}

	daily := in.BaseSalary.Div(days)
	hourly := daily.Div(hours)

	overtimePay := hourly.Mul(decimal.NewFromFloat(in.OvertimeHours)).Mul(r.OvertimeMultiplier).Round(2)

	deductions := daily.Mul(decimal.NewFromInt(int64(in.UnpaidLeaveDays))).Round(2)
	if deductions.GreaterThan(in.BaseSalary) {
		deductions = in.BaseSalary
	}

	gross := in.BaseSalary.Add(in.Allowances).Add(overtimePay).Round(2)
	taxable := gross.Sub(deductions)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	tax := taxable.Mul(r.TaxRate).Round(2)
	net := gross.Sub(deductions).Sub(tax).Round(2)

	return Breakdown{OvertimePay: overtimePay, Deductions: deductions, Tax: tax, Gross: gross, Net: net}
}

type Summary struct {
	ByStatus   map[Status]int64 `json:"byStatus"`
	TotalGross decimal.Decimal  `json:"totalGross"`
	TotalNet   decimal.Decimal  `json:"totalNet"`
}

type GenerateResult struct {
	Period    string    `json:"period"`
	Generated int       `json:"generated"`
	Skipped   []string  `json:"skipped"`
	Records   []Payroll `json:"records"`
}
