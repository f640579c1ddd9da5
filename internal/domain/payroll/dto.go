package payroll

import (
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
	"github.com/etms-hr/etms-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const DefaultLimit = 20

type GenerateRequest struct {
	Month       string           `json:"month" validate:"required,datetime=2006-01"`
	Allowances  *decimal.Decimal `json:"allowances"`
	EmployeeIDs []string         `json:"employeeIds" validate:"omitempty,dive,uuid"`

	PeriodStart time.Time `json:"-"`
	PeriodEnd   time.Time `json:"-"`
}

func (r *GenerateRequest) Validate() error {
	errs := validator.Struct(r)
	if r.Allowances != nil && r.Allowances.IsNegative() {
		errs.Add("allowances", "allowances must not be negative")
	}
	if start, end, err := ParsePeriod(r.Month); err == nil {
		r.PeriodStart, r.PeriodEnd = start, end
	}
	return errs.Err()
}

type StatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status" validate:"required,oneof=processed paid"`
}

func (r *StatusRequest) Validate() error {
	return validator.Struct(r).Err()
}

type PayrollFilter struct {
	pagination.Params
	Scope       policy.Scope
	EmployeeID  string
	Status      string
	PeriodStart *time.Time
}

func (f *PayrollFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != "" && !Status(f.Status).Valid() {
		errs.Add("status", "status must be one of [draft processed paid]")
	}
	if f.EmployeeID != "" && !validator.IsValidUUID(f.EmployeeID) {
		errs.Add("employeeId", "employeeId must be a valid id")
	}
	return errs.Err()
}
