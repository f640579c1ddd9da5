package department

import (
	"strings"

	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
	"github.com/etms-hr/etms-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const DefaultLimit = 50

type CreateDepartmentRequest struct {
	Name        string           `json:"name" validate:"required,max=100"`
	Code        string           `json:"code" validate:"required,max=20"`
	Description *string          `json:"description"`
	HeadID      *string          `json:"headId" validate:"omitempty,uuid"`
	Budget      *decimal.Decimal `json:"budget"`
}

func (r *CreateDepartmentRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))

	errs := validator.Struct(r)
	if r.Budget != nil && r.Budget.IsNegative() {
		errs.Add("budget", "budget must not be negative")
	}
	return errs.Err()
}

type UpdateDepartmentRequest struct {
	ID          string           `json:"-"`
	Name        *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Code        *string          `json:"code" validate:"omitempty,min=1,max=20"`
	Description *string          `json:"description"`
	HeadID      *string          `json:"headId" validate:"omitempty,uuid"`
	Budget      *decimal.Decimal `json:"budget"`
	IsActive    *bool            `json:"isActive"`
}

func (r *UpdateDepartmentRequest) Validate() error {
	errs := validator.Struct(r)
	if r.Budget != nil && r.Budget.IsNegative() {
		errs.Add("budget", "budget must not be negative")
	}
	if r.Name == nil && r.Code == nil && r.Description == nil && r.HeadID == nil && r.Budget == nil && r.IsActive == nil {
		errs.Add("request", "at least one field must be provided")
	}
	if r.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*r.Code))
		r.Code = &code
	}
	return errs.Err()
}

type DepartmentFilter struct {
	pagination.Params
	Search   string
	IsActive *bool
}
