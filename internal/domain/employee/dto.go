package employee

import (
	"strings"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
	"github.com/etms-hr/etms-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const DefaultLimit = 20

// AccountRequest optionally creates a login for a new employee.
type AccountRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=admin hr_manager manager employee"`
}

type CreateEmployeeRequest struct {
	FirstName    string           `json:"firstName" validate:"required,max=100"`
	LastName     string           `json:"lastName" validate:"required,max=100"`
	Email        string           `json:"email" validate:"required,email"`
	Phone        *string          `json:"phone" validate:"omitempty,max=30"`
	Address      *string          `json:"address"`
	DepartmentID *string          `json:"departmentId" validate:"omitempty,uuid"`
	Position     string           `json:"position" validate:"required,max=100"`
	ManagerID    *string          `json:"managerId" validate:"omitempty,uuid"`
	Salary       *decimal.Decimal `json:"salary"`
	HireDate     string           `json:"hireDate" validate:"required,datetime=2006-01-02"`
	Account      *AccountRequest  `json:"account"`

	HireDateParsed time.Time `json:"-"`
}

func (r *CreateEmployeeRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)

	errs := validator.Struct(r)
	if r.Salary == nil {
		errs.Add("salary", "salary is required")
	} else if r.Salary.IsNegative() {
		errs.Add("salary", "salary must not be negative")
	}
	if d, ok := validator.IsValidDate(r.HireDate); ok {
		r.HireDateParsed = d
	}
	return errs.Err()
}

type UpdateEmployeeRequest struct {
	ID           string           `json:"-"`
	FirstName    *string          `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName     *string          `json:"lastName" validate:"omitempty,min=1,max=100"`
	Email        *string          `json:"email" validate:"omitempty,email"`
	Phone        *string          `json:"phone" validate:"omitempty,max=30"`
	Address      *string          `json:"address"`
	DepartmentID *string          `json:"departmentId" validate:"omitempty,uuid"`
	Position     *string          `json:"position" validate:"omitempty,min=1,max=100"`
	ManagerID    *string          `json:"managerId" validate:"omitempty,uuid"`
	Salary       *decimal.Decimal `json:"salary"`
	Status       *string          `json:"status" validate:"omitempty,oneof=active inactive terminated"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	errs := validator.Struct(r)
	if r.Salary != nil && r.Salary.IsNegative() {
		errs.Add("salary", "salary must not be negative")
	}
	if r.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &email
	}
	return errs.Err()
}

// OnlyContactFields reports whether the request touches nothing but the
// fields an employee may change on their own profile.
func (r *UpdateEmployeeRequest) OnlyContactFields() bool {
	return r.FirstName == nil && r.LastName == nil && r.Email == nil &&
		r.DepartmentID == nil && r.Position == nil && r.ManagerID == nil &&
		r.Salary == nil && r.Status == nil
}

type EmployeeFilter struct {
	pagination.Params
	Scope        policy.Scope
	Search       string
	DepartmentID string
	ManagerID    string
	Status       string
	SortBy       string
	SortOrder    string
}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != "" && !Status(f.Status).Valid() {
		errs.Add("status", "status must be one of [active inactive terminated]")
	}
	if f.DepartmentID != "" && !validator.IsValidUUID(f.DepartmentID) {
		errs.Add("department", "department must be a valid id")
	}
	if f.ManagerID != "" && !validator.IsValidUUID(f.ManagerID) {
		errs.Add("manager", "manager must be a valid id")
	}
	if f.SortBy != "" && !validator.IsInSlice(f.SortBy, []string{"employee_code", "first_name", "last_name", "hire_date", "created_at"}) {
		errs.Add("sortBy", "sortBy must be one of [employee_code first_name last_name hire_date created_at]")
	}
	if f.SortOrder != "" && f.SortOrder != "asc" && f.SortOrder != "desc" {
		errs.Add("sortOrder", "sortOrder must be asc or desc")
	}
	return errs.Err()
}
