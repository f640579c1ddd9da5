package department

import (
	"time"

	"github.com/shopspring/decimal"
)

type Department struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Code        string          `json:"code"`
	Description *string         `json:"description,omitempty"`
	HeadID      *string         `json:"headId,omitempty"`
	Budget      decimal.Decimal `json:"budget"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	// Join
	HeadName      *string `json:"headName,omitempty"`
	EmployeeCount int64   `json:"employeeCount"`
}

type Summary struct {
	Active      int64           `json:"active"`
	Inactive    int64           `json:"inactive"`
	TotalBudget decimal.Decimal `json:"totalBudget"`
}
