package employee

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusTerminated Status = "terminated"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive || s == StatusTerminated
}

type Employee struct {
	ID           string          `json:"id"`
	EmployeeCode string          `json:"employeeCode"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	Email        string          `json:"email"`
	Phone        *string         `json:"phone,omitempty"`
	Address      *string         `json:"address,omitempty"`
	DepartmentID *string         `json:"departmentId,omitempty"`
	Position     string          `json:"position"`
	ManagerID    *string         `json:"managerId,omitempty"`
	Salary       decimal.Decimal `json:"salary"`
	HireDate     time.Time       `json:"hireDate"`
	Status       Status          `json:"status"`
	DeletedAt    *time.Time      `json:"-"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`

	// Join
	DepartmentName *string `json:"departmentName,omitempty"`
	ManagerName    *string `json:"managerName,omitempty"`
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

const codePrefix = "EMP"

// NextEmployeeCode derives the code following last, e.g. EMP0041 -> EMP0042.
// An empty or malformed last code starts the sequence at EMP0001.
func NextEmployeeCode(last string) string {
	n := 0
	if strings.HasPrefix(last, codePrefix) {
		if v, err := strconv.Atoi(strings.TrimPrefix(last, codePrefix)); err == nil && v > 0 {
			n = v
		}
	}
	return fmt.Sprintf("%s%04d", codePrefix, n+1)
}

type Summary struct {
	Total    int64            `json:"total"`
	ByStatus map[Status]int64 `json:"byStatus"`
}
