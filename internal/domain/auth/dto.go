package auth

import (
	"strings"

	"github.com/etms-hr/etms-backend-go/internal/domain/user"
	"github.com/etms-hr/etms-backend-go/internal/pkg/validator"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	return validator.Struct(r).Err()
}

// RegisterRequest creates a login account, optionally linked to an employee.
type RegisterRequest struct {
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=8,max=72"`
	Role       string  `json:"role" validate:"required,oneof=admin hr_manager manager employee"`
	EmployeeID *string `json:"employeeId" validate:"omitempty,uuid"`
}

func (r *RegisterRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	return validator.Struct(r).Err()
}

type TokenResponse struct {
	AccessToken string  `json:"token"`
	TokenType   string  `json:"tokenType"`
	ExpiresAt   int64   `json:"expiresAt"`
	User        Profile `json:"user"`
}

type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Role         user.Role `json:"role"`
	EmployeeID   *string   `json:"employeeId,omitempty"`
	EmployeeName *string   `json:"employeeName,omitempty"`
}

func NewProfile(u user.User) Profile {
	return Profile{
		ID:           u.ID,
		Email:        u.Email,
		Role:         u.Role,
		EmployeeID:   u.EmployeeID,
		EmployeeName: u.EmployeeName,
	}
}
