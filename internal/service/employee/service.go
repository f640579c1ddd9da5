package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/department"
	"github.com/etms-hr/etms-backend-go/internal/domain/employee"
	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/domain/user"
	"github.com/etms-hr/etms-backend-go/internal/pkg/database"
	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
	"github.com/etms-hr/etms-backend-go/internal/service/query"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type EmployeeServiceImpl struct {
	tx             database.Transactor
	employeeRepo   employee.EmployeeRepository
	departmentRepo department.DepartmentRepository
	userRepo       user.UserRepository
	now            func() time.Time
}

func NewEmployeeService(
	tx database.Transactor,
	employeeRepo employee.EmployeeRepository,
	departmentRepo department.DepartmentRepository,
	userRepo user.UserRepository,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		tx:             tx,
		employeeRepo:   employeeRepo,
		departmentRepo: departmentRepo,
		userRepo:       userRepo,
		now:            time.Now,
	}
}

// Create implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.Employee, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return employee.Employee{}, err
	}
	if err := policy.Check(actor, policy.EntityEmployee, policy.ActionCreate, policy.Resource{}); err != nil {
		return employee.Employee{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.Employee{}, err
	}

	exists, err := s.employeeRepo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return employee.Employee{}, err
	}
	if exists {
		return employee.Employee{}, employee.ErrEmailExists
	}
	if err := s.checkReferences(ctx, "", req.ManagerID, req.DepartmentID); err != nil {
		return employee.Employee{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to generate id: %w", err)
	}

	var created employee.Employee
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		last, err := s.employeeRepo.LastEmployeeCode(ctx)
		if err != nil {
			return err
		}

		created, err = s.employeeRepo.Create(ctx, employee.Employee{
			ID:           id.String(),
			EmployeeCode: employee.NextEmployeeCode(last),
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        req.Email,
			Phone:        req.Phone,
			Address:      req.Address,
			DepartmentID: req.DepartmentID,
			Position:     req.Position,
			ManagerID:    req.ManagerID,
			Salary:       *req.Salary,
			HireDate:     req.HireDateParsed,
			Status:       employee.StatusActive,
		})
		if err != nil {
			return err
		}

		if req.Account == nil {
			return nil
		}
		return s.createAccount(ctx, created, *req.Account)
	})
	if err != nil {
		return employee.Employee{}, err
	}

	slog.Info("Employee created", "employee_id", created.ID, "employee_code", created.EmployeeCode, "by", actor.UserID)
	return created, nil
}

func (s *EmployeeServiceImpl) createAccount(ctx context.Context, emp employee.Employee, req employee.AccountRequest) error {
	role := user.RoleEmployee
	if req.Role != "" {
		role = user.Role(req.Role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate id: %w", err)
	}
	_, err = s.userRepo.Create(ctx, user.User{
		ID:           id.String(),
		Email:        emp.Email,
		PasswordHash: string(hash),
		Role:         role,
		EmployeeID:   &emp.ID,
		IsActive:     true,
	})
	return err
}

// checkReferences verifies that the manager and department exist and that
// the manager chain above selfID does not lead back to it.
func (s *EmployeeServiceImpl) checkReferences(ctx context.Context, selfID string, managerID, departmentID *string) error {
	if managerID != nil && *managerID != "" {
		if *managerID == selfID {
			return employee.ErrSelfManager
		}
		manager, err := s.employeeRepo.GetByID(ctx, *managerID)
		if err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return employee.ErrManagerNotFound
			}
			return err
		}
		if selfID != "" {
			if err := s.checkManagerChain(ctx, selfID, manager); err != nil {
				return err
			}
		}
	}
	if departmentID != nil && *departmentID != "" {
		if _, err := s.departmentRepo.GetByID(ctx, *departmentID); err != nil {
			return err
		}
	}
	return nil
}

// checkManagerChain walks up from manager and fails if selfID appears on the
// way. A chain that already loops without selfID stops at the repeat.
func (s *EmployeeServiceImpl) checkManagerChain(ctx context.Context, selfID string, manager employee.Employee) error {
	seen := map[string]bool{manager.ID: true}
	for manager.ManagerID != nil && *manager.ManagerID != "" {
		next := *manager.ManagerID
		if next == selfID {
			return employee.ErrManagerCycle
		}
		if seen[next] {
			return nil
		}
		seen[next] = true

		var err error
		manager, err = s.employeeRepo.GetByID(ctx, next)
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// GetByID implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return employee.Employee{}, err
	}
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.Employee{}, err
	}
	if err := policy.Check(actor, policy.EntityEmployee, policy.ActionView, policy.Resource{OwnerEmployeeID: emp.ID}); err != nil {
		return employee.Employee{}, err
	}
	return emp, nil
}

// Update implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Update(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.Employee, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return employee.Employee{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.Employee{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return employee.Employee{}, err
	}
	if err := policy.Check(actor, policy.EntityEmployee, policy.ActionUpdate, policy.Resource{OwnerEmployeeID: emp.ID}); err != nil {
		return employee.Employee{}, err
	}
	if !actor.Role.Privileged() && !req.OnlyContactFields() {
		return employee.Employee{}, employee.ErrFieldNotEditable
	}

	if req.Email != nil && *req.Email != emp.Email {
		exists, err := s.employeeRepo.ExistsByEmail(ctx, *req.Email, emp.ID)
		if err != nil {
			return employee.Employee{}, err
		}
		if exists {
			return employee.Employee{}, employee.ErrEmailExists
		}
		emp.Email = *req.Email
	}
	if err := s.checkReferences(ctx, emp.ID, req.ManagerID, req.DepartmentID); err != nil {
		return employee.Employee{}, err
	}

	if req.FirstName != nil {
		emp.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		emp.LastName = *req.LastName
	}
	if req.Phone != nil {
		emp.Phone = req.Phone
	}
	if req.Address != nil {
		emp.Address = req.Address
	}
	if req.DepartmentID != nil {
		emp.DepartmentID = nilIfEmpty(*req.DepartmentID)
	}
	if req.Position != nil {
		emp.Position = *req.Position
	}
	if req.ManagerID != nil {
		emp.ManagerID = nilIfEmpty(*req.ManagerID)
	}
	if req.Salary != nil {
		emp.Salary = *req.Salary
	}
	if req.Status != nil {
		emp.Status = employee.Status(*req.Status)
	}

	return s.employeeRepo.Update(ctx, emp)
}

// Delete implements employee.EmployeeService. The record is kept with status
// terminated and its login is deactivated.
func (s *EmployeeServiceImpl) Delete(ctx context.Context, id string) error {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return err
	}
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Check(actor, policy.EntityEmployee, policy.ActionDelete, policy.Resource{OwnerEmployeeID: emp.ID}); err != nil {
		return err
	}
	if emp.DeletedAt != nil {
		return employee.ErrAlreadyTerminated
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.employeeRepo.SoftDelete(ctx, emp.ID, s.now()); err != nil {
			return err
		}
		return s.userRepo.DeactivateByEmployeeID(ctx, emp.ID)
	})
	if err != nil {
		return err
	}

	slog.Info("Employee terminated", "employee_id", emp.ID, "by", actor.UserID)
	return nil
}

// List implements employee.EmployeeService.
func (s *EmployeeServiceImpl) List(ctx context.Context, filter employee.EmployeeFilter) (pagination.Result[employee.Employee, employee.Summary], error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return pagination.Result[employee.Employee, employee.Summary]{}, err
	}
	if err := filter.Validate(); err != nil {
		return pagination.Result[employee.Employee, employee.Summary]{}, err
	}
	filter.Params = filter.Params.Normalize(employee.DefaultLimit)
	filter.Scope = actor.Scope

	return query.Execute(ctx, filter.Params, query.Reader[employee.Employee, employee.Summary]{
		Count: func(ctx context.Context) (int64, error) {
			return s.employeeRepo.Count(ctx, filter)
		},
		Find: func(ctx context.Context) ([]employee.Employee, error) {
			return s.employeeRepo.List(ctx, filter)
		},
		Summarize: func(ctx context.Context) (employee.Summary, error) {
			return s.employeeRepo.Summarize(ctx, filter)
		},
	})
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
