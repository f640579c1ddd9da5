package department

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/etms-hr/etms-backend-go/internal/domain/department"
	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
	"github.com/etms-hr/etms-backend-go/internal/service/query"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DepartmentServiceImpl struct {
	departmentRepo department.DepartmentRepository
	reports        policy.ReportLister
}

func NewDepartmentService(departmentRepo department.DepartmentRepository, reports policy.ReportLister) department.DepartmentService {
	return &DepartmentServiceImpl{
		departmentRepo: departmentRepo,
		reports:        reports,
	}
}

func (s *DepartmentServiceImpl) authorize(ctx context.Context, action policy.Action) error {
	actor, err := policy.ResolveActor(ctx, s.reports)
	if err != nil {
		return err
	}
	return policy.Check(actor, policy.EntityDepartment, action, policy.Resource{})
}

func (s *DepartmentServiceImpl) Create(ctx context.Context, req department.CreateDepartmentRequest) (department.Department, error) {
	if err := s.authorize(ctx, policy.ActionCreate); err != nil {
		return department.Department{}, err
	}
	if err := req.Validate(); err != nil {
		return department.Department{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return department.Department{}, fmt.Errorf("failed to generate id: %w", err)
	}

	budget := decimal.Zero
	if req.Budget != nil {
		budget = *req.Budget
	}

	created, err := s.departmentRepo.Create(ctx, department.Department{
		ID:          id.String(),
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		HeadID:      req.HeadID,
		Budget:      budget,
		IsActive:    true,
	})
	if err != nil {
		return department.Department{}, err
	}

	slog.Info("Department created", "department_id", created.ID, "code", created.Code)
	return created, nil
}

func (s *DepartmentServiceImpl) GetByID(ctx context.Context, id string) (department.Department, error) {
	if err := s.authorize(ctx, policy.ActionView); err != nil {
		return department.Department{}, err
	}
	return s.departmentRepo.GetByID(ctx, id)
}

func (s *DepartmentServiceImpl) Update(ctx context.Context, req department.UpdateDepartmentRequest) (department.Department, error) {
	if err := s.authorize(ctx, policy.ActionUpdate); err != nil {
		return department.Department{}, err
	}
	if err := req.Validate(); err != nil {
		return department.Department{}, err
	}

	d, err := s.departmentRepo.GetByID(ctx, req.ID)
	if err != nil {
		return department.Department{}, err
	}

	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.Code != nil {
		d.Code = *req.Code
	}
	if req.Description != nil {
		d.Description = req.Description
	}
	if req.HeadID != nil {
		if *req.HeadID == "" {
			d.HeadID = nil
		} else {
			d.HeadID = req.HeadID
		}
	}
	if req.Budget != nil {
		d.Budget = *req.Budget
	}
	if req.IsActive != nil {
		d.IsActive = *req.IsActive
	}

	return s.departmentRepo.Update(ctx, d)
}

// Delete refuses while employees are still assigned to the department.
func (s *DepartmentServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.authorize(ctx, policy.ActionDelete); err != nil {
		return err
	}
	if _, err := s.departmentRepo.GetByID(ctx, id); err != nil {
		return err
	}

	members, err := s.departmentRepo.CountMembers(ctx, id)
	if err != nil {
		return err
	}
	if members > 0 {
		return department.ErrDepartmentHasMembers
	}

	if err := s.departmentRepo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("Department deleted", "department_id", id)
	return nil
}

func (s *DepartmentServiceImpl) List(ctx context.Context, filter department.DepartmentFilter) (pagination.Result[department.Department, department.Summary], error) {
	if err := s.authorize(ctx, policy.ActionView); err != nil {
		return pagination.Result[department.Department, department.Summary]{}, err
	}
	filter.Params = filter.Params.Normalize(department.DefaultLimit)

	return query.Execute(ctx, filter.Params, query.Reader[department.Department, department.Summary]{
		Count: func(ctx context.Context) (int64, error) {
			return s.departmentRepo.Count(ctx, filter)
		},
		Find: func(ctx context.Context) ([]department.Department, error) {
			return s.departmentRepo.List(ctx, filter)
		},
		Summarize: func(ctx context.Context) (department.Summary, error) {
			return s.departmentRepo.Summarize(ctx, filter)
		},
	})
}
