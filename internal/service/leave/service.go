package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/employee"
	"github.com/etms-hr/etms-backend-go/internal/domain/leave"
	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/domain/user"
	"github.com/etms-hr/etms-backend-go/internal/pkg/database"
	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
	"github.com/etms-hr/etms-backend-go/internal/service/query"
	"github.com/google/uuid"
)

type LeaveServiceImpl struct {
	tx           database.Transactor
	leaveRepo    leave.LeaveRepository
	employeeRepo employee.EmployeeRepository
	now          func() time.Time
}

func NewLeaveService(tx database.Transactor, leaveRepo leave.LeaveRepository, employeeRepo employee.EmployeeRepository) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:           tx,
		leaveRepo:    leaveRepo,
		employeeRepo: employeeRepo,
		now:          time.Now,
	}
}

func (s *LeaveServiceImpl) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Create implements leave.LeaveService. Requests default to the caller's own
// employee record.
func (s *LeaveServiceImpl) Create(ctx context.Context, req leave.CreateLeaveRequest) (leave.Leave, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return leave.Leave{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.Leave{}, err
	}

	employeeID := req.EmployeeID
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if employeeID == "" {
		return leave.Leave{}, user.ErrNoEmployeeProfile
	}
	if err := policy.Check(actor, policy.EntityLeave, policy.ActionCreate, policy.Resource{OwnerEmployeeID: employeeID}); err != nil {
		return leave.Leave{}, err
	}
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return leave.Leave{}, err
	}

	if req.Start.Before(s.today()) {
		return leave.Leave{}, leave.ErrStartDateInPast
	}

	id, err := uuid.NewV7()
	if err != nil {
		return leave.Leave{}, fmt.Errorf("failed to generate id: %w", err)
	}
	days := leave.CountDays(req.Start, req.End)

	// The overlap and balance checks only hold while no other request for
	// the same employee is written in between.
	var created leave.Leave
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.leaveRepo.LockEmployee(ctx, employeeID); err != nil {
			return err
		}

		overlap, err := s.leaveRepo.HasOverlap(ctx, employeeID, req.Start, req.End)
		if err != nil {
			return err
		}
		if overlap {
			return leave.ErrOverlappingLeave
		}

		if err := s.checkBalance(ctx, employeeID, leave.Type(req.LeaveType), req.Start.Year(), days); err != nil {
			return err
		}

		created, err = s.leaveRepo.Create(ctx, leave.Leave{
			ID:         id.String(),
			EmployeeID: employeeID,
			LeaveType:  leave.Type(req.LeaveType),
			StartDate:  req.Start,
			EndDate:    req.End,
			TotalDays:  days,
			Reason:     req.Reason,
			Status:     leave.StatusPending,
		})
		return err
	})
	if err != nil {
		return leave.Leave{}, err
	}

	slog.Info("Leave requested", "leave_id", created.ID, "employee_id", employeeID, "type", created.LeaveType, "days", days)
	return created, nil
}

func (s *LeaveServiceImpl) GetByID(ctx context.Context, id string) (leave.Leave, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return leave.Leave{}, err
	}
	l, err := s.leaveRepo.GetByID(ctx, id)
	if err != nil {
		return leave.Leave{}, err
	}
	if err := policy.Check(actor, policy.EntityLeave, policy.ActionView, policy.Resource{OwnerEmployeeID: l.EmployeeID}); err != nil {
		return leave.Leave{}, err
	}
	return l, nil
}

// Act applies approve, reject or cancel to a leave request.
func (s *LeaveServiceImpl) Act(ctx context.Context, req leave.ActionRequest) (leave.Leave, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return leave.Leave{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.Leave{}, err
	}

	l, err := s.leaveRepo.GetByID(ctx, req.ID)
	if err != nil {
		return leave.Leave{}, err
	}

	var action policy.Action
	switch req.Action {
	case leave.ActionApprove:
		action = policy.ActionApprove
	case leave.ActionReject:
		action = policy.ActionReject
	default:
		action = policy.ActionCancel
	}
	if err := policy.Check(actor, policy.EntityLeave, action, policy.Resource{OwnerEmployeeID: l.EmployeeID}); err != nil {
		return leave.Leave{}, err
	}

	from := l.Status
	now := s.now().UTC()
	switch action {
	case policy.ActionApprove, policy.ActionReject:
		err = l.Decide(action == policy.ActionApprove, actor.UserID, req.RejectionReason, now)
	default:
		err = l.Cancel(now)
	}
	if err != nil {
		return leave.Leave{}, err
	}

	updated, err := s.leaveRepo.UpdateStatus(ctx, l, from)
	if err != nil {
		return leave.Leave{}, err
	}

	slog.Info("Leave status changed", "leave_id", updated.ID, "status", updated.Status, "by", actor.UserID)
	return updated, nil
}

func (s *LeaveServiceImpl) List(ctx context.Context, filter leave.LeaveFilter) (pagination.Result[leave.Leave, leave.Summary], error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return pagination.Result[leave.Leave, leave.Summary]{}, err
	}
	if err := filter.Validate(); err != nil {
		return pagination.Result[leave.Leave, leave.Summary]{}, err
	}
	filter.Params = filter.Params.Normalize(leave.DefaultLimit)
	filter.Scope = actor.Scope.Narrow(filter.EmployeeID)

	return query.Execute(ctx, filter.Params, query.Reader[leave.Leave, leave.Summary]{
		Count: func(ctx context.Context) (int64, error) {
			return s.leaveRepo.Count(ctx, filter)
		},
		Find: func(ctx context.Context) ([]leave.Leave, error) {
			return s.leaveRepo.List(ctx, filter)
		},
		Summarize: func(ctx context.Context) (leave.Summary, error) {
			return s.leaveRepo.Summarize(ctx, filter)
		},
	})
}
