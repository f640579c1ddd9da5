package leave

import (
	"context"

	"github.com/etms-hr/etms-backend-go/internal/domain/leave"
	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/domain/user"
)

// Balance returns the per-type balance of employeeID for year. An empty
// employeeID means the caller, a zero year the current one.
func (s *LeaveServiceImpl) Balance(ctx context.Context, employeeID string, year int) ([]leave.Balance, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return nil, err
	}
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if employeeID == "" {
		return nil, user.ErrNoEmployeeProfile
	}
	if err := policy.Check(actor, policy.EntityLeave, policy.ActionView, policy.Resource{OwnerEmployeeID: employeeID}); err != nil {
		return nil, err
	}
	if year == 0 {
		year = s.today().Year()
	}

	usage, err := s.leaveRepo.UsageByType(ctx, employeeID, year)
	if err != nil {
		return nil, err
	}
	return leave.ComputeBalances(usage), nil
}

// checkBalance counts pending requests against the allowance so that two
// open requests cannot together exceed it.
func (s *LeaveServiceImpl) checkBalance(ctx context.Context, employeeID string, t leave.Type, year, days int) error {
	if !t.Limited() {
		return nil
	}
	usage, err := s.leaveRepo.UsageByType(ctx, employeeID, year)
	if err != nil {
		return err
	}
	for _, b := range leave.ComputeBalances(usage) {
		if b.LeaveType == t && days > b.Remaining {
			return leave.ErrInsufficientBalance
		}
	}
	return nil
}
