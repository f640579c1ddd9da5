package policy

import (
	"context"
	"fmt"

	"github.com/etms-hr/etms-backend-go/internal/domain/user"
)

// Scope is the set of employees whose records a caller may see.
type Scope struct {
	all bool
	ids []string
}

func All() Scope {
	return Scope{all: true}
}

// Only restricts the scope to the given employee ids. Empty ids are ignored.
func Only(ids ...string) Scope {
	s := Scope{ids: make([]string, 0, len(ids))}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	return s
}

func (s Scope) Unrestricted() bool {
	return s.all
}

// Empty reports whether the scope matches nothing.
func (s Scope) Empty() bool {
	return !s.all && len(s.ids) == 0
}

// EmployeeIDs is nil for an unrestricted scope.
func (s Scope) EmployeeIDs() []string {
	if s.all {
		return nil
	}
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s Scope) Allows(employeeID string) bool {
	if s.all {
		return true
	}
	for _, id := range s.ids {
		if id == employeeID {
			return true
		}
	}
	return false
}

// AllowsAny reports whether at least one id is inside the scope.
func (s Scope) AllowsAny(ids []string) bool {
	for _, id := range ids {
		if s.Allows(id) {
			return true
		}
	}
	return false
}

// AllowsAll reports whether every id is inside the scope.
func (s Scope) AllowsAll(ids []string) bool {
	for _, id := range ids {
		if !s.Allows(id) {
			return false
		}
	}
	return true
}

// Narrow intersects the scope with an explicit employee filter. A filter
// outside the scope yields an empty scope, never a wider one.
func (s Scope) Narrow(employeeID string) Scope {
	if employeeID == "" {
		return s
	}
	if s.Allows(employeeID) {
		return Only(employeeID)
	}
	return Only()
}

// ReportLister lists the employees whose manager is managerID.
type ReportLister interface {
	ListDirectReportIDs(ctx context.Context, managerID string) ([]string, error)
}

// Actor is the caller together with the scope derived from its role.
type Actor struct {
	user.Identity
	Scope Scope
}

// ScopeFor builds the visibility scope for an identity: everything for
// admin and hr_manager, self plus direct reports for manager, self otherwise.
func ScopeFor(ctx context.Context, id user.Identity, lister ReportLister) (Scope, error) {
	if id.Role.Privileged() {
		return All(), nil
	}
	if !id.HasEmployee() {
		return Only(), nil
	}
	if id.Role != user.RoleManager {
		return Only(id.EmployeeID), nil
	}

	reports, err := lister.ListDirectReportIDs(ctx, id.EmployeeID)
	if err != nil {
		return Scope{}, fmt.Errorf("failed to list direct reports: %w", err)
	}
	return Only(append([]string{id.EmployeeID}, reports...)...), nil
}

// ResolveActor reads the identity from ctx and resolves its scope.
func ResolveActor(ctx context.Context, lister ReportLister) (Actor, error) {
	id, err := user.IdentityFromContext(ctx)
	if err != nil {
		return Actor{}, err
	}
	scope, err := ScopeFor(ctx, id, lister)
	if err != nil {
		return Actor{}, err
	}
	return Actor{Identity: id, Scope: scope}, nil
}
