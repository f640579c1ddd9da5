// Package servicetest holds fakes shared by the service tests.
package servicetest

import (
	"context"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/user"
)

// Tx runs fn directly, without a database transaction.
type Tx struct {
	Calls int
}

func (t *Tx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	return fn(ctx)
}

// Reports maps a manager's employee id to its direct reports.
type Reports map[string][]string

func (r Reports) ListDirectReportIDs(_ context.Context, managerID string) ([]string, error) {
	return r[managerID], nil
}

// As returns a context carrying the given identity.
func As(userID string, role user.Role, employeeID string) context.Context {
	return user.WithIdentity(context.Background(), user.Identity{
		UserID:     userID,
		Email:      userID + "@example.com",
		Role:       role,
		EmployeeID: employeeID,
	})
}

// Clock returns a now func pinned to t.
func Clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func Ptr[T any](v T) *T {
	return &v
}
