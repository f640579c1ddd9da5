package user

import "context"

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID     string
	Email      string
	Role       Role
	EmployeeID string // empty when the account has no employee record
}

func (i Identity) HasEmployee() bool {
	return i.EmployeeID != ""
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns ErrUnauthenticated when no identity was attached.
func IdentityFromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}
