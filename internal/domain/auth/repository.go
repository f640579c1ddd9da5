package auth

import (
	"context"
	"time"
)

// RevocationRepository persists logged-out access tokens by hash so a restart
// does not bring them back to life.
type RevocationRepository interface {
	Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error
	ListActive(ctx context.Context, now time.Time) (map[string]time.Time, error)
}
