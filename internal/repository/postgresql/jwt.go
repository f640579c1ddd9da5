package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/auth"
	"github.com/etms-hr/etms-backend-go/internal/pkg/database"
)

type revocationRepositoryImpl struct {
	db *database.DB
}

// NewRevocationRepository creates a new instance of auth.RevocationRepository.
func NewRevocationRepository(db *database.DB) auth.RevocationRepository {
	return &revocationRepositoryImpl{db: db}
}

// Revoke implements auth.RevocationRepository. Expired rows are pruned on the
// way in.
func (r *revocationRepositoryImpl) Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= NOW()`); err != nil {
		return fmt.Errorf("failed to prune revoked tokens: %w", err)
	}

	query := `
		INSERT INTO revoked_tokens (token_hash, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (token_hash) DO UPDATE SET expires_at = EXCLUDED.expires_at
	`
	if _, err := q.Exec(ctx, query, tokenHash, expiresAt.UTC()); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// ListActive implements auth.RevocationRepository.
func (r *revocationRepositoryImpl) ListActive(ctx context.Context, now time.Time) (map[string]time.Time, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT token_hash, expires_at FROM revoked_tokens WHERE expires_at > $1`, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list revoked tokens: %w", err)
	}
	defer rows.Close()

	active := make(map[string]time.Time)
	for rows.Next() {
		var (
			hash      string
			expiresAt time.Time
		)
		if err := rows.Scan(&hash, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan revoked token: %w", err)
		}
		active[hash] = expiresAt
	}
	return active, rows.Err()
}
