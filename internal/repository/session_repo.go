package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hr-portal/internal/model"
)

// SessionRepository persists issued session ids. A row's revoked_at being set
// (or the row missing entirely) means the session is dead.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, jti string, userID string, createdAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO app_sessions (jti, user_id, created_at) VALUES ($1, $2, $3)`,
		jti, userID, createdAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Revoke(ctx context.Context, jti string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE app_sessions SET revoked_at = $2 WHERE jti = $1 AND revoked_at IS NULL`,
		jti, at)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE app_sessions SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL`,
		userID, at)
	if err != nil {
		return fmt.Errorf("revoke sessions for user: %w", err)
	}
	return nil
}

// IsRevoked fails closed: a jti with no backing row is treated as revoked.
func (r *SessionRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revokedAt *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT revoked_at FROM app_sessions WHERE jti = $1`, jti).Scan(&revokedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("check session revocation: %w", err)
	}
	return revokedAt != nil, nil
}

// ListWithUsers returns every session row joined with minimal user identity,
// newest first, for the operator session list.
func (r *SessionRepository) ListWithUsers(ctx context.Context) ([]model.SessionWithUser, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.jti, s.created_at, s.revoked_at,
		       u.id, u.username, u.email, r.name
		FROM app_sessions s
		JOIN users u ON u.id = s.user_id
		LEFT JOIN roles r ON r.id = u.role_id
		ORDER BY s.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]model.SessionWithUser, 0)
	for rows.Next() {
		var s model.SessionWithUser
		if err := rows.Scan(&s.JTI, &s.CreatedAt, &s.RevokedAt,
			&s.User.ID, &s.User.Username, &s.User.Email, &s.User.Role); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
