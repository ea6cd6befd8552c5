package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session id resolves to nothing.
var ErrSessionNotFound = errors.New("session not found")

type sessionRepository struct {
	db *DB
}

func NewSessionRepository(db *DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) List(ctx context.Context) ([]domain.Session, error) {
	var sessions []domain.Session
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT id, title, description, is_leader, created_at, updated_at
		FROM sessions
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (r *sessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var session domain.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT id, title, description, is_leader, created_at, updated_at
		FROM sessions
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO sessions (id, title, description)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`, session.ID, session.Title, session.Description).
		Scan(&session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Update(ctx context.Context, session *domain.Session) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET title = $2, description = $3, updated_at = NOW()
		WHERE id = $1
	`, session.ID, session.Title, session.Description)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// SetLeader promotes one session and demotes the rest in one transaction so
// at most one leader ever exists.
func (r *sessionRepository) SetLeader(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE sessions SET is_leader = FALSE WHERE is_leader`); err != nil {
			return fmt.Errorf("failed to demote sessions: %w", err)
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE sessions SET is_leader = TRUE, updated_at = NOW() WHERE id = $1
		`, id)
		if err != nil {
			return fmt.Errorf("failed to promote session: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrSessionNotFound
		}
		return nil
	})
}
