package repository

import (
	"context"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/google/uuid"
)

// SessionRepository manages planning sessions.
type SessionRepository interface {
	List(ctx context.Context) ([]domain.Session, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Create(ctx context.Context, session *domain.Session) error
	Update(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id uuid.UUID) error

	// SetLeader marks one session as the leader and clears the flag on all
	// others atomically.
	SetLeader(ctx context.Context, id uuid.UUID) error
}
