package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/CHOISC1208/psi-erp/internal/repository"
	"github.com/google/uuid"
)

// SessionService manages planning sessions.
type SessionService struct {
	repo repository.SessionRepository
}

func NewSessionService(repo repository.SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

func (s *SessionService) List(ctx context.Context) ([]domain.Session, error) {
	return s.repo.List(ctx)
}

func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return s.repo.Get(ctx, id)
}

func (s *SessionService) Create(ctx context.Context, title string, description *string) (*domain.Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("session title must not be empty")
	}
	session := &domain.Session{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) Update(ctx context.Context, session *domain.Session) error {
	if strings.TrimSpace(session.Title) == "" {
		return fmt.Errorf("session title must not be empty")
	}
	return s.repo.Update(ctx, session)
}

func (s *SessionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *SessionService) SetLeader(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetLeader(ctx, id)
}
