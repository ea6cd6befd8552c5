package repository

import (
	"context"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/google/uuid"
)

// PlanRepository persists transfer plans and their lines.
type PlanRepository interface {
	CreatePlan(ctx context.Context, plan *domain.TransferPlan, lines []domain.TransferPlanLine) error
	GetPlan(ctx context.Context, planID uuid.UUID) (*domain.TransferPlan, error)
	ListPlans(ctx context.Context, sessionID uuid.UUID) ([]domain.TransferPlan, error)
	GetLines(ctx context.Context, planID uuid.UUID) ([]domain.TransferPlanLine, error)

	// ReplaceLines deletes every line of the plan and inserts the new set in
	// one transaction.
	ReplaceLines(ctx context.Context, planID uuid.UUID, lines []domain.TransferPlanLine) error

	UpdateStatus(ctx context.Context, planID uuid.UUID, status string) error
	DeletePlan(ctx context.Context, planID uuid.UUID) error
}
