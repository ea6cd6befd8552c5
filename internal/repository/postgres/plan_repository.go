package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/google/uuid"
)

// ErrPlanNotFound is returned when a plan id resolves to nothing.
var ErrPlanNotFound = errors.New("transfer plan not found")

type planRepository struct {
	db *DB
}

func NewPlanRepository(db *DB) *planRepository {
	return &planRepository{db: db}
}

const insertLineQuery = `
	INSERT INTO transfer_plan_lines (
		line_id, plan_id, sku_code,
		from_warehouse, from_channel, to_warehouse, to_channel,
		qty, is_manual, reason
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

func (r *planRepository) CreatePlan(ctx context.Context, plan *domain.TransferPlan, lines []domain.TransferPlanLine) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO transfer_plans (plan_id, session_id, start_date, end_date, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at
		`, plan.PlanID, plan.SessionID, plan.StartDate, plan.EndDate, plan.Status).
			Scan(&plan.CreatedAt, &plan.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert plan: %w", err)
		}
		return insertPlanLines(ctx, tx, lines)
	})
}

func (r *planRepository) GetPlan(ctx context.Context, planID uuid.UUID) (*domain.TransferPlan, error) {
	var plan domain.TransferPlan
	err := r.db.GetContext(ctx, &plan, `
		SELECT plan_id, session_id, start_date, end_date, status, created_at, updated_at
		FROM transfer_plans
		WHERE plan_id = $1
	`, planID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return &plan, nil
}

func (r *planRepository) ListPlans(ctx context.Context, sessionID uuid.UUID) ([]domain.TransferPlan, error) {
	var plans []domain.TransferPlan
	err := r.db.SelectContext(ctx, &plans, `
		SELECT plan_id, session_id, start_date, end_date, status, created_at, updated_at
		FROM transfer_plans
		WHERE session_id = $1
		ORDER BY created_at DESC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

func (r *planRepository) GetLines(ctx context.Context, planID uuid.UUID) ([]domain.TransferPlanLine, error) {
	var lines []domain.TransferPlanLine
	err := r.db.SelectContext(ctx, &lines, `
		SELECT line_id, plan_id, sku_code,
		       from_warehouse, from_channel, to_warehouse, to_channel,
		       qty, is_manual, reason
		FROM transfer_plan_lines
		WHERE plan_id = $1
		ORDER BY sku_code, from_warehouse, from_channel, to_warehouse, to_channel
	`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to get plan lines: %w", err)
	}
	return lines, nil
}

func (r *planRepository) ReplaceLines(ctx context.Context, planID uuid.UUID, lines []domain.TransferPlanLine) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE transfer_plans SET updated_at = NOW() WHERE plan_id = $1`, planID)
		if err != nil {
			return fmt.Errorf("failed to touch plan: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrPlanNotFound
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM transfer_plan_lines WHERE plan_id = $1`, planID); err != nil {
			return fmt.Errorf("failed to delete plan lines: %w", err)
		}
		return insertPlanLines(ctx, tx, lines)
	})
}

func (r *planRepository) UpdateStatus(ctx context.Context, planID uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transfer_plans SET status = $2, updated_at = NOW() WHERE plan_id = $1
	`, planID, status)
	if err != nil {
		return fmt.Errorf("failed to update plan status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func (r *planRepository) DeletePlan(ctx context.Context, planID uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transfer_plan_lines WHERE plan_id = $1`, planID); err != nil {
			return fmt.Errorf("failed to delete plan lines: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM transfer_plans WHERE plan_id = $1`, planID)
		if err != nil {
			return fmt.Errorf("failed to delete plan: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrPlanNotFound
		}
		return nil
	})
}

func insertPlanLines(ctx context.Context, tx *sql.Tx, lines []domain.TransferPlanLine) error {
	if len(lines) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, insertLineQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare line insert: %w", err)
	}
	defer stmt.Close()

	for _, line := range lines {
		if _, err := stmt.ExecContext(
			ctx,
			line.LineID,
			line.PlanID,
			line.SKUCode,
			line.FromWarehouse,
			line.FromChannel,
			line.ToWarehouse,
			line.ToChannel,
			line.Qty,
			line.IsManual,
			line.Reason,
		); err != nil {
			return fmt.Errorf("failed to insert plan line: %w", err)
		}
	}
	return nil
}
