package service

import (
	"context"
	"fmt"
	"time"

	"github.com/CHOISC1208/psi-erp/internal/cache"
	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/CHOISC1208/psi-erp/internal/engine"
	"github.com/CHOISC1208/psi-erp/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// anchorTolerance absorbs rounding noise when checking outgoing totals
// against the physically available anchor stock.
var anchorTolerance = decimal.New(1, -6)

// TransferService generates, persists and edits transfer plans.
type TransferService struct {
	plans  repository.PlanRepository
	psi    repository.PSIRepository
	master repository.MasterRepository
	policy repository.PolicyRepository
	cache  cache.MatrixCache
	engine *engine.Engine
}

func NewTransferService(
	plans repository.PlanRepository,
	psi repository.PSIRepository,
	master repository.MasterRepository,
	policy repository.PolicyRepository,
	cacheImpl cache.MatrixCache,
) *TransferService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopMatrixCache()
	}
	return &TransferService{
		plans:  plans,
		psi:    psi,
		master: master,
		policy: policy,
		cache:  cacheImpl,
		engine: engine.New(),
	}
}

// Preview runs the reallocation engine over the session window without
// persisting anything.
func (s *TransferService) Preview(ctx context.Context, sessionID uuid.UUID, startDate, endDate time.Time) ([]domain.RecommendedMove, error) {
	rows, mains, policy, err := s.loadEngineInputs(ctx, sessionID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return s.engine.RecommendPlanLines(rows, mains, policy), nil
}

// RunSandbox executes the engine on caller-supplied rows and policy, for
// trying parameter combinations against hypothetical stock states.
func (s *TransferService) RunSandbox(rows []domain.MatrixRow, mains map[string]string, policy domain.ReallocationPolicy) ([]domain.RecommendedMove, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return s.engine.RecommendPlanLines(rows, mains, policy), nil
}

// RecommendPlan runs the engine and persists the result as a draft plan.
func (s *TransferService) RecommendPlan(ctx context.Context, sessionID uuid.UUID, startDate, endDate time.Time) (*domain.TransferPlan, []domain.TransferPlanLine, error) {
	rows, mains, policy, err := s.loadEngineInputs(ctx, sessionID, startDate, endDate)
	if err != nil {
		return nil, nil, err
	}

	moves := s.engine.RecommendPlanLines(rows, mains, policy)

	plan := &domain.TransferPlan{
		PlanID:    uuid.New(),
		SessionID: sessionID,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    "draft",
	}
	lines := make([]domain.TransferPlanLine, 0, len(moves))
	for _, move := range moves {
		reason := move.Reason
		lines = append(lines, domain.TransferPlanLine{
			LineID:        uuid.New(),
			PlanID:        plan.PlanID,
			SKUCode:       move.SKUCode,
			FromWarehouse: move.FromWarehouse,
			FromChannel:   move.FromChannel,
			ToWarehouse:   move.ToWarehouse,
			ToChannel:     move.ToChannel,
			Qty:           move.Qty,
			IsManual:      false,
			Reason:        &reason,
		})
	}

	if err := s.plans.CreatePlan(ctx, plan, lines); err != nil {
		return nil, nil, err
	}
	s.invalidateSession(ctx, sessionID)

	log.Info().
		Str("plan_id", plan.PlanID.String()).
		Str("session_id", sessionID.String()).
		Int("lines", len(lines)).
		Msg("transfer plan created")
	return plan, lines, nil
}

func (s *TransferService) GetPlan(ctx context.Context, planID uuid.UUID) (*domain.TransferPlan, error) {
	return s.plans.GetPlan(ctx, planID)
}

func (s *TransferService) ListPlans(ctx context.Context, sessionID uuid.UUID) ([]domain.TransferPlan, error) {
	return s.plans.ListPlans(ctx, sessionID)
}

func (s *TransferService) GetLines(ctx context.Context, planID uuid.UUID) ([]domain.TransferPlanLine, error) {
	return s.plans.GetLines(ctx, planID)
}

// ReplaceLines swaps the full line set of a plan after validating it against
// the plan window's stock levels.
func (s *TransferService) ReplaceLines(ctx context.Context, planID uuid.UUID, lines []domain.TransferPlanLine) error {
	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		return err
	}

	rows, err := s.psi.FetchMatrix(ctx, domain.MatrixQuery{
		SessionID: plan.SessionID,
		StartDate: plan.StartDate,
		EndDate:   plan.EndDate,
	})
	if err != nil {
		return err
	}
	if err := validatePlanLines(planID, lines, rows); err != nil {
		return err
	}

	if err := s.plans.ReplaceLines(ctx, planID, lines); err != nil {
		return err
	}
	s.invalidateSession(ctx, plan.SessionID)
	return nil
}

func (s *TransferService) UpdateStatus(ctx context.Context, planID uuid.UUID, status string) error {
	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		return err
	}
	if err := s.plans.UpdateStatus(ctx, planID, status); err != nil {
		return err
	}
	s.invalidateSession(ctx, plan.SessionID)
	return nil
}

func (s *TransferService) DeletePlan(ctx context.Context, planID uuid.UUID) error {
	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		return err
	}
	if err := s.plans.DeletePlan(ctx, planID); err != nil {
		return err
	}
	s.invalidateSession(ctx, plan.SessionID)
	return nil
}

func (s *TransferService) loadEngineInputs(ctx context.Context, sessionID uuid.UUID, startDate, endDate time.Time) ([]domain.MatrixRow, map[string]string, domain.ReallocationPolicy, error) {
	rows, err := s.psi.FetchMatrix(ctx, domain.MatrixQuery{
		SessionID: sessionID,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		return nil, nil, domain.ReallocationPolicy{}, err
	}

	mains, err := s.master.MainChannelMap(ctx)
	if err != nil {
		return nil, nil, domain.ReallocationPolicy{}, err
	}

	policy, err := s.policy.Get(ctx)
	if err != nil {
		return nil, nil, domain.ReallocationPolicy{}, err
	}
	return rows, mains, policy, nil
}

func (s *TransferService) invalidateSession(ctx context.Context, sessionID uuid.UUID) {
	if err := s.cache.InvalidateSession(ctx, sessionID); err != nil {
		log.Warn().Err(err).Msg("transfer: matrix cache invalidation failed")
	}
}

// validatePlanLines enforces the structural rules of a plan line set: unique
// line ids, distinct endpoints, positive quantities, and per-cell outgoing
// totals that fit within the stock present at the anchor date.
func validatePlanLines(planID uuid.UUID, lines []domain.TransferPlanLine, rows []domain.MatrixRow) error {
	type cellRef struct {
		sku       string
		warehouse string
		channel   string
	}

	anchors := make(map[cellRef]decimal.Decimal, len(rows))
	for _, row := range rows {
		anchors[cellRef{sku: row.SKUCode, warehouse: row.WarehouseName, channel: row.Channel}] = row.StockAtAnchor
	}

	seen := make(map[uuid.UUID]struct{}, len(lines))
	outgoing := make(map[cellRef]decimal.Decimal)

	for i, line := range lines {
		if line.PlanID != planID {
			return fmt.Errorf("line %d belongs to plan %s, not %s", i, line.PlanID, planID)
		}
		if _, dup := seen[line.LineID]; dup {
			return fmt.Errorf("duplicate line id %s", line.LineID)
		}
		seen[line.LineID] = struct{}{}

		if line.FromWarehouse == line.ToWarehouse && line.FromChannel == line.ToChannel {
			return fmt.Errorf("line %d moves stock onto itself (%s/%s)", i, line.FromWarehouse, line.FromChannel)
		}
		if line.Qty.Sign() <= 0 {
			return fmt.Errorf("line %d has non-positive qty %s", i, line.Qty)
		}

		from := cellRef{sku: line.SKUCode, warehouse: line.FromWarehouse, channel: line.FromChannel}
		outgoing[from] = outgoing[from].Add(line.Qty)
	}

	for ref, total := range outgoing {
		anchor := anchors[ref]
		if total.GreaterThan(anchor.Add(anchorTolerance)) {
			return fmt.Errorf("outgoing total %s exceeds anchor stock %s for %s %s/%s",
				total, anchor, ref.sku, ref.warehouse, ref.channel)
		}
	}
	return nil
}
