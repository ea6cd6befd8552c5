package service

import (
	"context"
	"time"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/CHOISC1208/psi-erp/internal/repository/postgres"
	"github.com/google/uuid"
)

type fakePSIRepo struct {
	matrix      []domain.MatrixRow
	base        []domain.PSIBaseRecord
	fetchCalls  int
	replaced    []domain.PSIBaseRecord
	replacedFor uuid.UUID
}

func (f *fakePSIRepo) FetchMatrix(ctx context.Context, query domain.MatrixQuery) ([]domain.MatrixRow, error) {
	f.fetchCalls++
	return f.matrix, nil
}

func (f *fakePSIRepo) FetchBaseRecords(ctx context.Context, sessionID uuid.UUID, skuCode string, startDate, endDate time.Time) ([]domain.PSIBaseRecord, error) {
	return f.base, nil
}

func (f *fakePSIRepo) ReplaceBaseRecords(ctx context.Context, sessionID uuid.UUID, records []domain.PSIBaseRecord) (int, error) {
	f.replacedFor = sessionID
	f.replaced = records
	return len(records), nil
}

func (f *fakePSIRepo) AppendBaseRecords(ctx context.Context, records []domain.PSIBaseRecord) (int, error) {
	return len(records), nil
}

type fakeMatrixCache struct {
	rows         []domain.MatrixRow
	populated    bool
	getErr       error
	setErr       error
	gets         int
	sets         int
	invalidated  int
	invalidLastA uuid.UUID
}

func (f *fakeMatrixCache) Get(ctx context.Context, query domain.MatrixQuery) ([]domain.MatrixRow, bool, error) {
	f.gets++
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	if !f.populated {
		return nil, false, nil
	}
	return f.rows, true, nil
}

func (f *fakeMatrixCache) Set(ctx context.Context, query domain.MatrixQuery, rows []domain.MatrixRow) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.rows = rows
	f.populated = true
	return nil
}

func (f *fakeMatrixCache) InvalidateSession(ctx context.Context, sessionID uuid.UUID) error {
	f.invalidated++
	f.invalidLastA = sessionID
	return nil
}

func (f *fakeMatrixCache) InvalidateAll(ctx context.Context) error {
	f.invalidated++
	return nil
}

type fakePlanRepo struct {
	plans map[uuid.UUID]*domain.TransferPlan
	lines map[uuid.UUID][]domain.TransferPlanLine
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{
		plans: make(map[uuid.UUID]*domain.TransferPlan),
		lines: make(map[uuid.UUID][]domain.TransferPlanLine),
	}
}

func (f *fakePlanRepo) CreatePlan(ctx context.Context, plan *domain.TransferPlan, lines []domain.TransferPlanLine) error {
	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	stored := *plan
	f.plans[plan.PlanID] = &stored
	f.lines[plan.PlanID] = append([]domain.TransferPlanLine(nil), lines...)
	return nil
}

func (f *fakePlanRepo) GetPlan(ctx context.Context, planID uuid.UUID) (*domain.TransferPlan, error) {
	plan, ok := f.plans[planID]
	if !ok {
		return nil, postgres.ErrPlanNotFound
	}
	copied := *plan
	return &copied, nil
}

func (f *fakePlanRepo) ListPlans(ctx context.Context, sessionID uuid.UUID) ([]domain.TransferPlan, error) {
	var plans []domain.TransferPlan
	for _, plan := range f.plans {
		if plan.SessionID == sessionID {
			plans = append(plans, *plan)
		}
	}
	return plans, nil
}

func (f *fakePlanRepo) GetLines(ctx context.Context, planID uuid.UUID) ([]domain.TransferPlanLine, error) {
	return f.lines[planID], nil
}

func (f *fakePlanRepo) ReplaceLines(ctx context.Context, planID uuid.UUID, lines []domain.TransferPlanLine) error {
	if _, ok := f.plans[planID]; !ok {
		return postgres.ErrPlanNotFound
	}
	f.lines[planID] = append([]domain.TransferPlanLine(nil), lines...)
	return nil
}

func (f *fakePlanRepo) UpdateStatus(ctx context.Context, planID uuid.UUID, status string) error {
	plan, ok := f.plans[planID]
	if !ok {
		return postgres.ErrPlanNotFound
	}
	plan.Status = status
	return nil
}

func (f *fakePlanRepo) DeletePlan(ctx context.Context, planID uuid.UUID) error {
	if _, ok := f.plans[planID]; !ok {
		return postgres.ErrPlanNotFound
	}
	delete(f.plans, planID)
	delete(f.lines, planID)
	return nil
}

type fakeMasterRepo struct {
	mains map[string]string
}

func (f *fakeMasterRepo) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	return nil, nil
}

func (f *fakeMasterRepo) UpsertWarehouses(ctx context.Context, warehouses []domain.Warehouse) error {
	return nil
}

func (f *fakeMasterRepo) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	return nil, nil
}

func (f *fakeMasterRepo) UpsertChannels(ctx context.Context, channels []domain.Channel) error {
	return nil
}

func (f *fakeMasterRepo) MainChannelMap(ctx context.Context) (map[string]string, error) {
	return f.mains, nil
}

type fakePolicyRepo struct {
	policy domain.ReallocationPolicy
}

func (f *fakePolicyRepo) Get(ctx context.Context) (domain.ReallocationPolicy, error) {
	return f.policy, nil
}

func (f *fakePolicyRepo) Update(ctx context.Context, policy domain.ReallocationPolicy, updatedBy *string) (domain.ReallocationPolicy, error) {
	f.policy = policy
	return policy, nil
}
