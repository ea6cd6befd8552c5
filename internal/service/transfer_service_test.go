package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/CHOISC1208/psi-erp/internal/repository/postgres"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func engineRow(sku, wh, ch string, anchor, closing, std float64) domain.MatrixRow {
	return domain.MatrixRow{
		SKUCode:       sku,
		WarehouseName: wh,
		Channel:       ch,
		StockAtAnchor: decimal.NewFromFloat(anchor),
		StockClosing:  decimal.NewFromFloat(closing),
		StdStock:      decimal.NewFromFloat(std),
	}
}

func newTransferFixture(rows []domain.MatrixRow) (*TransferService, *fakePlanRepo, *fakeMatrixCache) {
	plans := newFakePlanRepo()
	cacheImpl := &fakeMatrixCache{}
	svc := NewTransferService(
		plans,
		&fakePSIRepo{matrix: rows},
		&fakeMasterRepo{mains: map[string]string{"W1": "online", "W2": "online"}},
		&fakePolicyRepo{policy: domain.DefaultReallocationPolicy()},
		cacheImpl,
	)
	return svc, plans, cacheImpl
}

func TestRecommendPlanPersistsDraft(t *testing.T) {
	rows := []domain.MatrixRow{
		// W1 main channel is 40 short of standard, W2 retail holds surplus.
		engineRow("SKU-1", "W1", "online", 10, 10, 50),
		engineRow("SKU-1", "W2", "retail", 100, 100, 0),
	}
	svc, plans, cacheImpl := newTransferFixture(rows)

	sessionID := uuid.New()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 13)

	plan, lines, err := svc.RecommendPlan(context.Background(), sessionID, start, end)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Status != "draft" {
		t.Fatalf("status = %q, want draft", plan.Status)
	}
	if plan.SessionID != sessionID || !plan.StartDate.Equal(start) || !plan.EndDate.Equal(end) {
		t.Fatalf("plan window mismatch: %+v", plan)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	line := lines[0]
	if line.IsManual {
		t.Fatal("engine lines must not be marked manual")
	}
	if line.Reason == nil || *line.Reason == "" {
		t.Fatal("engine lines carry a reason")
	}
	if !line.Qty.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("qty = %s, want 40", line.Qty)
	}

	stored, err := plans.GetLines(context.Background(), plan.PlanID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 {
		t.Fatalf("plan lines not persisted, got %d", len(stored))
	}
	if cacheImpl.invalidated != 1 {
		t.Fatal("creating a plan must invalidate the session cache")
	}
}

func TestPreviewDoesNotPersist(t *testing.T) {
	rows := []domain.MatrixRow{
		engineRow("SKU-1", "W1", "online", 10, 10, 50),
		engineRow("SKU-1", "W2", "retail", 100, 100, 0),
	}
	svc, plans, _ := newTransferFixture(rows)

	moves, err := svc.Preview(context.Background(), uuid.New(), time.Now(), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 1 {
		t.Fatalf("expected 1 move, got %d", len(moves))
	}
	if len(plans.plans) != 0 {
		t.Fatal("preview must not create plans")
	}
}

func TestRunSandboxRejectsInvalidPolicy(t *testing.T) {
	svc, _, _ := newTransferFixture(nil)
	bad := domain.DefaultReallocationPolicy()
	bad.RoundingMode = "truncate"
	if _, err := svc.RunSandbox(nil, nil, bad); err == nil {
		t.Fatal("invalid rounding mode must be rejected")
	}
}

func TestReplaceLinesValidatesAgainstAnchorStock(t *testing.T) {
	rows := []domain.MatrixRow{
		engineRow("SKU-1", "W1", "online", 10, 10, 50),
		engineRow("SKU-1", "W2", "retail", 100, 100, 0),
	}
	svc, plans, _ := newTransferFixture(rows)

	sessionID := uuid.New()
	plan, _, err := svc.RecommendPlan(context.Background(), sessionID, time.Now(), time.Now())
	if err != nil {
		t.Fatal(err)
	}

	line := func(qty int64) domain.TransferPlanLine {
		return domain.TransferPlanLine{
			LineID:        uuid.New(),
			PlanID:        plan.PlanID,
			SKUCode:       "SKU-1",
			FromWarehouse: "W2",
			FromChannel:   "retail",
			ToWarehouse:   "W1",
			ToChannel:     "online",
			Qty:           decimal.NewFromInt(qty),
			IsManual:      true,
		}
	}

	if err := svc.ReplaceLines(context.Background(), plan.PlanID, []domain.TransferPlanLine{line(60)}); err != nil {
		t.Fatalf("60 within anchor 100 must pass: %v", err)
	}
	if err := svc.ReplaceLines(context.Background(), plan.PlanID, []domain.TransferPlanLine{line(70), line(70)}); err == nil {
		t.Fatal("combined outgoing 140 exceeds anchor 100")
	}
	if err := svc.ReplaceLines(context.Background(), plan.PlanID, []domain.TransferPlanLine{line(0)}); err == nil {
		t.Fatal("zero qty must be rejected")
	}

	self := line(5)
	self.ToWarehouse = "W2"
	self.ToChannel = "retail"
	if err := svc.ReplaceLines(context.Background(), plan.PlanID, []domain.TransferPlanLine{self}); err == nil {
		t.Fatal("self-moves must be rejected")
	}

	foreign := line(5)
	foreign.PlanID = uuid.New()
	if err := svc.ReplaceLines(context.Background(), plan.PlanID, []domain.TransferPlanLine{foreign}); err == nil {
		t.Fatal("lines of another plan must be rejected")
	}

	dup := line(5)
	if err := svc.ReplaceLines(context.Background(), plan.PlanID, []domain.TransferPlanLine{dup, dup}); err == nil {
		t.Fatal("duplicate line ids must be rejected")
	}

	stored, err := plans.GetLines(context.Background(), plan.PlanID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || !stored[0].Qty.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("only the valid replacement should persist, got %+v", stored)
	}
}

func TestReplaceLinesUnknownPlan(t *testing.T) {
	svc, _, _ := newTransferFixture(nil)
	err := svc.ReplaceLines(context.Background(), uuid.New(), nil)
	if !errors.Is(err, postgres.ErrPlanNotFound) {
		t.Fatalf("err = %v, want ErrPlanNotFound", err)
	}
}

func TestDeletePlanInvalidatesSession(t *testing.T) {
	rows := []domain.MatrixRow{
		engineRow("SKU-1", "W1", "online", 10, 10, 50),
		engineRow("SKU-1", "W2", "retail", 100, 100, 0),
	}
	svc, plans, cacheImpl := newTransferFixture(rows)

	sessionID := uuid.New()
	plan, _, err := svc.RecommendPlan(context.Background(), sessionID, time.Now(), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeletePlan(context.Background(), plan.PlanID); err != nil {
		t.Fatal(err)
	}
	if _, err := plans.GetPlan(context.Background(), plan.PlanID); !errors.Is(err, postgres.ErrPlanNotFound) {
		t.Fatal("plan should be gone")
	}
	if cacheImpl.invalidated != 2 {
		t.Fatalf("invalidations = %d, want 2 (create and delete)", cacheImpl.invalidated)
	}
	if cacheImpl.invalidLastA != sessionID {
		t.Fatal("delete must invalidate the owning session")
	}
}
