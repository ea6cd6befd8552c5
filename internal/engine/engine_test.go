package engine

import (
	"testing"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/shopspring/decimal"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func mrow(sku, warehouse, channel string, anchor, closing, std float64) domain.MatrixRow {
	return domain.MatrixRow{
		SKUCode:       sku,
		WarehouseName: warehouse,
		Channel:       channel,
		StockAtAnchor: dec(anchor),
		StockClosing:  dec(closing),
		StdStock:      dec(std),
	}
}

func totalQty(moves []domain.RecommendedMove) decimal.Decimal {
	total := decimal.Zero
	for _, m := range moves {
		total = total.Add(m.Qty)
	}
	return total
}

func TestGreedyFillsIntraBeforeInter(t *testing.T) {
	rows := []domain.MatrixRow{
		mrow("SKU1", "W1", "online", 20, 20, 100),
		mrow("SKU1", "W1", "wholesale", 150, 150, 50),
		mrow("SKU1", "W2", "ec", 60, 60, 10),
	}
	mains := map[string]string{"W1": "online"}
	policy := domain.DefaultReallocationPolicy()

	moves := RecommendPlanLines(rows, mains, policy)
	if len(moves) != 1 {
		t.Fatalf("expected 1 move, got %d: %+v", len(moves), moves)
	}
	m := moves[0]
	if m.FromWarehouse != "W1" || m.FromChannel != "wholesale" {
		t.Errorf("expected intra-warehouse donor, got %s/%s", m.FromWarehouse, m.FromChannel)
	}
	if !m.Qty.Equal(dec(80)) {
		t.Errorf("expected qty 80, got %s", m.Qty)
	}
	if m.Reason != ReasonIntra {
		t.Errorf("expected reason %q, got %q", ReasonIntra, m.Reason)
	}
}

func TestGreedySpillsToOtherWarehouses(t *testing.T) {
	rows := []domain.MatrixRow{
		mrow("SKU1", "W1", "online", 0, 0, 100),
		mrow("SKU1", "W1", "wholesale", 80, 80, 50),
		mrow("SKU1", "W2", "ec", 150, 150, 50),
	}
	mains := map[string]string{"W1": "online"}
	policy := domain.DefaultReallocationPolicy()

	moves := RecommendPlanLines(rows, mains, policy)
	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %d: %+v", len(moves), moves)
	}
	if !moves[0].Qty.Equal(dec(30)) || moves[0].Reason != ReasonIntra {
		t.Errorf("first move should drain intra surplus 30, got %+v", moves[0])
	}
	if !moves[1].Qty.Equal(dec(70)) || moves[1].Reason != ReasonInter {
		t.Errorf("second move should pull 70 across warehouses, got %+v", moves[1])
	}
	if !totalQty(moves).Equal(dec(100)) {
		t.Errorf("shortage of 100 should be fully covered, moved %s", totalQty(moves))
	}
}

func TestGreedyServesLargestShortageFirst(t *testing.T) {
	rows := []domain.MatrixRow{
		mrow("SKU1", "W1", "online", 20, 20, 100),
		mrow("SKU1", "W2", "online", 50, 50, 100),
		mrow("SKU1", "W3", "outlet", 150, 150, 50),
	}
	mains := map[string]string{"W1": "online", "W2": "online", "W3": "store"}
	policy := domain.DefaultReallocationPolicy()

	moves := RecommendPlanLines(rows, mains, policy)
	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %d: %+v", len(moves), moves)
	}
	if moves[0].ToWarehouse != "W1" || !moves[0].Qty.Equal(dec(80)) {
		t.Errorf("W1 (shortage 80) should be served first with 80, got %+v", moves[0])
	}
	if moves[1].ToWarehouse != "W2" || !moves[1].Qty.Equal(dec(20)) {
		t.Errorf("W2 should receive the leftover 20, got %+v", moves[1])
	}
}

func TestGreedyPrefersLargestDonor(t *testing.T) {
	rows := []domain.MatrixRow{
		mrow("SKU1", "W1", "online", 0, 0, 100),
		mrow("SKU1", "W2", "a", 80, 80, 50),
		mrow("SKU1", "W2", "b", 120, 120, 50),
	}
	mains := map[string]string{"W1": "online"}
	policy := domain.DefaultReallocationPolicy()

	moves := RecommendPlanLines(rows, mains, policy)
	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %d: %+v", len(moves), moves)
	}
	if moves[0].FromChannel != "b" || !moves[0].Qty.Equal(dec(70)) {
		t.Errorf("largest surplus (b=70) should donate first, got %+v", moves[0])
	}
	if moves[1].FromChannel != "a" || !moves[1].Qty.Equal(dec(30)) {
		t.Errorf("remaining 30 should come from a, got %+v", moves[1])
	}
}

func TestGreedyOtherMainGate(t *testing.T) {
	rows := []domain.MatrixRow{
		mrow("SKU1", "W1", "online", 50, 50, 100),
		mrow("SKU1", "W2", "online", 90, 90, 50),
	}
	mains := map[string]string{"W1": "online", "W2": "online"}

	policy := domain.DefaultReallocationPolicy()
	moves := RecommendPlanLines(rows, mains, policy)
	if len(moves) != 0 {
		t.Fatalf("other-main donor must stay untouched by default, got %+v", moves)
	}
	if moves == nil {
		t.Fatal("expected empty slice, got nil")
	}

	policy.TakeFromOtherMain = true
	moves = RecommendPlanLines(rows, mains, policy)
	if len(moves) != 1 {
		t.Fatalf("expected 1 move with take_from_other_main, got %d: %+v", len(moves), moves)
	}
	if !moves[0].Qty.Equal(dec(40)) || moves[0].Reason != ReasonInterMain {
		t.Errorf("expected 40 units from the other main channel, got %+v", moves[0])
	}
}

func TestGreedyDonorNeverShipsMoreThanAnchorStock(t *testing.T) {
	rows := []domain.MatrixRow{
		mrow("SKU1", "W1", "online", 0, 0, 100),
		mrow("SKU1", "W1", "direct", 30, 500, 50),
	}
	mains := map[string]string{"W1": "online"}
	policy := domain.DefaultReallocationPolicy()

	moves := RecommendPlanLines(rows, mains, policy)
	if len(moves) != 1 {
		t.Fatalf("expected 1 move, got %d: %+v", len(moves), moves)
	}
	if !moves[0].Qty.Equal(dec(30)) {
		t.Errorf("donor only holds 30 units at the anchor date, got %s", moves[0].Qty)
	}
}

func TestGreedyCeilRoundingClampedToCapacity(t *testing.T) {
	rows := []domain.MatrixRow{
		mrow("SKU1", "W1", "online", 89.5, 89.5, 100),
		mrow("SKU1", "W1", "direct", 150, 150, 50),
	}
	mains := map[string]string{"W1": "online"}
	policy := domain.DefaultReallocationPolicy()
	policy.RoundingMode = domain.RoundingCeil

	moves := RecommendPlanLines(rows, mains, policy)
	if len(moves) != 1 {
		t.Fatalf("expected 1 move, got %d: %+v", len(moves), moves)
	}
	// Shortage is 10.5; ceiling to 11 would overshoot the standard level, so
	// the quantity falls back to the floored room.
	if !moves[0].Qty.Equal(dec(10)) {
		t.Errorf("expected clamped qty 10, got %s", moves[0].Qty)
	}
}

func TestGreedyDeficitBasisSwitch(t *testing.T) {
	rows := []domain.MatrixRow{
		mrow("SKU1", "W1", "online", 20, 100, 100),
		mrow("SKU1", "W1", "direct", 200, 200, 50),
	}
	mains := map[string]string{"W1": "online"}

	policy := domain.DefaultReallocationPolicy()
	if moves := RecommendPlanLines(rows, mains, policy); len(moves) != 0 {
		t.Fatalf("closing basis sees no shortage, got %+v", moves)
	}

	policy.DeficitBasis = domain.DeficitBasisStart
	moves := RecommendPlanLines(rows, mains, policy)
	if len(moves) != 1 || !moves[0].Qty.Equal(dec(80)) {
		t.Fatalf("start basis shortage of 80 should be filled, got %+v", moves)
	}
}

func TestStoredGapIsIgnored(t *testing.T) {
	short := mrow("SKU1", "W1", "online", 20, 20, 100)
	short.Gap = dec(999) // stale stored value must not be trusted
	donor := mrow("SKU1", "W1", "direct", 150, 150, 50)
	donor.Gap = dec(-999)

	moves := RecommendPlanLines(
		[]domain.MatrixRow{short, donor},
		map[string]string{"W1": "online"},
		domain.DefaultReallocationPolicy(),
	)
	if len(moves) != 1 || !moves[0].Qty.Equal(dec(80)) {
		t.Fatalf("shortage must be recomputed from stock levels, got %+v", moves)
	}
}

func TestNoDonorsYieldsEmptyPlan(t *testing.T) {
	rows := []domain.MatrixRow{
		mrow("SKU1", "W1", "online", 10, 10, 100),
		mrow("SKU1", "W1", "direct", 30, 30, 50),
	}
	moves := RecommendPlanLines(rows, map[string]string{"W1": "online"}, domain.DefaultReallocationPolicy())
	if moves == nil || len(moves) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", moves)
	}
}

func TestGroupsDoNotMixSKUs(t *testing.T) {
	rows := []domain.MatrixRow{
		mrow("SKU1", "W1", "online", 0, 0, 100),
		mrow("SKU2", "W1", "direct", 500, 500, 50), // surplus, wrong SKU
	}
	moves := RecommendPlanLines(rows, map[string]string{"W1": "online"}, domain.DefaultReallocationPolicy())
	if len(moves) != 0 {
		t.Fatalf("surplus of another SKU must not cover the shortage, got %+v", moves)
	}
}

func TestRecommendIsDeterministic(t *testing.T) {
	rows := []domain.MatrixRow{
		mrow("SKU1", "W1", "online", 20, 20, 100),
		mrow("SKU1", "W2", "online", 50, 50, 100),
		mrow("SKU1", "W3", "a", 90, 90, 50),
		mrow("SKU1", "W3", "b", 90, 90, 50),
		mrow("SKU2", "W1", "online", 0, 0, 10),
		mrow("SKU2", "W2", "c", 25, 25, 5),
	}
	mains := map[string]string{"W1": "online", "W2": "online", "W3": "x"}
	policy := domain.DefaultReallocationPolicy()

	first := RecommendPlanLines(rows, mains, policy)
	for i := 0; i < 20; i++ {
		again := RecommendPlanLines(rows, mains, policy)
		if len(again) != len(first) {
			t.Fatalf("run %d: %d moves vs %d", i, len(again), len(first))
		}
		for j := range first {
			a, b := first[j], again[j]
			if a.SKUCode != b.SKUCode ||
				a.FromWarehouse != b.FromWarehouse || a.FromChannel != b.FromChannel ||
				a.ToWarehouse != b.ToWarehouse || a.ToChannel != b.ToChannel ||
				!a.Qty.Equal(b.Qty) || a.Reason != b.Reason {
				t.Fatalf("run %d move %d differs: %+v vs %+v", i, j, a, b)
			}
		}
	}
}
