package engine

import (
	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/shopspring/decimal"
)

// cellKey identifies one warehouse/channel cell within a SKU group.
type cellKey struct {
	warehouse string
	channel   string
}

// cellState tracks per-call allocation bookkeeping for one matrix cell.
// basisStock is the stock figure selected by the policy's deficit basis;
// surplus and shortage are both derived from it at evaluation time, never
// from the stored gap field. Donor capacity is additionally bounded by the
// physical stock at anchor.
type cellState struct {
	stockAtAnchor    decimal.Decimal
	stockClosing     decimal.Decimal
	basisStock       decimal.Decimal
	stdStock         decimal.Decimal
	surplusRemaining decimal.Decimal
	allocatedOut     decimal.Decimal
	allocatedIn      decimal.Decimal
}

func newCellState(row domain.MatrixRow, basis domain.DeficitBasis) *cellState {
	anchor := row.StockAtAnchor
	if anchor.Sign() < 0 {
		anchor = decimal.Zero
	}
	std := row.StdStock
	if std.Sign() < 0 {
		std = decimal.Zero
	}
	basisStock := row.StockClosing
	if basis == domain.DeficitBasisStart {
		basisStock = row.StockAtAnchor
	}
	surplus := basisStock.Sub(std)
	if surplus.Sign() < 0 {
		surplus = decimal.Zero
	}
	return &cellState{
		stockAtAnchor:    anchor,
		stockClosing:     row.StockClosing,
		basisStock:       basisStock,
		stdStock:         std,
		surplusRemaining: surplus,
	}
}

// availableSurplus is how much this cell can still donate: the unshipped
// surplus, capped by the stock physically present at the anchor date.
func (c *cellState) availableSurplus() decimal.Decimal {
	stockRemaining := c.stockAtAnchor.Sub(c.allocatedOut)
	if stockRemaining.Sign() <= 0 {
		return decimal.Zero
	}
	if c.surplusRemaining.Sign() <= 0 {
		return decimal.Zero
	}
	return decimal.Min(c.surplusRemaining, stockRemaining)
}

func (c *cellState) allocate(qty decimal.Decimal) {
	c.allocatedOut = c.allocatedOut.Add(qty)
	remaining := c.surplusRemaining.Sub(qty)
	if remaining.Sign() < 0 {
		remaining = decimal.Zero
	}
	c.surplusRemaining = remaining
}

func (c *cellState) receive(qty decimal.Decimal) {
	c.allocatedIn = c.allocatedIn.Add(qty)
}

// shortage is how far the basis stock sits below the standard level.
func (c *cellState) shortage() decimal.Decimal {
	short := c.stdStock.Sub(c.basisStock)
	if short.Sign() < 0 {
		return decimal.Zero
	}
	return short
}

// remainingCapacity is the receiver headroom before the projected stock
// would exceed the standard level.
func (c *cellState) remainingCapacity() decimal.Decimal {
	room := c.stdStock.Sub(c.basisStock).Sub(c.allocatedIn)
	if room.Sign() < 0 {
		return decimal.Zero
	}
	return room
}

// refStock is the fair-share ratio reference: closing stock or anchor stock
// depending on the equalization mode.
func (c *cellState) refStock(mode domain.FairShareMode) decimal.Decimal {
	if mode == domain.FairShareRatioStart {
		return c.stockAtAnchor
	}
	return c.stockClosing
}

// skuCells is the per-SKU arena: mutable cell states in first-seen row order.
// It lives for one RecommendPlanLines call and is discarded afterwards.
type skuCells struct {
	sku   string
	cells map[cellKey]*cellState
	order []cellKey
}

func buildArena(rows []domain.MatrixRow, basis domain.DeficitBasis) []*skuCells {
	groups := make(map[string]*skuCells)
	var skuOrder []string
	for _, row := range rows {
		group, ok := groups[row.SKUCode]
		if !ok {
			group = &skuCells{sku: row.SKUCode, cells: make(map[cellKey]*cellState)}
			groups[row.SKUCode] = group
			skuOrder = append(skuOrder, row.SKUCode)
		}
		key := cellKey{warehouse: row.WarehouseName, channel: row.Channel}
		if _, exists := group.cells[key]; !exists {
			group.order = append(group.order, key)
		}
		group.cells[key] = newCellState(row, basis)
	}

	arena := make([]*skuCells, 0, len(skuOrder))
	for _, sku := range skuOrder {
		arena = append(arena, groups[sku])
	}
	return arena
}
