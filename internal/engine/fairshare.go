package engine

import (
	"sort"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// fairReceiver is the per-receiver working state of one fair-share run.
type fairReceiver struct {
	key  cellKey
	cell *cellState
	// base is the ratio reference stock, chosen by the fair-share mode
	// (closing or start). It is deliberately independent of the deficit
	// basis that defines shortage and capacity.
	base          decimal.Decimal
	std           decimal.Decimal
	maxReceivable decimal.Decimal
	need          decimal.Decimal
	planned       decimal.Decimal
}

func (r *fairReceiver) ratio() decimal.Decimal {
	return r.base.Div(r.std)
}

// needAt computes the receiver's entitlement gap at fill ratio lambda:
// how much stock it would take to lift base up to std*lambda, bounded below
// by zero and, when overfill is forbidden, above by the remaining capacity.
func (r *fairReceiver) needAt(lambda decimal.Decimal, allowOverfill bool) decimal.Decimal {
	target := r.std.Mul(lambda)
	if !allowOverfill && target.GreaterThan(r.std) {
		target = r.std
	}
	need := target.Sub(r.base)
	if need.Sign() < 0 {
		return decimal.Zero
	}
	if !allowOverfill && need.GreaterThan(r.maxReceivable) {
		return r.maxReceivable
	}
	return need
}

// allocateFairShare distributes the available donor surplus across all
// shortage targets of one SKU so every receiver lands on the same
// reference-stock-to-standard ratio. The common ratio is found by bisection:
// total need as a function of the ratio is piecewise linear and monotonic,
// but per-receiver caps make it non-invertible in closed form.
func (e *Engine) allocateFairShare(
	group *skuCells,
	mainChannels map[string]string,
	policy domain.ReallocationPolicy,
) []domain.RecommendedMove {
	receivers := e.fairReceivers(group, mainChannels, policy)
	if len(receivers) == 0 {
		return nil
	}

	totalAvailable := decimal.Zero
	for _, key := range group.order {
		if isMainCell(mainChannels, key) && !policy.TakeFromOtherMain {
			continue
		}
		totalAvailable = totalAvailable.Add(group.cells[key].availableSurplus())
	}
	if totalAvailable.Sign() <= 0 {
		for _, r := range receivers {
			log.Debug().
				Str("sku", group.sku).
				Str("warehouse", r.key.warehouse).
				Str("channel", r.key.channel).
				Strs("blocked", []string{"no_donor"}).
				Msg("fair share: nothing to distribute")
		}
		return nil
	}

	effectiveTotal := totalAvailable
	if !policy.AllowOverfill {
		capacity := decimal.Zero
		for _, r := range receivers {
			capacity = capacity.Add(r.maxReceivable)
		}
		effectiveTotal = decimal.Min(effectiveTotal, capacity)
	}
	availableUnits := effectiveTotal.Floor()
	if availableUnits.Sign() <= 0 {
		return nil
	}

	lambda := e.solveFillRatio(receivers, effectiveTotal, policy.AllowOverfill)
	for _, r := range receivers {
		r.need = r.needAt(lambda, policy.AllowOverfill)
		r.planned = roundToUnit(r.need, policy.RoundingMode)
		if !policy.AllowOverfill && r.planned.GreaterThan(r.maxReceivable) {
			r.planned = r.maxReceivable.Floor()
		}
	}
	e.reconcileRounding(receivers, availableUnits, policy.AllowOverfill)

	return e.executeFairShare(group, mainChannels, receivers, policy)
}

// fairReceivers builds the receiver list: one per warehouse whose main
// channel is short of its (positive) standard level.
func (e *Engine) fairReceivers(
	group *skuCells,
	mainChannels map[string]string,
	policy domain.ReallocationPolicy,
) []*fairReceiver {
	warehouses := make([]string, 0, len(mainChannels))
	for warehouse := range mainChannels {
		warehouses = append(warehouses, warehouse)
	}
	sort.Strings(warehouses)

	var receivers []*fairReceiver
	for _, warehouse := range warehouses {
		key := cellKey{warehouse: warehouse, channel: mainChannels[warehouse]}
		cell, ok := group.cells[key]
		if !ok || cell.stdStock.Sign() <= 0 {
			continue
		}
		short := cell.shortage()
		if short.Sign() <= 0 {
			continue
		}
		r := &fairReceiver{
			key:  key,
			cell: cell,
			base: cell.refStock(policy.FairShareMode),
			std:  cell.stdStock,
		}
		if !policy.AllowOverfill {
			r.maxReceivable = cell.remainingCapacity()
		}
		receivers = append(receivers, r)
	}
	return receivers
}

// solveFillRatio finds the smallest fill ratio whose total need meets the
// transferable supply. The upper bound is expanded by doubling first; both
// phases are iteration-capped per the engine config.
func (e *Engine) solveFillRatio(
	receivers []*fairReceiver,
	effectiveTotal decimal.Decimal,
	allowOverfill bool,
) decimal.Decimal {
	totalNeedAt := func(lambda decimal.Decimal) decimal.Decimal {
		total := decimal.Zero
		for _, r := range receivers {
			total = total.Add(r.needAt(lambda, allowOverfill))
		}
		return total
	}

	low := decimal.Zero
	for i, r := range receivers {
		ratio := r.ratio()
		if i == 0 || ratio.LessThan(low) {
			low = ratio
		}
	}
	if low.Sign() < 0 {
		low = decimal.Zero
	}

	if totalNeedAt(low).GreaterThanOrEqual(effectiveTotal) {
		return low
	}

	high := low
	if high.Sign() <= 0 {
		high = one
	}
	for i := 0; i < e.cfg.MaxDoubleSteps; i++ {
		if totalNeedAt(high).GreaterThanOrEqual(effectiveTotal) {
			break
		}
		if high.GreaterThan(e.cfg.LambdaCeiling) {
			break
		}
		high = high.Mul(decimal.NewFromInt(2))
	}

	for i := 0; i < e.cfg.MaxBisectSteps; i++ {
		if high.Sub(low).LessThanOrEqual(e.cfg.Quant) {
			break
		}
		mid := low.Add(high).Div(decimal.NewFromInt(2))
		if totalNeedAt(mid).GreaterThanOrEqual(effectiveTotal) {
			high = mid
		} else {
			low = mid
		}
	}
	return high
}

// reconcileRounding absorbs the drift between the integer supply and the sum
// of rounded per-receiver plans by nudging plans one unit at a time,
// neediest receivers first, without breaching capacity or going negative.
func (e *Engine) reconcileRounding(
	receivers []*fairReceiver,
	availableUnits decimal.Decimal,
	allowOverfill bool,
) {
	planned := decimal.Zero
	for _, r := range receivers {
		planned = planned.Add(r.planned)
	}
	diff := availableUnits.Sub(planned)

	order := make([]*fairReceiver, len(receivers))
	copy(order, receivers)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].need.GreaterThan(order[j].need)
	})

	for diff.Sign() != 0 {
		progress := false
		for _, r := range order {
			if diff.Sign() > 0 {
				if !allowOverfill && r.planned.Add(one).GreaterThan(r.maxReceivable) {
					continue
				}
				r.planned = r.planned.Add(one)
				diff = diff.Sub(one)
			} else {
				if r.planned.Sign() <= 0 {
					continue
				}
				r.planned = r.planned.Sub(one)
				diff = diff.Add(one)
			}
			progress = true
			if diff.Sign() == 0 {
				break
			}
		}
		if !progress {
			break
		}
	}
}

// executeFairShare consumes donors against the rounded plans, neediest
// (lowest ratio) receivers first, walking the same bucket ladder as the
// greedy strategy. Plans are already integral, so donor draws are floored
// rather than re-rounded.
func (e *Engine) executeFairShare(
	group *skuCells,
	mainChannels map[string]string,
	receivers []*fairReceiver,
	policy domain.ReallocationPolicy,
) []domain.RecommendedMove {
	order := make([]*fairReceiver, len(receivers))
	copy(order, receivers)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].ratio().LessThan(order[j].ratio())
	})

	var moves []domain.RecommendedMove
	for _, r := range order {
		remaining := r.planned

		buckets := []struct {
			reason string
			match  func(cellKey) bool
		}{
			{ReasonFairIntra, func(k cellKey) bool {
				return k.warehouse == r.key.warehouse && k.channel != r.key.channel
			}},
			{ReasonFairInter, func(k cellKey) bool {
				return k.warehouse != r.key.warehouse && !isMainCell(mainChannels, k)
			}},
		}
		if policy.TakeFromOtherMain {
			buckets = append(buckets, struct {
				reason string
				match  func(cellKey) bool
			}{ReasonFairInterMain, func(k cellKey) bool {
				return k.warehouse != r.key.warehouse && isMainCell(mainChannels, k)
			}})
		}

		for _, bucket := range buckets {
			if remaining.Sign() <= 0 {
				break
			}
			for _, key := range collectDonors(group, bucket.match) {
				if remaining.Sign() <= 0 {
					break
				}
				donor := group.cells[key]
				qty := decimal.Min(donor.availableSurplus(), remaining).Floor()
				if qty.Sign() <= 0 {
					continue
				}
				moves = append(moves, domain.RecommendedMove{
					SKUCode:       group.sku,
					FromWarehouse: key.warehouse,
					FromChannel:   key.channel,
					ToWarehouse:   r.key.warehouse,
					ToChannel:     r.key.channel,
					Qty:           qty,
					Reason:        bucket.reason,
				})
				donor.allocate(qty)
				r.cell.receive(qty)
				remaining = remaining.Sub(qty)
			}
		}

		if remaining.Sign() > 0 {
			log.Debug().
				Str("sku", group.sku).
				Str("warehouse", r.key.warehouse).
				Str("channel", r.key.channel).
				Str("unmet", remaining.String()).
				Strs("blocked", []string{"no_donor"}).
				Msg("fair share: plan not fully sourced")
		}
	}
	return moves
}
