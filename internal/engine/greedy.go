package engine

import (
	"sort"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Reason tags identify the donor bucket a move was sourced from.
const (
	ReasonIntra     = "fill main channel (intra)"
	ReasonInter     = "fill main channel (inter)"
	ReasonInterMain = "fill main channel (inter main)"

	ReasonFairIntra     = "fair share (intra)"
	ReasonFairInter     = "fair share (inter)"
	ReasonFairInterMain = "fair share (inter main)"
)

type shortageTarget struct {
	warehouse string
	channel   string
	amount    decimal.Decimal
}

func isMainCell(mainChannels map[string]string, key cellKey) bool {
	main, ok := mainChannels[key.warehouse]
	return ok && main == key.channel
}

// mainShortages returns the shortage targets of one SKU group, largest first.
// Warehouses are visited in name order so ties break deterministically.
func mainShortages(group *skuCells, mainChannels map[string]string) []shortageTarget {
	warehouses := make([]string, 0, len(mainChannels))
	for warehouse := range mainChannels {
		warehouses = append(warehouses, warehouse)
	}
	sort.Strings(warehouses)

	var targets []shortageTarget
	for _, warehouse := range warehouses {
		main := mainChannels[warehouse]
		cell, ok := group.cells[cellKey{warehouse: warehouse, channel: main}]
		if !ok {
			continue
		}
		if short := cell.shortage(); short.Sign() > 0 {
			targets = append(targets, shortageTarget{warehouse: warehouse, channel: main, amount: short})
		}
	}
	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].amount.GreaterThan(targets[j].amount)
	})
	return targets
}

// collectDonors gathers cells matching the bucket predicate that still have
// surplus to give, ordered largest-available-first (stable on row order).
func collectDonors(group *skuCells, match func(cellKey) bool) []cellKey {
	var keys []cellKey
	for _, key := range group.order {
		if !match(key) {
			continue
		}
		if group.cells[key].availableSurplus().Sign() > 0 {
			keys = append(keys, key)
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return group.cells[keys[i]].availableSurplus().GreaterThan(group.cells[keys[j]].availableSurplus())
	})
	return keys
}

// allocateGreedy fills main-channel shortages largest-first from three donor
// buckets in strict priority order: same-warehouse non-main cells, other
// warehouses' non-main cells, and finally other warehouses' main cells when
// the policy permits raiding them.
func (e *Engine) allocateGreedy(
	group *skuCells,
	mainChannels map[string]string,
	policy domain.ReallocationPolicy,
) []domain.RecommendedMove {
	var moves []domain.RecommendedMove

	for _, target := range mainShortages(group, mainChannels) {
		receiver := group.cells[cellKey{warehouse: target.warehouse, channel: target.channel}]
		remaining := target.amount

		buckets := []struct {
			reason string
			match  func(cellKey) bool
		}{
			{ReasonIntra, func(k cellKey) bool {
				return k.warehouse == target.warehouse && k.channel != target.channel
			}},
			{ReasonInter, func(k cellKey) bool {
				return k.warehouse != target.warehouse && !isMainCell(mainChannels, k)
			}},
		}
		if policy.TakeFromOtherMain {
			buckets = append(buckets, struct {
				reason string
				match  func(cellKey) bool
			}{ReasonInterMain, func(k cellKey) bool {
				return k.warehouse != target.warehouse && isMainCell(mainChannels, k)
			}})
		}

		for _, bucket := range buckets {
			if remaining.Sign() <= 0 {
				break
			}
			var blocked bool
			moves, remaining, blocked = e.fillFromBucket(
				moves, group, receiver, target, collectDonors(group, bucket.match), remaining, bucket.reason, policy,
			)
			if blocked {
				// A receiver with no room left cannot take from any later
				// bucket either; observed behavior is to stop the whole
				// target, not just this bucket.
				break
			}
		}

		if remaining.Sign() > 0 {
			log.Debug().
				Str("sku", group.sku).
				Str("warehouse", target.warehouse).
				Str("channel", target.channel).
				Str("unfilled", remaining.String()).
				Msg("greedy reallocation left shortage unfilled")
		}
	}

	return moves
}

func (e *Engine) fillFromBucket(
	moves []domain.RecommendedMove,
	group *skuCells,
	receiver *cellState,
	target shortageTarget,
	donors []cellKey,
	remaining decimal.Decimal,
	reason string,
	policy domain.ReallocationPolicy,
) ([]domain.RecommendedMove, decimal.Decimal, bool) {
	for _, key := range donors {
		if remaining.Sign() <= 0 {
			break
		}
		donor := group.cells[key]
		available := donor.availableSurplus()
		if available.Sign() <= 0 {
			continue
		}

		qty := decimal.Min(available, remaining)
		room := decimal.Decimal{}
		if !policy.AllowOverfill {
			room = receiver.remainingCapacity()
			if room.Sign() <= 0 {
				return moves, remaining, true
			}
			qty = decimal.Min(qty, room)
		}

		qty = roundToUnit(qty, policy.RoundingMode)
		// Rounding up must not create stock out of thin air, nor push the
		// receiver past its standard level.
		if qty.GreaterThan(available) {
			qty = available.Floor()
		}
		if !policy.AllowOverfill && qty.GreaterThan(room) {
			qty = room.Floor()
		}
		if qty.Sign() <= 0 {
			continue
		}

		moves = append(moves, domain.RecommendedMove{
			SKUCode:       group.sku,
			FromWarehouse: key.warehouse,
			FromChannel:   key.channel,
			ToWarehouse:   target.warehouse,
			ToChannel:     target.channel,
			Qty:           qty,
			Reason:        reason,
		})
		donor.allocate(qty)
		receiver.receive(qty)
		remaining = remaining.Sub(qty)
	}
	return moves, remaining, false
}
