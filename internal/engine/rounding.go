package engine

import (
	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/shopspring/decimal"
)

// roundToUnit quantizes a non-negative quantity to whole units per the policy
// rounding mode. decimal.Round is half-away-from-zero, which equals half-up
// for the non-negative quantities the engine deals in.
func roundToUnit(qty decimal.Decimal, mode domain.RoundingMode) decimal.Decimal {
	switch mode {
	case domain.RoundingCeil:
		return qty.Ceil()
	case domain.RoundingHalf:
		return qty.Round(0)
	default:
		return qty.Floor()
	}
}
