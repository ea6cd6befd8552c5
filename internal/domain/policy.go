package domain

import (
	"fmt"
	"time"
)

// RoundingMode controls how recommended quantities are quantized to whole units.
type RoundingMode string

const (
	RoundingFloor RoundingMode = "floor"
	RoundingHalf  RoundingMode = "round"
	RoundingCeil  RoundingMode = "ceil"
)

// FairShareMode selects the allocation strategy of the reallocation engine.
type FairShareMode string

const (
	FairShareOff          FairShareMode = "off"
	FairShareRatioClosing FairShareMode = "equalize_ratio_closing"
	FairShareRatioStart   FairShareMode = "equalize_ratio_start"
)

// DeficitBasis selects which stock figure defines shortages and surpluses.
type DeficitBasis string

const (
	DeficitBasisStart   DeficitBasis = "start"
	DeficitBasisClosing DeficitBasis = "closing"
)

// ReallocationPolicy is the single global configuration row steering the
// reallocation engine. UpdatedAt/UpdatedBy are audit metadata only.
type ReallocationPolicy struct {
	TakeFromOtherMain bool          `json:"take_from_other_main" db:"take_from_other_main"`
	RoundingMode      RoundingMode  `json:"rounding_mode" db:"rounding_mode"`
	AllowOverfill     bool          `json:"allow_overfill" db:"allow_overfill"`
	FairShareMode     FairShareMode `json:"fair_share_mode" db:"fair_share_mode"`
	DeficitBasis      DeficitBasis  `json:"deficit_basis" db:"deficit_basis"`
	UpdatedAt         *time.Time    `json:"updated_at" db:"updated_at"`
	UpdatedBy         *string       `json:"updated_by" db:"updated_by"`
}

// DefaultReallocationPolicy matches the server defaults of the policy table.
func DefaultReallocationPolicy() ReallocationPolicy {
	return ReallocationPolicy{
		TakeFromOtherMain: false,
		RoundingMode:      RoundingFloor,
		AllowOverfill:     false,
		FairShareMode:     FairShareOff,
		DeficitBasis:      DeficitBasisClosing,
	}
}

// Validate rejects unknown enum values before they reach storage.
func (p ReallocationPolicy) Validate() error {
	switch p.RoundingMode {
	case RoundingFloor, RoundingHalf, RoundingCeil:
	default:
		return fmt.Errorf("invalid rounding_mode %q", p.RoundingMode)
	}
	switch p.FairShareMode {
	case FairShareOff, FairShareRatioClosing, FairShareRatioStart:
	default:
		return fmt.Errorf("invalid fair_share_mode %q", p.FairShareMode)
	}
	switch p.DeficitBasis {
	case DeficitBasisStart, DeficitBasisClosing:
	default:
		return fmt.Errorf("invalid deficit_basis %q", p.DeficitBasis)
	}
	return nil
}
