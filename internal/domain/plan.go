package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferPlan is a named set of stock moves generated by the recommendation
// engine (and possibly edited by hand afterwards).
type TransferPlan struct {
	PlanID    uuid.UUID `json:"plan_id" db:"plan_id"`
	SessionID uuid.UUID `json:"session_id" db:"session_id"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TransferPlanLine is a single committed stock move within a plan.
type TransferPlanLine struct {
	LineID        uuid.UUID       `json:"line_id" db:"line_id"`
	PlanID        uuid.UUID       `json:"plan_id" db:"plan_id"`
	SKUCode       string          `json:"sku_code" db:"sku_code"`
	FromWarehouse string          `json:"from_warehouse" db:"from_warehouse"`
	FromChannel   string          `json:"from_channel" db:"from_channel"`
	ToWarehouse   string          `json:"to_warehouse" db:"to_warehouse"`
	ToChannel     string          `json:"to_channel" db:"to_channel"`
	Qty           decimal.Decimal `json:"qty" db:"qty"`
	IsManual      bool            `json:"is_manual" db:"is_manual"`
	Reason        *string         `json:"reason" db:"reason"`
}

// RecommendedMove is one suggested stock transfer emitted by the reallocation
// engine. Qty is always quantized to whole units; Reason names the donor
// bucket the move was sourced from.
type RecommendedMove struct {
	SKUCode       string          `json:"sku_code"`
	FromWarehouse string          `json:"from_warehouse"`
	FromChannel   string          `json:"from_channel"`
	ToWarehouse   string          `json:"to_warehouse"`
	ToChannel     string          `json:"to_channel"`
	Qty           decimal.Decimal `json:"qty"`
	Reason        string          `json:"reason"`
}
