package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChannelTransfer records stock moved between sales channels within a
// warehouse on a specific date. The six leading fields form the composite key.
type ChannelTransfer struct {
	SessionID     uuid.UUID       `json:"session_id" db:"session_id"`
	SKUCode       string          `json:"sku_code" db:"sku_code"`
	WarehouseName string          `json:"warehouse_name" db:"warehouse_name"`
	TransferDate  time.Time       `json:"transfer_date" db:"transfer_date"`
	FromChannel   string          `json:"from_channel" db:"from_channel"`
	ToChannel     string          `json:"to_channel" db:"to_channel"`
	Qty           decimal.Decimal `json:"qty" db:"qty"`
	Note          *string         `json:"note" db:"note"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// ChannelTransferFilter narrows transfer listings.
type ChannelTransferFilter struct {
	SessionID     *uuid.UUID
	SKUCode       string
	WarehouseName string
	StartDate     *time.Time
	EndDate       *time.Time
}
