package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session is a named planning workspace; every PSI record belongs to one.
type Session struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	IsLeader    bool      `json:"is_leader" db:"is_leader"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Warehouse defines a stocking location and its designated main sales channel.
type Warehouse struct {
	WarehouseName string  `json:"warehouse_name" db:"warehouse_name"`
	Region        *string `json:"region" db:"region"`
	MainChannel   *string `json:"main_channel" db:"main_channel"`
}

// Channel is a sales channel shared across warehouses.
type Channel struct {
	Channel     string  `json:"channel" db:"channel"`
	DisplayName *string `json:"display_name" db:"display_name"`
}

// PSIBaseRecord is one imported daily stock/flow observation for a
// SKU x warehouse x channel cell.
type PSIBaseRecord struct {
	SessionID     uuid.UUID       `json:"session_id" db:"session_id"`
	SKUCode       string          `json:"sku_code" db:"sku_code"`
	SKUName       *string         `json:"sku_name" db:"sku_name"`
	WarehouseName string          `json:"warehouse_name" db:"warehouse_name"`
	Channel       string          `json:"channel" db:"channel"`
	Date          time.Time       `json:"date" db:"date"`
	StockAtAnchor decimal.Decimal `json:"stock_at_anchor" db:"stock_at_anchor"`
	InboundQty    decimal.Decimal `json:"inbound_qty" db:"inbound_qty"`
	OutboundQty   decimal.Decimal `json:"outbound_qty" db:"outbound_qty"`
	StockClosing  decimal.Decimal `json:"stock_closing" db:"stock_closing"`
	StdStock      decimal.Decimal `json:"stdstock" db:"stdstock"`
}

// MatrixRow is the aggregated PSI state of one SKU x warehouse x channel cell
// over a date window. Gap is signed (negative means shortage against the
// standard stock); Move is the net committed plan movement and StockFin the
// closing stock with that movement applied.
type MatrixRow struct {
	SKUCode       string          `json:"sku_code" db:"sku_code"`
	SKUName       *string         `json:"sku_name" db:"sku_name"`
	WarehouseName string          `json:"warehouse_name" db:"warehouse_name"`
	Channel       string          `json:"channel" db:"channel"`
	StockAtAnchor decimal.Decimal `json:"stock_at_anchor" db:"stock_at_anchor"`
	InboundQty    decimal.Decimal `json:"inbound_qty" db:"inbound_qty"`
	OutboundQty   decimal.Decimal `json:"outbound_qty" db:"outbound_qty"`
	StockClosing  decimal.Decimal `json:"stock_closing" db:"stock_closing"`
	StdStock      decimal.Decimal `json:"stdstock" db:"stdstock"`
	Gap           decimal.Decimal `json:"gap" db:"gap"`
	Move          decimal.Decimal `json:"move" db:"move"`
	StockFin      decimal.Decimal `json:"stock_fin" db:"stock_fin"`
}

// MatrixQuery selects the scope of a matrix aggregation.
type MatrixQuery struct {
	SessionID  uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
	PlanID     *uuid.UUID
	SKUCodes   []string
	Warehouses []string
	Channels   []string
}
