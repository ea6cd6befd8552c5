package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

type demoWarehouse struct {
	name        string
	region      string
	mainChannel string
}

type demoChannel struct {
	name        string
	displayName string
}

var demoWarehouses = []demoWarehouse{
	{name: "Tokyo DC", region: "Kanto", mainChannel: "online"},
	{name: "Osaka DC", region: "Kansai", mainChannel: "online"},
	{name: "Fukuoka DC", region: "Kyushu", mainChannel: "retail"},
}

var demoChannels = []demoChannel{
	{name: "online", displayName: "Online store"},
	{name: "retail", displayName: "Retail stores"},
	{name: "wholesale", displayName: "Wholesale"},
}

var demoSKUs = []struct {
	code string
	name string
}{
	{code: "SKU-1001", name: "Cotton tee white M"},
	{code: "SKU-1002", name: "Cotton tee black M"},
	{code: "SKU-2001", name: "Denim jacket L"},
}

// runDemo loads one leader session with masters and a deterministic daily
// PSI series per SKU, warehouse and channel. Re-running updates in place.
func runDemo(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	days := c.Int("days")
	if days < 1 {
		return fmt.Errorf("days must be at least 1, got %d", days)
	}

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sessionID := uuid.New()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, title, description, is_leader)
		VALUES ($1, $2, $3, NOT EXISTS (SELECT 1 FROM sessions WHERE is_leader))
	`, sessionID, "Demo planning session", "Seeded demo data"); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	for _, wh := range demoWarehouses {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO warehouse_master (warehouse_name, region, main_channel)
			VALUES ($1, $2, $3)
			ON CONFLICT (warehouse_name) DO UPDATE SET
				region = EXCLUDED.region,
				main_channel = EXCLUDED.main_channel
		`, wh.name, wh.region, wh.mainChannel); err != nil {
			return fmt.Errorf("failed to insert warehouse %s: %w", wh.name, err)
		}
	}
	for _, ch := range demoChannels {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO channel_master (channel, display_name)
			VALUES ($1, $2)
			ON CONFLICT (channel) DO UPDATE SET display_name = EXCLUDED.display_name
		`, ch.name, ch.displayName); err != nil {
			return fmt.Errorf("failed to insert channel %s: %w", ch.name, err)
		}
	}

	rows, err := seedBaseRows(ctx, tx, sessionID, days)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	log.Printf("Seeded session %s with %d PSI base rows over %d days", sessionID, rows, days)
	return nil
}

// seedBaseRows writes a simple inventory walk: each cell starts from a
// per-warehouse anchor, receives a mid-window inbound and drains daily.
func seedBaseRows(ctx context.Context, tx *sql.Tx, sessionID uuid.UUID, days int) (int, error) {
	start := time.Now().UTC().Truncate(24 * time.Hour)

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO psi_base (
			session_id, sku_code, sku_name, warehouse_name, channel, date,
			stock_at_anchor, inbound_qty, outbound_qty, stock_closing, stdstock
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id, sku_code, warehouse_name, channel, date)
		DO UPDATE SET
			sku_name = EXCLUDED.sku_name,
			stock_at_anchor = EXCLUDED.stock_at_anchor,
			inbound_qty = EXCLUDED.inbound_qty,
			outbound_qty = EXCLUDED.outbound_qty,
			stock_closing = EXCLUDED.stock_closing,
			stdstock = EXCLUDED.stdstock
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare base insert: %w", err)
	}
	defer stmt.Close()

	var rows int
	for wi, wh := range demoWarehouses {
		for si, sku := range demoSKUs {
			for ci, ch := range demoChannels {
				// Skewed anchors make the reallocation engine produce
				// visible moves out of the box.
				anchor := float64(40 + 30*wi + 10*si - 15*ci)
				if anchor < 0 {
					anchor = 0
				}
				stdstock := float64(50 + 10*si)
				outboundPerDay := float64(2 + ci)

				stock := anchor
				for d := 0; d < days; d++ {
					date := start.AddDate(0, 0, d)
					inbound := 0.0
					if d == days/2 {
						inbound = 20
					}
					outbound := outboundPerDay
					closing := stock + inbound - outbound
					if closing < 0 {
						closing = 0
						outbound = stock + inbound
					}
					if _, err := stmt.ExecContext(ctx,
						sessionID, sku.code, sku.name, wh.name, ch.name, date,
						stock, inbound, outbound, closing, stdstock,
					); err != nil {
						return 0, fmt.Errorf("failed to insert base row for %s/%s/%s: %w",
							sku.code, wh.name, ch.name, err)
					}
					rows++
					stock = closing
				}
			}
		}
	}
	return rows, nil
}
