package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/google/uuid"
)

type psiRepository struct {
	db *DB
}

func NewPSIRepository(db *DB) *psiRepository {
	return &psiRepository{db: db}
}

// FetchMatrix collapses the daily PSI base over the query window into one
// row per SKU x warehouse x channel. Stock levels are point-in-time (anchor
// stock and standard stock at the window start, closing stock at the window
// end) while flows are summed across the window. When a plan is given, its
// lines are folded in as signed moves: outgoing negative, incoming positive.
// Keys touched only by plan lines still surface, with zeroed base columns.
func (r *psiRepository) FetchMatrix(ctx context.Context, query domain.MatrixQuery) ([]domain.MatrixRow, error) {
	filterClause, filterArgs := buildMatrixFilterClause(query, "", 4)

	args := []interface{}{query.SessionID, query.StartDate, query.EndDate}
	args = append(args, filterArgs...)

	movesCTE := `
		moves AS (
			SELECT NULL::text AS sku_code, NULL::text AS warehouse_name,
			       NULL::text AS channel, NULL::numeric AS move
			WHERE FALSE
		)`
	if query.PlanID != nil {
		planIdx := len(args) + 1
		args = append(args, *query.PlanID)
		movesCTE = fmt.Sprintf(`
		moves AS (
			SELECT sku_code, warehouse_name, channel, SUM(qty) AS move
			FROM (
				SELECT sku_code, from_warehouse AS warehouse_name,
				       from_channel AS channel, -qty AS qty
				FROM transfer_plan_lines
				WHERE plan_id = $%[1]d
				UNION ALL
				SELECT sku_code, to_warehouse, to_channel, qty
				FROM transfer_plan_lines
				WHERE plan_id = $%[1]d
			) line
			GROUP BY sku_code, warehouse_name, channel
		)`, planIdx)
	}

	sqlQuery := fmt.Sprintf(`
		WITH base AS (
			SELECT
				sku_code,
				MAX(sku_name) AS sku_name,
				warehouse_name,
				channel,
				COALESCE(MAX(CASE WHEN date = $2 THEN stock_at_anchor END), 0) AS stock_at_anchor,
				COALESCE(SUM(COALESCE(inbound_qty, 0)), 0) AS inbound_qty,
				COALESCE(SUM(COALESCE(outbound_qty, 0)), 0) AS outbound_qty,
				COALESCE(MAX(CASE WHEN date = $3 THEN stock_closing END), 0) AS stock_closing,
				COALESCE(MAX(CASE WHEN date = $2 THEN stdstock END), 0) AS stdstock
			FROM psi_base
			WHERE session_id = $1
			  AND date BETWEEN $2 AND $3
			  %s
			GROUP BY sku_code, warehouse_name, channel
		),
		%s
		SELECT
			COALESCE(b.sku_code, m.sku_code) AS sku_code,
			b.sku_name,
			COALESCE(b.warehouse_name, m.warehouse_name) AS warehouse_name,
			COALESCE(b.channel, m.channel) AS channel,
			COALESCE(b.stock_at_anchor, 0) AS stock_at_anchor,
			COALESCE(b.inbound_qty, 0) AS inbound_qty,
			COALESCE(b.outbound_qty, 0) AS outbound_qty,
			COALESCE(b.stock_closing, 0) AS stock_closing,
			COALESCE(b.stdstock, 0) AS stdstock,
			COALESCE(b.stock_at_anchor, 0) - COALESCE(b.stdstock, 0) AS gap,
			COALESCE(m.move, 0) AS move,
			COALESCE(b.stock_closing, 0) + COALESCE(m.move, 0) AS stock_fin
		FROM base b
		FULL OUTER JOIN moves m
		  ON b.sku_code = m.sku_code
		 AND b.warehouse_name = m.warehouse_name
		 AND b.channel = m.channel
		ORDER BY 1, 3, 4
	`, filterClause, movesCTE)

	var rows []domain.MatrixRow
	if err := r.db.SelectContext(ctx, &rows, sqlQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch matrix: %w", err)
	}
	return rows, nil
}

func (r *psiRepository) FetchBaseRecords(ctx context.Context, sessionID uuid.UUID, skuCode string, startDate, endDate time.Time) ([]domain.PSIBaseRecord, error) {
	var records []domain.PSIBaseRecord
	err := r.db.SelectContext(ctx, &records, `
		SELECT session_id, sku_code, sku_name, warehouse_name, channel, date,
		       stock_at_anchor, inbound_qty, outbound_qty, stock_closing, stdstock
		FROM psi_base
		WHERE session_id = $1 AND sku_code = $2 AND date BETWEEN $3 AND $4
		ORDER BY date, warehouse_name, channel
	`, sessionID, skuCode, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch base records: %w", err)
	}
	return records, nil
}

const insertBaseQuery = `
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
`

func (r *psiRepository) ReplaceBaseRecords(ctx context.Context, sessionID uuid.UUID, records []domain.PSIBaseRecord) (int, error) {
	var inserted int
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM psi_base WHERE session_id = $1`, sessionID); err != nil {
			return fmt.Errorf("failed to clear session base: %w", err)
		}
		n, err := insertBaseRecords(ctx, tx, records)
		inserted = n
		return err
	})
	return inserted, err
}

func (r *psiRepository) AppendBaseRecords(ctx context.Context, records []domain.PSIBaseRecord) (int, error) {
	var inserted int
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := insertBaseRecords(ctx, tx, records)
		inserted = n
		return err
	})
	return inserted, err
}

func insertBaseRecords(ctx context.Context, tx *sql.Tx, records []domain.PSIBaseRecord) (int, error) {
	stmt, err := tx.PrepareContext(ctx, insertBaseQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare base insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(
			ctx,
			rec.SessionID,
			rec.SKUCode,
			rec.SKUName,
			rec.WarehouseName,
			rec.Channel,
			rec.Date,
			rec.StockAtAnchor,
			rec.InboundQty,
			rec.OutboundQty,
			rec.StockClosing,
			rec.StdStock,
		); err != nil {
			return i, fmt.Errorf("failed to insert base record %d: %w", i, err)
		}
	}
	return len(records), nil
}
