package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CHOISC1208/psi-erp/internal/domain"
)

// ErrTransferNotFound is returned when deleting a transfer that is not there.
var ErrTransferNotFound = errors.New("channel transfer not found")

type channelTransferRepository struct {
	db *DB
}

func NewChannelTransferRepository(db *DB) *channelTransferRepository {
	return &channelTransferRepository{db: db}
}

func (r *channelTransferRepository) List(ctx context.Context, filter domain.ChannelTransferFilter) ([]domain.ChannelTransfer, error) {
	var (
		clauses []string
		args    []interface{}
	)
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.SessionID != nil {
		add("session_id = $%d", *filter.SessionID)
	}
	if filter.SKUCode != "" {
		add("sku_code = $%d", filter.SKUCode)
	}
	if filter.WarehouseName != "" {
		add("warehouse_name = $%d", filter.WarehouseName)
	}
	if filter.StartDate != nil {
		add("transfer_date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("transfer_date <= $%d", *filter.EndDate)
	}

	query := `
		SELECT session_id, sku_code, warehouse_name, transfer_date,
		       from_channel, to_channel, qty, note, created_at, updated_at
		FROM channel_transfers
	`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY transfer_date, sku_code, warehouse_name"

	var transfers []domain.ChannelTransfer
	if err := r.db.SelectContext(ctx, &transfers, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list channel transfers: %w", err)
	}
	return transfers, nil
}

func (r *channelTransferRepository) Upsert(ctx context.Context, transfer *domain.ChannelTransfer) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO channel_transfers (
			session_id, sku_code, warehouse_name, transfer_date,
			from_channel, to_channel, qty, note
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id, sku_code, warehouse_name, transfer_date, from_channel, to_channel)
		DO UPDATE SET qty = EXCLUDED.qty, note = EXCLUDED.note, updated_at = NOW()
		RETURNING created_at, updated_at
	`, transfer.SessionID, transfer.SKUCode, transfer.WarehouseName, transfer.TransferDate,
		transfer.FromChannel, transfer.ToChannel, transfer.Qty, transfer.Note).
		Scan(&transfer.CreatedAt, &transfer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert channel transfer: %w", err)
	}
	return nil
}

func (r *channelTransferRepository) Delete(ctx context.Context, transfer domain.ChannelTransfer) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM channel_transfers
		WHERE session_id = $1 AND sku_code = $2 AND warehouse_name = $3
		  AND transfer_date = $4 AND from_channel = $5 AND to_channel = $6
	`, transfer.SessionID, transfer.SKUCode, transfer.WarehouseName,
		transfer.TransferDate, transfer.FromChannel, transfer.ToChannel)
	if err != nil {
		return fmt.Errorf("failed to delete channel transfer: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTransferNotFound
	}
	return nil
}
