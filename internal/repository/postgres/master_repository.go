package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CHOISC1208/psi-erp/internal/domain"
)

type masterRepository struct {
	db *DB
}

func NewMasterRepository(db *DB) *masterRepository {
	return &masterRepository{db: db}
}

func (r *masterRepository) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	var warehouses []domain.Warehouse
	err := r.db.SelectContext(ctx, &warehouses, `
		SELECT warehouse_name, region, main_channel
		FROM warehouse_master
		ORDER BY warehouse_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}
	return warehouses, nil
}

func (r *masterRepository) UpsertWarehouses(ctx context.Context, warehouses []domain.Warehouse) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO warehouse_master (warehouse_name, region, main_channel)
			VALUES ($1, $2, $3)
			ON CONFLICT (warehouse_name) DO UPDATE SET
				region = EXCLUDED.region,
				main_channel = EXCLUDED.main_channel
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare warehouse upsert: %w", err)
		}
		defer stmt.Close()

		for _, w := range warehouses {
			if _, err := stmt.ExecContext(ctx, w.WarehouseName, w.Region, w.MainChannel); err != nil {
				return fmt.Errorf("failed to upsert warehouse %s: %w", w.WarehouseName, err)
			}
		}
		return nil
	})
}

func (r *masterRepository) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	var channels []domain.Channel
	err := r.db.SelectContext(ctx, &channels, `
		SELECT channel, display_name
		FROM channel_master
		ORDER BY channel
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	return channels, nil
}

func (r *masterRepository) UpsertChannels(ctx context.Context, channels []domain.Channel) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO channel_master (channel, display_name)
			VALUES ($1, $2)
			ON CONFLICT (channel) DO UPDATE SET display_name = EXCLUDED.display_name
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare channel upsert: %w", err)
		}
		defer stmt.Close()

		for _, c := range channels {
			if _, err := stmt.ExecContext(ctx, c.Channel, c.DisplayName); err != nil {
				return fmt.Errorf("failed to upsert channel %s: %w", c.Channel, err)
			}
		}
		return nil
	})
}

func (r *masterRepository) MainChannelMap(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT warehouse_name, main_channel
		FROM warehouse_master
		WHERE main_channel IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch main channels: %w", err)
	}
	defer rows.Close()

	mains := make(map[string]string)
	for rows.Next() {
		var warehouse, channel string
		if err := rows.Scan(&warehouse, &channel); err != nil {
			return nil, fmt.Errorf("failed to scan main channel: %w", err)
		}
		mains[warehouse] = channel
	}
	return mains, rows.Err()
}
