package repository

import (
	"context"

	"github.com/CHOISC1208/psi-erp/internal/domain"
)

// MasterRepository serves the warehouse and channel master tables.
type MasterRepository interface {
	ListWarehouses(ctx context.Context) ([]domain.Warehouse, error)
	UpsertWarehouses(ctx context.Context, warehouses []domain.Warehouse) error
	ListChannels(ctx context.Context) ([]domain.Channel, error)
	UpsertChannels(ctx context.Context, channels []domain.Channel) error

	// MainChannelMap maps each warehouse to its designated main channel,
	// skipping warehouses that have none configured.
	MainChannelMap(ctx context.Context) (map[string]string, error)
}
