package service

import (
	"context"
	"fmt"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/CHOISC1208/psi-erp/internal/repository"
)

// MasterService manages the warehouse and channel master data.
type MasterService struct {
	repo repository.MasterRepository
}

func NewMasterService(repo repository.MasterRepository) *MasterService {
	return &MasterService{repo: repo}
}

func (s *MasterService) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	return s.repo.ListWarehouses(ctx)
}

func (s *MasterService) UpsertWarehouses(ctx context.Context, warehouses []domain.Warehouse) error {
	for i, w := range warehouses {
		if w.WarehouseName == "" {
			return fmt.Errorf("warehouse %d has no name", i)
		}
	}
	return s.repo.UpsertWarehouses(ctx, warehouses)
}

func (s *MasterService) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	return s.repo.ListChannels(ctx)
}

func (s *MasterService) UpsertChannels(ctx context.Context, channels []domain.Channel) error {
	for i, c := range channels {
		if c.Channel == "" {
			return fmt.Errorf("channel %d has no name", i)
		}
	}
	return s.repo.UpsertChannels(ctx, channels)
}

func (s *MasterService) MainChannelMap(ctx context.Context) (map[string]string, error) {
	return s.repo.MainChannelMap(ctx)
}
