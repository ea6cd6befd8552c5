package service

import (
	"context"
	"fmt"

	"github.com/CHOISC1208/psi-erp/internal/cache"
	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/CHOISC1208/psi-erp/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ChannelTransferService manages ad-hoc channel transfer adjustments.
type ChannelTransferService struct {
	repo  repository.ChannelTransferRepository
	cache cache.MatrixCache
}

func NewChannelTransferService(repo repository.ChannelTransferRepository, cacheImpl cache.MatrixCache) *ChannelTransferService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopMatrixCache()
	}
	return &ChannelTransferService{repo: repo, cache: cacheImpl}
}

func (s *ChannelTransferService) List(ctx context.Context, filter domain.ChannelTransferFilter) ([]domain.ChannelTransfer, error) {
	transfers, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if transfers == nil {
		transfers = make([]domain.ChannelTransfer, 0)
	}
	return transfers, nil
}

func (s *ChannelTransferService) Upsert(ctx context.Context, transfer *domain.ChannelTransfer) error {
	if transfer.FromChannel == transfer.ToChannel {
		return fmt.Errorf("transfer endpoints must differ")
	}
	if transfer.Qty.Sign() <= 0 {
		return fmt.Errorf("transfer qty must be positive")
	}
	if err := s.repo.Upsert(ctx, transfer); err != nil {
		return err
	}
	s.invalidate(ctx, transfer.SessionID)
	return nil
}

func (s *ChannelTransferService) Delete(ctx context.Context, transfer domain.ChannelTransfer) error {
	if err := s.repo.Delete(ctx, transfer); err != nil {
		return err
	}
	s.invalidate(ctx, transfer.SessionID)
	return nil
}

func (s *ChannelTransferService) invalidate(ctx context.Context, sessionID uuid.UUID) {
	if err := s.cache.InvalidateSession(ctx, sessionID); err != nil {
		log.Warn().Err(err).Msg("channel transfer: matrix cache invalidation failed")
	}
}
