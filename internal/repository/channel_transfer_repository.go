package repository

import (
	"context"

	"github.com/CHOISC1208/psi-erp/internal/domain"
)

// ChannelTransferRepository manages ad-hoc channel transfer adjustments that
// are applied to the PSI base outside of formal plans.
type ChannelTransferRepository interface {
	List(ctx context.Context, filter domain.ChannelTransferFilter) ([]domain.ChannelTransfer, error)
	Upsert(ctx context.Context, transfer *domain.ChannelTransfer) error
	Delete(ctx context.Context, transfer domain.ChannelTransfer) error
}
