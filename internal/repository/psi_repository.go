package repository

import (
	"context"
	"time"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/google/uuid"
)

// PSIRepository reads and writes the daily PSI base records and serves the
// aggregated matrix view built from them.
type PSIRepository interface {
	// FetchMatrix aggregates the PSI base over the query window into one row
	// per SKU x warehouse x channel, overlaying committed plan moves when
	// the query names a plan.
	FetchMatrix(ctx context.Context, query domain.MatrixQuery) ([]domain.MatrixRow, error)

	// FetchBaseRecords returns the daily base records of one SKU over the
	// window, for report generation.
	FetchBaseRecords(ctx context.Context, sessionID uuid.UUID, skuCode string, startDate, endDate time.Time) ([]domain.PSIBaseRecord, error)

	// ReplaceBaseRecords swaps the base data of one session atomically.
	ReplaceBaseRecords(ctx context.Context, sessionID uuid.UUID, records []domain.PSIBaseRecord) (int, error)

	// AppendBaseRecords inserts records without touching existing rows.
	AppendBaseRecords(ctx context.Context, records []domain.PSIBaseRecord) (int, error)
}
