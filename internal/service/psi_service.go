package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/CHOISC1208/psi-erp/internal/cache"
	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/CHOISC1208/psi-erp/internal/report"
	"github.com/CHOISC1208/psi-erp/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// PSIService serves the aggregated matrix and manages the base data feed.
type PSIService struct {
	repo  repository.PSIRepository
	cache cache.MatrixCache
}

func NewPSIService(repo repository.PSIRepository, cacheImpl cache.MatrixCache) *PSIService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopMatrixCache()
	}
	return &PSIService{repo: repo, cache: cacheImpl}
}

// GetMatrix fetches the aggregated matrix, cache-aside. Cache failures are
// logged and ignored; the database is the source of truth.
func (s *PSIService) GetMatrix(ctx context.Context, query domain.MatrixQuery) ([]domain.MatrixRow, error) {
	if rows, ok, err := s.cache.Get(ctx, query); err == nil && ok {
		return rows, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("psi: matrix cache get failed")
	}

	rows, err := s.repo.FetchMatrix(ctx, query)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = make([]domain.MatrixRow, 0)
	}

	if err := s.cache.Set(ctx, query, rows); err != nil {
		log.Warn().Err(err).Msg("psi: matrix cache set failed")
	}
	return rows, nil
}

// ExportMatrixXLSX renders the matrix as an xlsx workbook.
func (s *PSIService) ExportMatrixXLSX(ctx context.Context, query domain.MatrixQuery) ([]byte, error) {
	rows, err := s.GetMatrix(ctx, query)
	if err != nil {
		return nil, err
	}
	return report.BuildMatrixWorkbook(rows)
}

// ImportBaseCSV parses a PSI base CSV and replaces the session's data with
// it. All cached matrix entries of the session are dropped afterwards.
func (s *PSIService) ImportBaseCSV(ctx context.Context, sessionID uuid.UUID, r io.Reader) (int, error) {
	records, err := ParseBaseCSV(sessionID, r)
	if err != nil {
		return 0, err
	}

	inserted, err := s.repo.ReplaceBaseRecords(ctx, sessionID, records)
	if err != nil {
		return inserted, err
	}

	if err := s.cache.InvalidateSession(ctx, sessionID); err != nil {
		log.Warn().Err(err).Msg("psi: matrix cache invalidation failed")
	}
	log.Info().Str("session_id", sessionID.String()).Int("records", inserted).Msg("psi base replaced")
	return inserted, nil
}

var baseCSVHeader = []string{
	"sku_code", "sku_name", "warehouse_name", "channel", "date",
	"stock_at_anchor", "inbound_qty", "outbound_qty", "stock_closing", "stdstock",
}

// ParseBaseCSV reads the canonical base export format: a header row followed
// by one record per SKU x warehouse x channel x date.
func ParseBaseCSV(sessionID uuid.UUID, r io.Reader) ([]domain.PSIBaseRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(baseCSVHeader)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i, want := range baseCSVHeader {
		if strings.TrimSpace(strings.ToLower(header[i])) != want {
			return nil, fmt.Errorf("unexpected csv column %d: got %q, want %q", i+1, header[i], want)
		}
	}

	var records []domain.PSIBaseRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(row[4]))
		if err != nil {
			return nil, fmt.Errorf("invalid date on line %d: %w", line, err)
		}

		quantities := make([]decimal.Decimal, 5)
		for i := range quantities {
			raw := strings.TrimSpace(row[5+i])
			if raw == "" {
				continue
			}
			quantities[i], err = decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid %s on line %d: %w", baseCSVHeader[5+i], line, err)
			}
		}

		rec := domain.PSIBaseRecord{
			SessionID:     sessionID,
			SKUCode:       strings.TrimSpace(row[0]),
			WarehouseName: strings.TrimSpace(row[2]),
			Channel:       strings.TrimSpace(row[3]),
			Date:          date,
			StockAtAnchor: quantities[0],
			InboundQty:    quantities[1],
			OutboundQty:   quantities[2],
			StockClosing:  quantities[3],
			StdStock:      quantities[4],
		}
		if name := strings.TrimSpace(row[1]); name != "" {
			rec.SKUName = &name
		}
		if rec.SKUCode == "" || rec.WarehouseName == "" || rec.Channel == "" {
			return nil, fmt.Errorf("missing key column on line %d", line)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv contains no records")
	}
	return records, nil
}
