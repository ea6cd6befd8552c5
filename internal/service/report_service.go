package service

import (
	"context"
	"fmt"
	"time"

	"github.com/CHOISC1208/psi-erp/internal/report"
	"github.com/CHOISC1208/psi-erp/internal/repository"
	"github.com/CHOISC1208/psi-erp/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SKUReport is the outcome of one report run.
type SKUReport struct {
	SKUCode     string                      `json:"sku_code"`
	Markdown    string                      `json:"markdown"`
	Risks       []report.StockoutRisk       `json:"risks"`
	Suggestions []report.TransferSuggestion `json:"suggestions"`
	ObjectKey   string                      `json:"object_key,omitempty"`
}

// ReportService runs the stockout analysis pipeline and optionally publishes
// the rendered markdown to object storage.
type ReportService struct {
	psi      repository.PSIRepository
	store    storage.ObjectStorage
	settings report.Settings
	now      func() time.Time
}

func NewReportService(psi repository.PSIRepository, store storage.ObjectStorage, settings report.Settings) (*ReportService, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report settings: %w", err)
	}
	return &ReportService{
		psi:      psi,
		store:    store,
		settings: settings,
		now:      time.Now,
	}, nil
}

// GenerateSKUReport analyzes one SKU over the window and renders the summary.
// When object storage is configured the markdown is uploaded and the object
// key is returned alongside; upload failures degrade to a local-only report.
func (s *ReportService) GenerateSKUReport(ctx context.Context, sessionID uuid.UUID, skuCode string, startDate, endDate time.Time) (*SKUReport, error) {
	records, err := s.psi.FetchBaseRecords(ctx, sessionID, skuCode, startDate, endDate)
	if err != nil {
		return nil, err
	}

	pivot := report.BuildPivotRows(records, s.settings.TargetDaysAhead)
	risks := report.DetectStockoutRisk(pivot.Rows)
	suggestions := report.SuggestChannelTransfers(pivot.Rows, s.settings)
	generatedAt := s.now()
	markdown := report.BuildSummaryMarkdown(risks, suggestions, pivot.Rows, s.settings, generatedAt)

	result := &SKUReport{
		SKUCode:     skuCode,
		Markdown:    markdown,
		Risks:       risks,
		Suggestions: suggestions,
	}

	if s.store != nil {
		key := fmt.Sprintf("reports/%s/%s/%s.md", sessionID, skuCode, generatedAt.Format("20060102T150405"))
		if err := s.store.UploadObject(ctx, key, []byte(markdown), "text/markdown"); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("report: upload failed, returning inline only")
		} else {
			result.ObjectKey = key
		}
	}
	return result, nil
}

// ListPublishedReports lists stored report artifacts for a session.
func (s *ReportService) ListPublishedReports(ctx context.Context, sessionID uuid.UUID) ([]storage.ObjectInfo, error) {
	if s.store == nil {
		return []storage.ObjectInfo{}, nil
	}
	return s.store.ListObjects(ctx, fmt.Sprintf("reports/%s/", sessionID))
}
