package report

import (
	"sort"
	"time"

	"github.com/CHOISC1208/psi-erp/internal/domain"
)

// PivotRow is one daily PSI observation for a SKU/warehouse/channel, flattened
// for analysis. Quantities are plain floats; the report layer trades exactness
// for arithmetic convenience since nothing here is written back to storage.
type PivotRow struct {
	SKUCode       string
	SKUName       *string
	WarehouseName string
	Channel       string
	Date          time.Time
	StockClosing  float64
	InboundQty    float64
	OutboundQty   float64
}

// PivotResult carries the flattened rows together with the effective window.
type PivotResult struct {
	Rows      []PivotRow
	StartDate *time.Time
	EndDate   *time.Time
}

// BuildPivotRows flattens base records into per-day pivot rows and trims the
// horizon to targetDaysAhead days from the first observed date.
func BuildPivotRows(records []domain.PSIBaseRecord, targetDaysAhead int) PivotResult {
	rows := make([]PivotRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, PivotRow{
			SKUCode:       rec.SKUCode,
			SKUName:       rec.SKUName,
			WarehouseName: rec.WarehouseName,
			Channel:       rec.Channel,
			Date:          rec.Date,
			StockClosing:  rec.StockClosing.InexactFloat64(),
			InboundQty:    rec.InboundQty.InexactFloat64(),
			OutboundQty:   rec.OutboundQty.InexactFloat64(),
		})
	}

	if len(rows) == 0 {
		return PivotResult{Rows: []PivotRow{}}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		if rows[i].WarehouseName != rows[j].WarehouseName {
			return rows[i].WarehouseName < rows[j].WarehouseName
		}
		return rows[i].Channel < rows[j].Channel
	})

	start := rows[0].Date
	cutoff := start.AddDate(0, 0, targetDaysAhead-1)
	filtered := rows[:0]
	for _, row := range rows {
		if !row.Date.After(cutoff) {
			filtered = append(filtered, row)
		}
	}
	if len(filtered) == 0 {
		return PivotResult{Rows: []PivotRow{}}
	}

	end := filtered[0].Date
	for _, row := range filtered {
		if row.Date.After(end) {
			end = row.Date
		}
	}
	return PivotResult{Rows: filtered, StartDate: &start, EndDate: &end}
}
