package report

import (
	"sort"
	"time"
)

// StockoutRisk summarizes one SKU/warehouse/day across its channels: how
// deep the deficits run and whether same-warehouse surplus could absorb them.
type StockoutRisk struct {
	SKUCode       string
	SKUName       *string
	WarehouseName string
	Date          time.Time
	ChannelsCount int
	TotalStock    float64
	TotalDeficit  float64
	TotalSurplus  float64
	HasDeficit    bool
	CanFullyCover bool
}

// DetectStockoutRisk groups pivot rows per SKU/warehouse/day and flags the
// days where at least one channel goes negative.
func DetectStockoutRisk(rows []PivotRow) []StockoutRisk {
	type groupKey struct {
		sku       string
		warehouse string
		date      time.Time
	}
	grouped := make(map[groupKey][]PivotRow)
	for _, row := range rows {
		key := groupKey{sku: row.SKUCode, warehouse: row.WarehouseName, date: row.Date}
		grouped[key] = append(grouped[key], row)
	}

	risks := make([]StockoutRisk, 0, len(grouped))
	for key, items := range grouped {
		var totalStock, totalDeficit, totalSurplus float64
		for _, item := range items {
			totalStock += item.StockClosing
			if item.StockClosing < 0 {
				totalDeficit += -item.StockClosing
			} else {
				totalSurplus += item.StockClosing
			}
		}
		hasDeficit := totalDeficit > 0
		risks = append(risks, StockoutRisk{
			SKUCode:       key.sku,
			SKUName:       items[0].SKUName,
			WarehouseName: key.warehouse,
			Date:          key.date,
			ChannelsCount: len(items),
			TotalStock:    totalStock,
			TotalDeficit:  totalDeficit,
			TotalSurplus:  totalSurplus,
			HasDeficit:    hasDeficit,
			CanFullyCover: hasDeficit && totalSurplus >= totalDeficit,
		})
	}

	sort.SliceStable(risks, func(i, j int) bool {
		if !risks[i].Date.Equal(risks[j].Date) {
			return risks[i].Date.Before(risks[j].Date)
		}
		if risks[i].WarehouseName != risks[j].WarehouseName {
			return risks[i].WarehouseName < risks[j].WarehouseName
		}
		return risks[i].SKUCode < risks[j].SKUCode
	})
	return risks
}

// FirstStockoutDate returns the first deficit day of the SKU in the
// warehouse, or nil when it never runs short.
func FirstStockoutDate(risks []StockoutRisk, skuCode, warehouseName string) *time.Time {
	for _, row := range risks {
		if row.SKUCode == skuCode && row.WarehouseName == warehouseName && row.HasDeficit {
			d := row.Date
			return &d
		}
	}
	return nil
}
