package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// WarehouseCoverage summarizes, for one warehouse, how far channel moves can
// carry it through its deficit days.
type WarehouseCoverage struct {
	WarehouseName   string
	FirstStockout   *time.Time
	CoverageStart   *time.Time
	CoverageEnd     *time.Time
	CoverageReason  string
	TransferSummary []transferTotal
}

type transferTotal struct {
	FromChannel string
	ToChannel   string
	Quantity    float64
}

func formatDate(value *time.Time) string {
	if value == nil {
		return "-"
	}
	return value.Format("2006-01-02")
}

func formatQuantity(value float64) string {
	if math.Abs(value) >= 1 {
		return fmt.Sprintf("%.0f", value)
	}
	return fmt.Sprintf("%.2f", value)
}

func warehouseTransferSummary(transfers []TransferSuggestion, warehouse string) []transferTotal {
	type pair struct{ from, to string }
	grouped := make(map[pair]float64)
	for _, t := range transfers {
		if t.WarehouseName != warehouse {
			continue
		}
		grouped[pair{from: t.FromChannel, to: t.ToChannel}] += t.Quantity
	}

	summary := make([]transferTotal, 0, len(grouped))
	for p, qty := range grouped {
		summary = append(summary, transferTotal{FromChannel: p.from, ToChannel: p.to, Quantity: qty})
	}
	sort.SliceStable(summary, func(i, j int) bool {
		if summary[i].Quantity != summary[j].Quantity {
			return summary[i].Quantity > summary[j].Quantity
		}
		if summary[i].FromChannel != summary[j].FromChannel {
			return summary[i].FromChannel < summary[j].FromChannel
		}
		return summary[i].ToChannel < summary[j].ToChannel
	})
	return summary
}

func coverageReason(row StockoutRisk) string {
	if row.TotalSurplus <= row.TotalDeficit {
		return "insufficient surplus: moves cannot absorb the deficit"
	}
	return "total stock negative across all channels"
}

func computeWarehouseCoverage(warehouse, skuCode string, risks []StockoutRisk, transfers []TransferSuggestion) WarehouseCoverage {
	var relevant []StockoutRisk
	for _, row := range risks {
		if row.WarehouseName == warehouse && row.SKUCode == skuCode {
			relevant = append(relevant, row)
		}
	}
	sort.SliceStable(relevant, func(i, j int) bool { return relevant[i].Date.Before(relevant[j].Date) })

	coverage := WarehouseCoverage{
		WarehouseName:   warehouse,
		TransferSummary: warehouseTransferSummary(transfers, warehouse),
	}

	var first *StockoutRisk
	for i := range relevant {
		if relevant[i].HasDeficit {
			first = &relevant[i]
			break
		}
	}
	if first == nil {
		return coverage
	}
	firstDate := first.Date
	coverage.FirstStockout = &firstDate

	if !first.CanFullyCover {
		coverage.CoverageReason = coverageReason(*first)
		return coverage
	}

	start, end := first.Date, first.Date
	coverage.CoverageStart = &start
	coverage.CoverageEnd = &end
	lastCovered := first.Date

	for _, row := range relevant {
		if row.Date.Before(first.Date) || !row.HasDeficit {
			continue
		}
		if !row.CanFullyCover {
			coverage.CoverageReason = coverageReason(row)
			break
		}
		if int(row.Date.Sub(lastCovered).Hours()/24) > 1 {
			coverage.CoverageReason = "deficit days are not consecutive, sequential moves cannot bridge them"
			break
		}
		end = row.Date
		coverage.CoverageEnd = &end
		lastCovered = row.Date
	}

	if coverage.CoverageReason == "" {
		var trailing *StockoutRisk
		for i := range relevant {
			if relevant[i].Date.After(end) && relevant[i].HasDeficit {
				trailing = &relevant[i]
				break
			}
		}
		if trailing != nil {
			coverage.CoverageReason = coverageReason(*trailing)
		}
	}
	return coverage
}

func riskTableRows(risks []StockoutRisk, limit int) [][]string {
	var rows [][]string
	for _, row := range risks {
		if !row.HasDeficit {
			continue
		}
		d := row.Date
		rows = append(rows, []string{
			formatDate(&d),
			row.WarehouseName,
			formatQuantity(row.TotalStock),
			formatQuantity(row.TotalDeficit),
			formatQuantity(row.TotalSurplus),
			coverMark(row.CanFullyCover),
		})
		if len(rows) >= limit {
			break
		}
	}
	return rows
}

func coverMark(covered bool) string {
	if covered {
		return "yes"
	}
	return "no"
}

func transferTableRows(transfers []TransferSuggestion, limit int) [][]string {
	var rows [][]string
	for i, t := range transfers {
		if i >= limit {
			break
		}
		rows = append(rows, []string{
			t.Date.Format("2006-01-02"),
			t.WarehouseName,
			fmt.Sprintf("%s -> %s", t.FromChannel, t.ToChannel),
			formatQuantity(t.Quantity),
		})
	}
	return rows
}

func renderTable(headers []string, rows [][]string) []string {
	if len(rows) == 0 {
		return []string{"(none)"}
	}
	lines := []string{
		"| " + strings.Join(headers, " | ") + " |",
		"| " + strings.Join(repeat("---", len(headers)), " | ") + " |",
	}
	for _, row := range rows {
		lines = append(lines, "| "+strings.Join(row, " | ")+" |")
	}
	return lines
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

// BuildSummaryMarkdown renders the stock movement report for one SKU.
func BuildSummaryMarkdown(risks []StockoutRisk, transfers []TransferSuggestion, rows []PivotRow, cfg Settings, generatedAt time.Time) string {
	if len(rows) == 0 {
		return "# Stock Movement Report\n\nNo data found for the requested scope."
	}

	skuCode := rows[0].SKUCode
	skuName := rows[0].SKUName
	startDate, endDate := rows[0].Date, rows[0].Date
	warehouseSet := make(map[string]struct{})
	for _, row := range rows {
		if row.Date.Before(startDate) {
			startDate = row.Date
		}
		if row.Date.After(endDate) {
			endDate = row.Date
		}
		warehouseSet[row.WarehouseName] = struct{}{}
	}
	warehouses := make([]string, 0, len(warehouseSet))
	for warehouse := range warehouseSet {
		warehouses = append(warehouses, warehouse)
	}
	sort.Strings(warehouses)

	var lines []string
	lines = append(lines, fmt.Sprintf("# Stock Movement Report - SKU: %s", skuCode))
	if skuName != nil && *skuName != "" {
		lines = append(lines, fmt.Sprintf("**Product**: %s", *skuName))
	}
	lines = append(lines, fmt.Sprintf("**Period**: %s to %s",
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02")))
	lines = append(lines, "**Generated**: "+generatedAt.Format("2006-01-02 15:04"))
	lines = append(lines, fmt.Sprintf(
		"**Settings**: lead time=%dd / safety buffer=%.1fd / min move=%s / horizon=%dd",
		cfg.LeadTimeDays, cfg.SafetyBufferDays, formatQuantity(cfg.MinMoveQty), cfg.TargetDaysAhead))
	if len(cfg.PriorityChannels) > 0 {
		lines = append(lines, "**Priority channels**: "+strings.Join(cfg.PriorityChannels, ", "))
	}
	lines = append(lines, "")

	lines = append(lines, "## Warehouse highlights")
	for _, warehouse := range warehouses {
		coverage := computeWarehouseCoverage(warehouse, skuCode, risks, transfers)
		lines = append(lines, fmt.Sprintf("### %s", coverage.WarehouseName))
		lines = append(lines, fmt.Sprintf("- First stockout: %s", formatDate(coverage.FirstStockout)))
		lines = append(lines, fmt.Sprintf("- Coverable by moves: %s to %s",
			formatDate(coverage.CoverageStart), formatDate(coverage.CoverageEnd)))
		if coverage.CoverageReason != "" {
			lines = append(lines, fmt.Sprintf("- Not coverable because: %s", coverage.CoverageReason))
		}
		if len(coverage.TransferSummary) > 0 {
			lines = append(lines, "- Suggested move totals:")
			for _, t := range coverage.TransferSummary {
				lines = append(lines, fmt.Sprintf("  - %s -> %s: %s",
					t.FromChannel, t.ToChannel, formatQuantity(t.Quantity)))
			}
		} else {
			lines = append(lines, "- Suggested move totals: (none)")
		}
		lines = append(lines, "")
	}

	lines = append(lines, "## Stockout risks (top 10)")
	lines = append(lines, renderTable(
		[]string{"Date", "Warehouse", "Total stock", "Deficit", "Surplus", "Coverable"},
		riskTableRows(risks, 10))...)
	lines = append(lines, "")

	lines = append(lines, "## Suggested moves (top 10)")
	lines = append(lines, renderTable(
		[]string{"Move date", "Warehouse", "Direction", "Qty"},
		transferTableRows(transfers, 10))...)
	lines = append(lines, "")

	lines = append(lines, "## Action items")
	if len(transfers) > 0 {
		lines = append(lines, fmt.Sprintf("- Review the %d suggested channel moves and share them with warehouse staff.", len(transfers)))
	} else {
		lines = append(lines, "- No moves suggested at this point. Keep monitoring stockout trends.")
	}
	lines = append(lines, "- Check stock balance and consider pulling replenishments forward where possible.")
	affected := 0
	for _, warehouse := range warehouses {
		for _, t := range transfers {
			if t.WarehouseName == warehouse {
				affected++
				break
			}
		}
	}
	if affected > 0 {
		lines = append(lines, fmt.Sprintf("- %d warehouses show active deficits. Follow up with operations on the ground.", affected))
	}

	return strings.Join(lines, "\n")
}
