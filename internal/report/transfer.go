package report

import (
	"sort"
	"time"
)

// TransferSuggestion is one recommended same-warehouse channel move.
type TransferSuggestion struct {
	Date          time.Time
	SKUCode       string
	SKUName       *string
	WarehouseName string
	FromChannel   string
	ToChannel     string
	Quantity      float64
}

func averageOutbound(rows []PivotRow, channel string) float64 {
	var total float64
	var count int
	for _, row := range rows {
		if row.Channel == channel && row.OutboundQty > 0 {
			total += row.OutboundQty
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// SuggestChannelTransfers walks each SKU/warehouse day by day and proposes
// moves from positive-stock channels into negative ones. Donors keep a
// safety buffer of SafetyBufferDays times their average outbound, priority
// channels are served first, and each suggestion is back-shifted by the
// lead time so stock lands before the deficit day.
func SuggestChannelTransfers(rows []PivotRow, cfg Settings) []TransferSuggestion {
	type groupKey struct {
		sku       string
		warehouse string
	}
	grouped := make(map[groupKey][]PivotRow)
	var keys []groupKey
	for _, row := range rows {
		key := groupKey{sku: row.SKUCode, warehouse: row.WarehouseName}
		if _, ok := grouped[key]; !ok {
			keys = append(keys, key)
		}
		grouped[key] = append(grouped[key], row)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].sku != keys[j].sku {
			return keys[i].sku < keys[j].sku
		}
		return keys[i].warehouse < keys[j].warehouse
	})

	var suggestions []TransferSuggestion

	for _, key := range keys {
		entries := grouped[key]

		channelSet := make(map[string]struct{})
		dateSet := make(map[time.Time]struct{})
		byChannelDate := make(map[string]map[time.Time]PivotRow)
		for _, row := range entries {
			channelSet[row.Channel] = struct{}{}
			dateSet[row.Date] = struct{}{}
			if byChannelDate[row.Channel] == nil {
				byChannelDate[row.Channel] = make(map[time.Time]PivotRow)
			}
			byChannelDate[row.Channel][row.Date] = row
		}
		if len(channelSet) < 2 {
			continue
		}

		channels := make([]string, 0, len(channelSet))
		for channel := range channelSet {
			channels = append(channels, channel)
		}
		sort.Strings(channels)

		dates := make([]time.Time, 0, len(dateSet))
		for d := range dateSet {
			dates = append(dates, d)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		outboundAvg := make(map[string]float64, len(channels))
		for _, channel := range channels {
			outboundAvg[channel] = averageOutbound(entries, channel)
		}

		for _, currentDate := range dates {
			stocks := make(map[string]float64, len(channels))
			for _, channel := range channels {
				if row, ok := byChannelDate[channel][currentDate]; ok {
					stocks[channel] = row.StockClosing
				}
			}

			var deficits, surpluses []string
			for _, channel := range channels {
				switch {
				case stocks[channel] < 0:
					deficits = append(deficits, channel)
				case stocks[channel] > 0:
					surpluses = append(surpluses, channel)
				}
			}
			if len(deficits) == 0 || len(surpluses) == 0 {
				continue
			}

			sort.SliceStable(deficits, func(i, j int) bool {
				ri, ni := priorityRank(deficits[i], cfg.PriorityChannels)
				rj, nj := priorityRank(deficits[j], cfg.PriorityChannels)
				if ri != rj {
					return ri < rj
				}
				if ni != nj {
					return ni < nj
				}
				return stocks[deficits[i]] < stocks[deficits[j]]
			})
			sort.SliceStable(surpluses, func(i, j int) bool {
				return stocks[surpluses[i]] > stocks[surpluses[j]]
			})

			type pair struct{ from, to string }
			planned := make(map[pair]float64)
			var pairOrder []pair

			for _, deficitChannel := range deficits {
				need := -stocks[deficitChannel]
				if need <= 0 {
					continue
				}
				for _, surplusChannel := range surpluses {
					if surplusChannel == deficitChannel {
						continue
					}
					buffer := outboundAvg[surplusChannel] * cfg.SafetyBufferDays
					available := stocks[surplusChannel] - buffer
					if available <= 0 {
						continue
					}
					moveQty := available
					if need < moveQty {
						moveQty = need
					}
					if moveQty < cfg.MinMoveQty {
						continue
					}
					stocks[surplusChannel] -= moveQty
					stocks[deficitChannel] += moveQty
					need -= moveQty
					p := pair{from: surplusChannel, to: deficitChannel}
					if _, ok := planned[p]; !ok {
						pairOrder = append(pairOrder, p)
					}
					planned[p] += moveQty
					if need <= 0 {
						break
					}
				}
			}
			if len(planned) == 0 {
				continue
			}

			effectiveDate := currentDate
			if cfg.LeadTimeDays > 0 {
				shifted := currentDate.AddDate(0, 0, -cfg.LeadTimeDays)
				if !shifted.Before(dates[0]) {
					effectiveDate = shifted
				}
			}

			for _, p := range pairOrder {
				suggestions = append(suggestions, TransferSuggestion{
					Date:          effectiveDate,
					SKUCode:       key.sku,
					SKUName:       entries[0].SKUName,
					WarehouseName: key.warehouse,
					FromChannel:   p.from,
					ToChannel:     p.to,
					Quantity:      planned[p],
				})
			}
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.WarehouseName != b.WarehouseName {
			return a.WarehouseName < b.WarehouseName
		}
		if a.FromChannel != b.FromChannel {
			return a.FromChannel < b.FromChannel
		}
		return a.ToChannel < b.ToChannel
	})
	return suggestions
}
