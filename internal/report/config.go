package report

import (
	"fmt"
	"strings"

	"github.com/CHOISC1208/psi-erp/internal/config"
)

// Settings are the runtime tunables of the report pipeline.
type Settings struct {
	// LeadTimeDays shifts suggested moves earlier so stock arrives before
	// the deficit day.
	LeadTimeDays int
	// SafetyBufferDays keeps this many days of average outbound untouched
	// on donor channels.
	SafetyBufferDays float64
	// MinMoveQty suppresses moves below this size.
	MinMoveQty float64
	// TargetDaysAhead bounds the analysis window from the first data day.
	TargetDaysAhead int
	// PriorityChannels are served first when several channels run short.
	// Matching is case-insensitive.
	PriorityChannels []string
}

func DefaultSettings() Settings {
	return Settings{
		LeadTimeDays:    2,
		TargetDaysAhead: 14,
	}
}

// SettingsFromConfig builds report settings from the environment config.
func SettingsFromConfig(cfg config.ReportConfig) Settings {
	return Settings{
		LeadTimeDays:     cfg.LeadTimeDays,
		SafetyBufferDays: cfg.SafetyBufferDays,
		MinMoveQty:       cfg.MinMoveQty,
		TargetDaysAhead:  cfg.TargetDaysAhead,
	}
}

func (s *Settings) Validate() error {
	if s.LeadTimeDays < 0 {
		return fmt.Errorf("lead_time_days must be >= 0")
	}
	if s.SafetyBufferDays < 0 {
		return fmt.Errorf("safety_buffer_days must be >= 0")
	}
	if s.MinMoveQty < 0 {
		return fmt.Errorf("min_move_qty must be >= 0")
	}
	if s.TargetDaysAhead <= 0 {
		return fmt.Errorf("target_days_ahead must be > 0")
	}
	s.PriorityChannels = normalizePriorityChannels(s.PriorityChannels)
	return nil
}

// normalizePriorityChannels lowercases, trims and dedupes while preserving
// the caller's ordering.
func normalizePriorityChannels(priority []string) []string {
	if priority == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var ordered []string
	for _, channel := range priority {
		normalized := strings.ToLower(strings.TrimSpace(channel))
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		ordered = append(ordered, normalized)
	}
	return ordered
}

// priorityRank orders channels by the configured priority list; channels
// outside the list sort after it, alphabetically.
func priorityRank(channel string, priority []string) (int, string) {
	if len(priority) == 0 {
		return 0, channel
	}
	lowered := strings.ToLower(channel)
	for i, p := range priority {
		if p == lowered {
			return i, channel
		}
	}
	return len(priority), channel
}
