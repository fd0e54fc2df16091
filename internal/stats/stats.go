// Package stats derives read-only occupancy and revenue summaries from
// a lot. Nothing is cached; every call recomputes from the current
// registry state.
package stats

import (
	"fmt"
	"time"

	"parklot/internal/model"
	"parklot/internal/registry"
)

// Snapshot is a point-in-time summary of a lot.
type Snapshot struct {
	TotalSlots    int     `json:"total_slots"`
	OccupiedSlots int     `json:"occupied_slots"`
	FreeSlots     int     `json:"free_slots"`
	OccupancyPct  float64 `json:"occupancy_pct"`
	TodayRevenue  float64 `json:"today_revenue"`
	MonthRevenue  float64 `json:"month_revenue"`
}

// Take computes a snapshot of the lot. An empty lot reports 0%
// occupancy rather than dividing by zero.
func Take(lot *registry.Lot) Snapshot {
	s := Snapshot{
		TotalSlots:    lot.TotalSlots(),
		OccupiedSlots: lot.OccupiedCount(),
		TodayRevenue:  lot.TodayRevenue(),
		MonthRevenue:  lot.MonthRevenue(),
	}
	s.FreeSlots = s.TotalSlots - s.OccupiedSlots
	if s.TotalSlots > 0 {
		s.OccupancyPct = float64(s.OccupiedSlots) / float64(s.TotalSlots) * 100.0
	}
	return s
}

// CountByDay counts occupied slots of the given category whose entry
// time falls on the same local calendar day as date.
func CountByDay(lot *registry.Lot, date time.Time, category model.Category) int {
	count := 0
	ty, tm, td := date.Date()
	for _, s := range lot.Slots() {
		if !s.Occupied() || s.Category != category || s.EntryTime.IsZero() {
			continue
		}
		ey, em, ed := s.EntryTime.Date()
		if ey == ty && em == tm && ed == td {
			count++
		}
	}
	return count
}

// CountByMonth counts occupied slots of the given category whose entry
// time falls in the given local year and month.
func CountByMonth(lot *registry.Lot, year, month int, category model.Category) (int, error) {
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("month %d outside 1..12", month)
	}
	count := 0
	for _, s := range lot.Slots() {
		if !s.Occupied() || s.Category != category || s.EntryTime.IsZero() {
			continue
		}
		if s.EntryTime.Year() == year && int(s.EntryTime.Month()) == month {
			count++
		}
	}
	return count, nil
}
