package service

import (
	"sort"

	"waste-report-service/internal/model"
)

// PriorityScore ranks a report for the driver worklist: 3 for
// emergencies and hazardous waste, 2 for high priority, 1 otherwise.
// Severity wins; waste type is the fallback when severity is absent or
// unrecognized.
func PriorityScore(r model.Report) int {
	switch r.Severity {
	case model.SeverityEmergency:
		return 3
	case model.SeverityHigh:
		return 2
	case model.SeverityNormal:
		return 1
	}
	if r.WasteType == model.WasteTypeHazardous {
		return 3
	}
	return 1
}

// SortByPriority orders reports by descending score. The sort is
// stable: equal-score reports keep their snapshot order, so the
// newest-first ordering from the store survives within each tier.
func SortByPriority(reports []model.Report) []model.Report {
	sorted := make([]model.Report, len(reports))
	copy(sorted, reports)
	sort.SliceStable(sorted, func(i, j int) bool {
		return PriorityScore(sorted[i]) > PriorityScore(sorted[j])
	})
	return sorted
}
