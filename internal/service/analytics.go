package service

import (
	"math"
	"sort"
	"time"

	"waste-report-service/internal/model"
)

const maxHotspots = 10

// Aggregate derives the admin dashboard view from the full report
// collection. Pure function of (reports, now); it is recomputed on
// every snapshot and never stores state.
func Aggregate(reports []model.Report, now time.Time) model.AnalyticsSummary {
	summary := model.AnalyticsSummary{
		Total:                 len(reports),
		Hotspots:              []model.Hotspot{},
		WasteTypeDistribution: make(map[model.WasteType]int),
	}

	var responseHours float64
	var responded int

	locationCounts := make(map[string]int)
	var locationOrder []string

	for _, r := range reports {
		summary.WasteTypeDistribution[r.WasteType]++

		if _, seen := locationCounts[r.Location]; !seen {
			locationOrder = append(locationOrder, r.Location)
		}
		locationCounts[r.Location]++

		switch r.Status {
		case model.ReportStatusPending:
			summary.Pending++
			switch ClassifySLA(r.CreatedAt, now).Bucket {
			case model.SLABreached:
				summary.Overdue++
			case model.SLACritical:
				summary.Critical++
			}
		case model.ReportStatusCompleted:
			summary.Completed++
			if r.ResolvedAt != nil {
				responseHours += r.ResolvedAt.Sub(r.CreatedAt).Hours()
				responded++
			}
		}
	}

	if responded > 0 {
		summary.AvgResponseTimeHours = round1(responseHours / float64(responded))
	}
	if summary.Total > 0 {
		summary.CompletionRate = round1(float64(summary.Completed) / float64(summary.Total) * 100)
		summary.SLACompliance = round1(float64(summary.Total-summary.Overdue) / float64(summary.Total) * 100)
	} else {
		summary.SLACompliance = 100
	}

	// Stable sort keeps first-seen order between equal counts.
	hotspots := make([]model.Hotspot, 0, len(locationOrder))
	for _, loc := range locationOrder {
		hotspots = append(hotspots, model.Hotspot{Location: loc, Count: locationCounts[loc]})
	}
	sort.SliceStable(hotspots, func(i, j int) bool {
		return hotspots[i].Count > hotspots[j].Count
	})
	if len(hotspots) > maxHotspots {
		hotspots = hotspots[:maxHotspots]
	}
	summary.Hotspots = hotspots

	return summary
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
