package service

import (
	"sort"
	"time"

	"waste-report-service/internal/model"
)

// SLA thresholds in hours since report creation.
const (
	slaOnTrackHours  = 12
	slaWarningHours  = 24
	slaBreachedHours = 48
)

// ClassifySLA maps a report's age to its SLA bucket. Pure function of
// (createdAt, now); callers invoke it per render or per scan without
// side effects. Boundaries are inclusive on the lower bucket: exactly
// 48h is still critical, breach starts strictly after.
func ClassifySLA(createdAt, now time.Time) model.SLAStatus {
	ageHours := now.Sub(createdAt).Hours()

	var bucket model.SLABucket
	switch {
	case ageHours <= slaOnTrackHours:
		bucket = model.SLAOnTrack
	case ageHours <= slaWarningHours:
		bucket = model.SLAWarning
	case ageHours <= slaBreachedHours:
		bucket = model.SLACritical
	default:
		bucket = model.SLABreached
	}

	return model.SLAStatus{AgeHours: ageHours, Bucket: bucket}
}

// TrackPending annotates pending reports with their SLA status, oldest
// (most at risk) first. Completed reports are not subject to SLA
// classification.
func TrackPending(reports []model.Report, now time.Time) []model.TrackedReport {
	tracked := make([]model.TrackedReport, 0, len(reports))
	for _, r := range reports {
		if r.Status != model.ReportStatusPending {
			continue
		}
		tracked = append(tracked, model.TrackedReport{
			Report: r,
			SLA:    ClassifySLA(r.CreatedAt, now),
		})
	}
	sort.SliceStable(tracked, func(i, j int) bool {
		return tracked[i].SLA.AgeHours > tracked[j].SLA.AgeHours
	})
	return tracked
}

// BreakdownSLA counts pending reports per bucket.
func BreakdownSLA(reports []model.Report, now time.Time) model.SLABreakdown {
	var out model.SLABreakdown
	for _, r := range reports {
		if r.Status != model.ReportStatusPending {
			continue
		}
		switch ClassifySLA(r.CreatedAt, now).Bucket {
		case model.SLAOnTrack:
			out.OnTrack++
		case model.SLAWarning:
			out.Warning++
		case model.SLACritical:
			out.Critical++
		case model.SLABreached:
			out.Breached++
		}
	}
	return out
}
