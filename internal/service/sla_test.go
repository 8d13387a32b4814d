package service

import (
	"testing"
	"time"

	"waste-report-service/internal/model"
)

func TestClassifySLABoundaries(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		age  time.Duration
		want model.SLABucket
	}{
		{"fresh", 30 * time.Minute, model.SLAOnTrack},
		{"exactly 12h", 12 * time.Hour, model.SLAOnTrack},
		{"just over 12h", 12*time.Hour + time.Minute, model.SLAWarning},
		{"exactly 24h", 24 * time.Hour, model.SLAWarning},
		{"just over 24h", 24*time.Hour + time.Minute, model.SLACritical},
		{"exactly 48h", 48 * time.Hour, model.SLACritical},
		{"just over 48h", 48*time.Hour + time.Minute, model.SLABreached},
		{"days overdue", 96 * time.Hour, model.SLABreached},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifySLA(now.Add(-tc.age), now)
			if got.Bucket != tc.want {
				t.Fatalf("age %v: expected %s, got %s", tc.age, tc.want, got.Bucket)
			}
		})
	}
}

func TestClassifySLAAgeHours(t *testing.T) {
	now := time.Now()
	got := ClassifySLA(now.Add(-90*time.Minute), now)
	if got.AgeHours < 1.49 || got.AgeHours > 1.51 {
		t.Fatalf("expected ~1.5 age hours, got %f", got.AgeHours)
	}
}

func TestBreakdownSLASkipsCompleted(t *testing.T) {
	now := time.Now()
	reports := []model.Report{
		{Status: model.ReportStatusPending, CreatedAt: now.Add(-2 * time.Hour)},
		{Status: model.ReportStatusPending, CreatedAt: now.Add(-30 * time.Hour)},
		{Status: model.ReportStatusPending, CreatedAt: now.Add(-50 * time.Hour)},
		{Status: model.ReportStatusCompleted, CreatedAt: now.Add(-100 * time.Hour)},
	}

	got := BreakdownSLA(reports, now)
	if got.OnTrack != 1 || got.Warning != 0 || got.Critical != 1 || got.Breached != 1 {
		t.Fatalf("unexpected breakdown: %+v", got)
	}
}

func TestTrackPendingOldestFirst(t *testing.T) {
	now := time.Now()
	reports := []model.Report{
		{Location: "Park", Status: model.ReportStatusPending, CreatedAt: now.Add(-1 * time.Hour)},
		{Location: "Market", Status: model.ReportStatusPending, CreatedAt: now.Add(-40 * time.Hour)},
		{Location: "Station", Status: model.ReportStatusCompleted, CreatedAt: now.Add(-90 * time.Hour)},
	}

	tracked := TrackPending(reports, now)
	if len(tracked) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(tracked))
	}
	if tracked[0].Location != "Market" {
		t.Fatalf("expected oldest report first, got %s", tracked[0].Location)
	}
	if tracked[0].SLA.Bucket != model.SLACritical {
		t.Fatalf("expected critical, got %s", tracked[0].SLA.Bucket)
	}
}
