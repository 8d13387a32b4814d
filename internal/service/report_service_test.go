package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"waste-report-service/internal/model"
)

func newTestService(store ReportStore, vision VisionClient) (*ReportService, *countingNotifier) {
	notifier := &countingNotifier{}
	svc := NewReportService(store, vision, notifier, zerolog.Nop())
	return svc, notifier
}

func citizen() model.Principal {
	return model.Principal{UserID: uuid.New(), Role: model.UserRoleCitizen}
}

func driver() model.Principal {
	return model.Principal{UserID: uuid.New(), Role: model.UserRoleDriver}
}

func admin() model.Principal {
	return model.Principal{UserID: uuid.New(), Role: model.UserRoleAdmin}
}

func TestSubmitCreatesPendingReport(t *testing.T) {
	store := newFakeStore()
	svc, notifier := newTestService(store, &fakeVision{verdict: &Verification{
		IsValid:       true,
		Confidence:    81.5,
		DetectedItems: []string{"bottle", "cup"},
	}})

	report, err := svc.Submit(context.Background(), citizen(), SubmitReportInput{
		Location:  "Central Market",
		WasteType: model.WasteTypeHazardous,
		Severity:  model.SeverityNormal,
		Image:     "data:image/jpeg;base64,xxxx",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if report.Status != model.ReportStatusPending {
		t.Fatalf("expected pending status, got %s", report.Status)
	}
	if report.Votes != 0 {
		t.Fatalf("expected 0 votes, got %d", report.Votes)
	}
	if report.Escalated {
		t.Fatalf("new report must not be escalated")
	}
	if !report.AIVerified || report.AIConfidence != 81.5 {
		t.Fatalf("classifier verdict not attached: %+v", report)
	}
	if report.AIDetectedItems != "bottle,cup" {
		t.Fatalf("unexpected detected items: %q", report.AIDetectedItems)
	}
	if notifier.calls() != 1 {
		t.Fatalf("expected one feed notification, got %d", notifier.calls())
	}
	if len(store.logs) != 1 || store.logs[0].Event != model.ReportEventSubmitted {
		t.Fatalf("expected submission audit log, got %+v", store.logs)
	}
}

func TestSubmitValidation(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, nil)
	lat := "12.9716"

	cases := []struct {
		name  string
		input SubmitReportInput
	}{
		{"missing location", SubmitReportInput{WasteType: model.WasteTypeGeneral, Severity: model.SeverityNormal, Image: "img"}},
		{"missing image", SubmitReportInput{Location: "Park", WasteType: model.WasteTypeGeneral, Severity: model.SeverityNormal}},
		{"bad waste type", SubmitReportInput{Location: "Park", WasteType: "PLASMA", Severity: model.SeverityNormal, Image: "img"}},
		{"bad severity", SubmitReportInput{Location: "Park", WasteType: model.WasteTypeGeneral, Severity: "MILD", Image: "img"}},
		{"lat without lng", SubmitReportInput{Location: "Park", WasteType: model.WasteTypeGeneral, Severity: model.SeverityNormal, Image: "img", Lat: &lat}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Submit(context.Background(), citizen(), tc.input); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestSubmitClassifierFailureDoesNotBlock(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, &fakeVision{err: errors.New("classifier offline")})

	report, err := svc.Submit(context.Background(), citizen(), SubmitReportInput{
		Location:  "Park",
		WasteType: model.WasteTypeGeneral,
		Severity:  model.SeverityNormal,
		Image:     "img",
	})
	if err != nil {
		t.Fatalf("classifier failure must not block submission: %v", err)
	}
	if report.AIConfidence != 0 {
		t.Fatalf("expected zero confidence on degraded verdict, got %f", report.AIConfidence)
	}
}

func TestSubmitStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.createErr = errStoreDown
	svc, notifier := newTestService(store, nil)

	_, err := svc.Submit(context.Background(), citizen(), SubmitReportInput{
		Location:  "Park",
		WasteType: model.WasteTypeGeneral,
		Severity:  model.SeverityNormal,
		Image:     "img",
	})
	if !errors.Is(err, ErrSubmissionFailed) {
		t.Fatalf("expected ErrSubmissionFailed, got %v", err)
	}
	if notifier.calls() != 0 {
		t.Fatalf("failed submission must not notify subscribers")
	}
}

func TestSubmitRequiresCitizenOrAdmin(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, nil)

	_, err := svc.Submit(context.Background(), driver(), SubmitReportInput{
		Location:  "Park",
		WasteType: model.WasteTypeGeneral,
		Severity:  model.SeverityNormal,
		Image:     "img",
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestCompleteWithoutPhotoNeverReachesStore(t *testing.T) {
	store := newFakeStore()
	id := store.seed(model.Report{Location: "Park", WasteType: model.WasteTypeGeneral, Severity: model.SeverityNormal})
	svc, _ := newTestService(store, nil)

	err := svc.Complete(context.Background(), driver(), id, "   ", "")
	if !errors.Is(err, ErrMissingEvidence) {
		t.Fatalf("expected ErrMissingEvidence, got %v", err)
	}
	if store.completeCalls != 0 {
		t.Fatalf("store must not be called without evidence")
	}
}

func TestCompleteSetsResolution(t *testing.T) {
	store := newFakeStore()
	id := store.seed(model.Report{Location: "Park", WasteType: model.WasteTypeGeneral, Severity: model.SeverityNormal})
	svc, notifier := newTestService(store, nil)

	if err := svc.Complete(context.Background(), driver(), id, "after.jpg", "cleared"); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	got := store.get(id)
	if got.Status != model.ReportStatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if got.ResolvedAt == nil || got.AfterPhoto == nil || *got.AfterPhoto != "after.jpg" {
		t.Fatalf("resolution fields not set: %+v", got)
	}
	if got.CompletionNotes == nil || *got.CompletionNotes != "cleared" {
		t.Fatalf("notes not set: %+v", got)
	}
	if notifier.calls() != 1 {
		t.Fatalf("expected one feed notification, got %d", notifier.calls())
	}
}

func TestCompleteTwiceRejected(t *testing.T) {
	store := newFakeStore()
	id := store.seed(model.Report{Location: "Park", WasteType: model.WasteTypeGeneral, Severity: model.SeverityNormal})
	svc, _ := newTestService(store, nil)

	if err := svc.Complete(context.Background(), driver(), id, "after.jpg", ""); err != nil {
		t.Fatalf("first completion failed: %v", err)
	}

	first := store.get(id)
	err := svc.Complete(context.Background(), driver(), id, "other.jpg", "")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	// The original resolution must be untouched.
	second := store.get(id)
	if *second.AfterPhoto != *first.AfterPhoto || !second.ResolvedAt.Equal(*first.ResolvedAt) {
		t.Fatalf("second completion overwrote the first")
	}
}

func TestCompleteUnknownReport(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, nil)

	err := svc.Complete(context.Background(), driver(), uuid.New(), "after.jpg", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCompleteRequiresDriverOrAdmin(t *testing.T) {
	store := newFakeStore()
	id := store.seed(model.Report{Location: "Park", WasteType: model.WasteTypeGeneral, Severity: model.SeverityNormal})
	svc, _ := newTestService(store, nil)

	err := svc.Complete(context.Background(), citizen(), id, "after.jpg", "")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestWorklistPriorityOrder(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.seed(model.Report{Location: "A", Severity: model.SeverityNormal, WasteType: model.WasteTypeGeneral, CreatedAt: now.Add(-time.Hour)})
	store.seed(model.Report{Location: "B", Severity: model.SeverityEmergency, WasteType: model.WasteTypeGeneral, CreatedAt: now.Add(-50 * time.Hour)})
	store.seed(model.Report{Location: "C", Severity: model.SeverityNormal, WasteType: model.WasteTypeGeneral, CreatedAt: now.Add(-2 * time.Hour), Status: model.ReportStatusCompleted})

	svc, _ := newTestService(store, nil)
	tasks, err := svc.Worklist(context.Background(), driver(), now)
	if err != nil {
		t.Fatalf("worklist failed: %v", err)
	}

	if len(tasks) != 2 {
		t.Fatalf("expected 2 pending tasks, got %d", len(tasks))
	}
	if tasks[0].Location != "B" {
		t.Fatalf("expected emergency first, got %s", tasks[0].Location)
	}
	if tasks[0].SLA.Bucket != model.SLABreached {
		t.Fatalf("expected breached bucket on 50h-old report, got %s", tasks[0].SLA.Bucket)
	}
}

func TestWorklistDeniedForCitizens(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, nil)

	if _, err := svc.Worklist(context.Background(), citizen(), time.Now()); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestAnalyticsAdminOnly(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, nil)

	if _, err := svc.Analytics(context.Background(), driver(), time.Now()); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if _, err := svc.Analytics(context.Background(), admin(), time.Now()); err != nil {
		t.Fatalf("admin analytics failed: %v", err)
	}
}
