package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"waste-report-service/internal/model"
	"waste-report-service/internal/repository"
)

// Notifier is pinged after every successful write so live subscribers
// receive a fresh snapshot. The feed hub satisfies it.
type Notifier interface {
	Notify(ctx context.Context)
}

type ReportService struct {
	store    ReportStore
	vision   VisionClient
	notifier Notifier
	log      zerolog.Logger
}

func NewReportService(store ReportStore, vision VisionClient, notifier Notifier, log zerolog.Logger) *ReportService {
	return &ReportService{
		store:    store,
		vision:   vision,
		notifier: notifier,
		log:      log,
	}
}

type SubmitReportInput struct {
	Location    string
	Lat         *string
	Lng         *string
	WasteType   model.WasteType
	Severity    model.Severity
	Description string
	Image       string
}

func (s *ReportService) Submit(ctx context.Context, principal model.Principal, input SubmitReportInput) (*model.Report, error) {
	if !(principal.IsCitizen() || principal.IsAdmin()) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(input.Location) == "" || strings.TrimSpace(input.Image) == "" {
		return nil, ErrInvalidInput
	}
	if !input.WasteType.Valid() || !input.Severity.Valid() {
		return nil, ErrInvalidInput
	}
	if (input.Lat == nil) != (input.Lng == nil) {
		return nil, ErrInvalidInput
	}

	verdict := s.verifyImage(ctx, input.Image)

	report := &model.Report{
		UserID:          principal.UserID,
		Location:        strings.TrimSpace(input.Location),
		Lat:             input.Lat,
		Lng:             input.Lng,
		WasteType:       input.WasteType,
		Severity:        input.Severity,
		Description:     input.Description,
		Image:           input.Image,
		AIVerified:      verdict.IsValid,
		AIConfidence:    verdict.Confidence,
		AIDetectedItems: strings.Join(verdict.DetectedItems, ","),
		Status:          model.ReportStatusPending,
		Priority:        "normal",
		Votes:           0,
	}

	if err := s.store.Create(ctx, report); err != nil {
		s.log.Error().Err(err).Msg("report creation failed")
		return nil, ErrSubmissionFailed
	}

	// The report exists at this point; an audit-row failure must not
	// turn a successful submission into an error.
	if err := s.store.LogEvent(ctx, &model.ReportStatusLog{
		ReportID:  report.ID,
		Event:     model.ReportEventSubmitted,
		Note:      verdict.Reason,
		ChangedBy: &principal.UserID,
	}); err != nil {
		s.log.Warn().Err(err).Str("report_id", report.ID.String()).Msg("submission audit log failed")
	}

	s.notify(ctx)
	return report, nil
}

func (s *ReportService) Complete(ctx context.Context, principal model.Principal, reportID uuid.UUID, afterPhoto, notes string) error {
	if !(principal.IsDriver() || principal.IsAdmin()) {
		return ErrPermissionDenied
	}
	if strings.TrimSpace(afterPhoto) == "" {
		return ErrMissingEvidence
	}

	ok, err := s.store.Complete(ctx, reportID, afterPhoto, notes)
	if err != nil {
		s.log.Error().Err(err).Str("report_id", reportID.String()).Msg("completion write failed")
		return ErrUpdateFailed
	}
	if !ok {
		// Zero rows affected: the report is either missing or no
		// longer pending.
		if _, err := s.store.GetByID(ctx, reportID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return ErrUpdateFailed
		}
		return ErrInvalidTransition
	}

	if err := s.store.LogEvent(ctx, &model.ReportStatusLog{
		ReportID:  reportID,
		Event:     model.ReportEventCompleted,
		Note:      notes,
		ChangedBy: &principal.UserID,
	}); err != nil {
		s.log.Warn().Err(err).Str("report_id", reportID.String()).Msg("completion audit log failed")
	}

	s.notify(ctx)
	return nil
}

func (s *ReportService) Get(ctx context.Context, reportID uuid.UUID) (*model.Report, error) {
	report, err := s.store.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return report, nil
}

type ListReportsOptions struct {
	Statuses   []model.ReportStatus
	WasteTypes []model.WasteType
	Severities []model.Severity
	Escalated  *bool
	Mine       bool
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

func (s *ReportService) List(ctx context.Context, principal model.Principal, opts ListReportsOptions) ([]model.Report, error) {
	filter := repository.ReportFilter{
		Statuses:   opts.Statuses,
		WasteTypes: opts.WasteTypes,
		Severities: opts.Severities,
		Escalated:  opts.Escalated,
		DateFrom:   opts.DateFrom,
		DateTo:     opts.DateTo,
		Limit:      opts.Limit,
		Offset:     opts.Offset,
	}
	if opts.Mine {
		userID := principal.UserID
		filter.UserID = &userID
	}
	return s.store.List(ctx, filter)
}

// Snapshot returns the full collection newest first. It doubles as the
// loader behind the live feed.
func (s *ReportService) Snapshot(ctx context.Context) ([]model.Report, error) {
	return s.store.List(ctx, repository.ReportFilter{})
}

// Worklist is the driver view: pending reports ordered by priority
// score, each annotated with its SLA status.
func (s *ReportService) Worklist(ctx context.Context, principal model.Principal, now time.Time) ([]model.TrackedReport, error) {
	if !(principal.IsDriver() || principal.IsAdmin()) {
		return nil, ErrPermissionDenied
	}

	pending, err := s.store.List(ctx, repository.ReportFilter{
		Statuses: []model.ReportStatus{model.ReportStatusPending},
	})
	if err != nil {
		return nil, err
	}

	sorted := SortByPriority(pending)
	tasks := make([]model.TrackedReport, 0, len(sorted))
	for _, r := range sorted {
		tasks = append(tasks, model.TrackedReport{
			Report: r,
			SLA:    ClassifySLA(r.CreatedAt, now),
		})
	}
	return tasks, nil
}

func (s *ReportService) Analytics(ctx context.Context, principal model.Principal, now time.Time) (*model.AnalyticsSummary, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	reports, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	summary := Aggregate(reports, now)
	return &summary, nil
}

type SLADashboard struct {
	Breakdown model.SLABreakdown    `json:"breakdown"`
	Pending   []model.TrackedReport `json:"pending"`
}

func (s *ReportService) SLAView(ctx context.Context, principal model.Principal, now time.Time) (*SLADashboard, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	reports, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &SLADashboard{
		Breakdown: BreakdownSLA(reports, now),
		Pending:   TrackPending(reports, now),
	}, nil
}

// verifyImage asks the advisory classifier for a verdict. Any failure
// degrades to an allow-with-no-guidance verdict so the classifier can
// never block a submission.
func (s *ReportService) verifyImage(ctx context.Context, image string) *Verification {
	if s.vision == nil {
		return unavailableVerdict()
	}
	verdict, err := s.vision.Verify(ctx, image)
	if err != nil {
		s.log.Warn().Err(err).Msg("advisory classifier unavailable")
		return unavailableVerdict()
	}
	return verdict
}

func (s *ReportService) notify(ctx context.Context) {
	if s.notifier != nil {
		s.notifier.Notify(ctx)
	}
}
