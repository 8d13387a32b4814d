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

const (
	AutoEscalationReason    = "Automatic escalation: SLA breach (>48h)"
	defaultManualEscalation = "Manual escalation"
)

// EscalationEngine watches pending reports for SLA breaches and flips
// the one-way escalated flag. Repeated or overlapping scans are safe:
// the store's escalated guard makes each report's escalation happen at
// most once.
type EscalationEngine struct {
	store    ReportStore
	notifier Notifier
	log      zerolog.Logger
	interval time.Duration
}

func NewEscalationEngine(store ReportStore, notifier Notifier, log zerolog.Logger, interval time.Duration) *EscalationEngine {
	return &EscalationEngine{
		store:    store,
		notifier: notifier,
		log:      log,
		interval: interval,
	}
}

// ScanAndEscalate escalates every pending, unescalated report whose SLA
// bucket is breached. Per-report failures are logged and skipped; the
// returned slice holds the IDs that were actually escalated.
func (e *EscalationEngine) ScanAndEscalate(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	candidates, err := e.store.ListPendingUnescalated(ctx)
	if err != nil {
		return nil, err
	}

	var escalated []uuid.UUID
	for _, report := range candidates {
		if ClassifySLA(report.CreatedAt, now).Bucket != model.SLABreached {
			continue
		}

		ok, err := e.store.Escalate(ctx, report.ID, AutoEscalationReason)
		if err != nil {
			e.log.Error().Err(err).Str("report_id", report.ID.String()).Msg("escalation write failed")
			continue
		}
		if !ok {
			// Lost the race to a concurrent scan. Already escalated.
			continue
		}

		if err := e.store.LogEvent(ctx, &model.ReportStatusLog{
			ReportID: report.ID,
			Event:    model.ReportEventEscalated,
			Note:     AutoEscalationReason,
		}); err != nil {
			e.log.Warn().Err(err).Str("report_id", report.ID.String()).Msg("escalation audit log failed")
		}

		escalated = append(escalated, report.ID)
	}

	if len(escalated) > 0 {
		e.log.Info().Int("count", len(escalated)).Msg("reports escalated for SLA breach")
		if e.notifier != nil {
			e.notifier.Notify(ctx)
		}
	}
	return escalated, nil
}

// ManualEscalate is the supervisor path: same effect as the automatic
// one but with a caller-supplied reason and no age precondition.
func (e *EscalationEngine) ManualEscalate(ctx context.Context, principal model.Principal, reportID uuid.UUID, reason string) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if strings.TrimSpace(reason) == "" {
		reason = defaultManualEscalation
	}

	ok, err := e.store.Escalate(ctx, reportID, reason)
	if err != nil {
		e.log.Error().Err(err).Str("report_id", reportID.String()).Msg("manual escalation write failed")
		return ErrUpdateFailed
	}
	if !ok {
		if _, err := e.store.GetByID(ctx, reportID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return ErrUpdateFailed
		}
		return ErrInvalidTransition
	}

	if err := e.store.LogEvent(ctx, &model.ReportStatusLog{
		ReportID:  reportID,
		Event:     model.ReportEventEscalated,
		Note:      reason,
		ChangedBy: &principal.UserID,
	}); err != nil {
		e.log.Warn().Err(err).Str("report_id", reportID.String()).Msg("escalation audit log failed")
	}

	if e.notifier != nil {
		e.notifier.Notify(ctx)
	}
	return nil
}

// Stats reports how many reports are escalated and how many currently
// qualify but have not been escalated yet.
func (e *EscalationEngine) Stats(ctx context.Context, principal model.Principal, now time.Time) (*model.EscalationStats, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	reports, err := e.store.List(ctx, repository.ReportFilter{})
	if err != nil {
		return nil, err
	}

	stats := &model.EscalationStats{}
	for _, r := range reports {
		if r.Escalated {
			stats.TotalEscalated++
			continue
		}
		if r.Status == model.ReportStatusPending && ClassifySLA(r.CreatedAt, now).Bucket == model.SLABreached {
			stats.NeedsEscalation++
		}
	}
	return stats, nil
}

// Run drives the scan on a ticker until the context is canceled. The
// first pass happens immediately.
func (e *EscalationEngine) Run(ctx context.Context) {
	e.scan(ctx)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.scan(ctx)
		}
	}
}

func (e *EscalationEngine) scan(ctx context.Context) {
	if _, err := e.ScanAndEscalate(ctx, time.Now()); err != nil {
		e.log.Error().Err(err).Msg("escalation scan failed")
	}
}
