package service

import (
	"context"

	"github.com/google/uuid"

	"waste-report-service/internal/model"
	"waste-report-service/internal/repository"
)

// ReportStore is the slice of the repository the services depend on.
// *repository.ReportRepository satisfies it; tests substitute an
// in-memory fake.
type ReportStore interface {
	List(ctx context.Context, filter repository.ReportFilter) ([]model.Report, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Report, error)
	Create(ctx context.Context, report *model.Report) error
	Complete(ctx context.Context, id uuid.UUID, afterPhoto string, notes string) (bool, error)
	Escalate(ctx context.Context, id uuid.UUID, reason string) (bool, error)
	ListPendingUnescalated(ctx context.Context) ([]model.Report, error)
	LogEvent(ctx context.Context, logEntry *model.ReportStatusLog) error
}

var _ ReportStore = (*repository.ReportRepository)(nil)
