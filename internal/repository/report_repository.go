package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"waste-report-service/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

type ReportFilter struct {
	Statuses   []model.ReportStatus
	WasteTypes []model.WasteType
	Severities []model.Severity
	UserID     *uuid.UUID
	Escalated  *bool
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

// List returns reports newest first. Ordering by created_at DESC is the
// contract every live subscriber relies on.
func (r *ReportRepository) List(ctx context.Context, filter ReportFilter) ([]model.Report, error) {
	query := r.db.WithContext(ctx).Model(&model.Report{})

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if len(filter.WasteTypes) > 0 {
		query = query.Where("waste_type IN ?", filter.WasteTypes)
	}
	if len(filter.Severities) > 0 {
		query = query.Where("severity IN ?", filter.Severities)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Escalated != nil {
		query = query.Where("escalated = ?", *filter.Escalated)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}

	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var reports []model.Report
	if err := query.Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	var report model.Report
	if err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) Create(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// Complete performs the PENDING -> COMPLETED transition as a single
// conditional update. resolved_at is assigned by the database. Returns
// false when the report was not pending anymore, which covers both the
// double-completion case and the two-driver race.
func (r *ReportRepository) Complete(ctx context.Context, id uuid.UUID, afterPhoto string, notes string) (bool, error) {
	updates := map[string]interface{}{
		"status":      model.ReportStatusCompleted,
		"resolved_at": gorm.Expr("NOW()"),
		"after_photo": afterPhoto,
	}
	if notes != "" {
		updates["completion_notes"] = notes
	}

	tx := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("id = ? AND status = ?", id, model.ReportStatusPending).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// Escalate flips the one-way escalated flag. The WHERE guard makes the
// write idempotent across overlapping scans: only one of any number of
// concurrent attempts affects a row.
func (r *ReportRepository) Escalate(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("id = ? AND status = ? AND escalated = FALSE", id, model.ReportStatusPending).
		Updates(map[string]interface{}{
			"escalated":         true,
			"escalated_at":      gorm.Expr("NOW()"),
			"escalation_reason": reason,
			"priority":          "high",
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *ReportRepository) ListPendingUnescalated(ctx context.Context) ([]model.Report, error) {
	var reports []model.Report
	err := r.db.WithContext(ctx).
		Where("status = ? AND escalated = FALSE", model.ReportStatusPending).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *ReportRepository) LogEvent(ctx context.Context, logEntry *model.ReportStatusLog) error {
	return r.db.WithContext(ctx).Create(logEntry).Error
}
