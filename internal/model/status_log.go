package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportEvent string

const (
	ReportEventSubmitted ReportEvent = "SUBMITTED"
	ReportEventCompleted ReportEvent = "COMPLETED"
	ReportEventEscalated ReportEvent = "ESCALATED"
)

// ReportStatusLog records every lifecycle event so the history of a
// report survives field overwrites on the report row itself.
type ReportStatusLog struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ReportID  uuid.UUID   `gorm:"type:uuid;not null" json:"report_id"`
	Event     ReportEvent `gorm:"type:report_event;not null" json:"event"`
	Note      string      `gorm:"type:text" json:"note"`
	ChangedBy *uuid.UUID  `gorm:"type:uuid" json:"changed_by"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (ReportStatusLog) TableName() string {
	return "report_status_log"
}

func (l *ReportStatusLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
