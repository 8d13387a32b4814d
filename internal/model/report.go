package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "PENDING"
	ReportStatusCompleted ReportStatus = "COMPLETED"
)

type WasteType string

const (
	WasteTypeDry       WasteType = "DRY_WASTE"
	WasteTypeWet       WasteType = "WET_WASTE"
	WasteTypeHazardous WasteType = "HAZARDOUS"
	WasteTypeGeneral   WasteType = "GENERAL"
)

func (t WasteType) Valid() bool {
	switch t {
	case WasteTypeDry, WasteTypeWet, WasteTypeHazardous, WasteTypeGeneral:
		return true
	}
	return false
}

type Severity string

const (
	SeverityNormal    Severity = "NORMAL"
	SeverityHigh      Severity = "HIGH"
	SeverityEmergency Severity = "EMERGENCY"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityNormal, SeverityHigh, SeverityEmergency:
		return true
	}
	return false
}

// Report is the central record of the system: one citizen submission,
// observed live by every connected role until a driver completes it.
// CreatedAt and ResolvedAt are assigned by the database so client clock
// skew never leaks into SLA math.
type Report struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Location string    `gorm:"type:text;not null" json:"location"`
	Lat      *string   `gorm:"type:varchar(32)" json:"lat,omitempty"`
	Lng      *string   `gorm:"type:varchar(32)" json:"lng,omitempty"`

	WasteType   WasteType `gorm:"type:waste_type;not null" json:"waste_type"`
	Severity    Severity  `gorm:"type:report_severity;not null" json:"severity"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"type:text;not null" json:"image"`

	// Advisory classifier output. Informational only, never gates a
	// transition.
	AIVerified      bool    `gorm:"not null;default:false" json:"ai_verified"`
	AIConfidence    float64 `gorm:"not null;default:0" json:"ai_confidence"`
	AIDetectedItems string  `gorm:"type:text" json:"ai_detected_items"`

	Status    ReportStatus `gorm:"type:report_status;not null;default:'PENDING'" json:"status"`
	CreatedAt time.Time    `gorm:"type:timestamptz;not null;default:now()" json:"created_at"`

	ResolvedAt      *time.Time `gorm:"type:timestamptz" json:"resolved_at,omitempty"`
	AfterPhoto      *string    `gorm:"type:text" json:"after_photo,omitempty"`
	CompletionNotes *string    `gorm:"type:text" json:"completion_notes,omitempty"`

	Escalated        bool       `gorm:"not null;default:false" json:"escalated"`
	EscalatedAt      *time.Time `gorm:"type:timestamptz" json:"escalated_at,omitempty"`
	EscalationReason *string    `gorm:"type:text" json:"escalation_reason,omitempty"`

	Priority string `gorm:"type:varchar(16);not null;default:'normal'" json:"priority"`
	Votes    int    `gorm:"not null;default:0" json:"votes"`
}

func (Report) TableName() string {
	return "waste_reports"
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *Report) HasCoords() bool {
	return r.Lat != nil && r.Lng != nil
}
