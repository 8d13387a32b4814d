package model

// SLABucket is the coarse age classification of a pending report,
// derived from time since creation. Values are wire-visible.
type SLABucket string

const (
	SLAOnTrack  SLABucket = "on_track"
	SLAWarning  SLABucket = "warning"
	SLACritical SLABucket = "critical"
	SLABreached SLABucket = "breached"
)

type SLAStatus struct {
	AgeHours float64   `json:"age_hours"`
	Bucket   SLABucket `json:"bucket"`
}

// TrackedReport is a pending report annotated with its SLA status for
// the admin SLA view and the driver worklist.
type TrackedReport struct {
	Report
	SLA SLAStatus `json:"sla"`
}

type SLABreakdown struct {
	OnTrack  int `json:"on_track"`
	Warning  int `json:"warning"`
	Critical int `json:"critical"`
	Breached int `json:"breached"`
}

type Hotspot struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

type AnalyticsSummary struct {
	Total                 int               `json:"total"`
	Pending               int               `json:"pending"`
	Completed             int               `json:"completed"`
	Overdue               int               `json:"overdue"`
	Critical              int               `json:"critical"`
	AvgResponseTimeHours  float64           `json:"avg_response_time_hours"`
	CompletionRate        float64           `json:"completion_rate"`
	SLACompliance         float64           `json:"sla_compliance"`
	Hotspots              []Hotspot         `json:"hotspots"`
	WasteTypeDistribution map[WasteType]int `json:"waste_type_distribution"`
}

type EscalationStats struct {
	TotalEscalated  int `json:"total_escalated"`
	NeedsEscalation int `json:"needs_escalation"`
}
