package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"waste-report-service/internal/model"
	"waste-report-service/internal/repository"
)

// fakeStore is an in-memory ReportStore mimicking the database-side
// behavior that matters: server-assigned timestamps and conditional
// updates that report whether a row was affected.
type fakeStore struct {
	mu      sync.Mutex
	order   []uuid.UUID
	reports map[uuid.UUID]*model.Report
	logs    []model.ReportStatusLog

	createErr     error
	escalateErr   map[uuid.UUID]error
	completeCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reports:     make(map[uuid.UUID]*model.Report),
		escalateErr: make(map[uuid.UUID]error),
	}
}

func (s *fakeStore) seed(report model.Report) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.Status == "" {
		report.Status = model.ReportStatusPending
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	s.reports[report.ID] = &report
	s.order = append(s.order, report.ID)
	return report.ID
}

func (s *fakeStore) List(ctx context.Context, filter repository.ReportFilter) ([]model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Report
	for _, id := range s.order {
		r := s.reports[id]
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, r.Status) {
			continue
		}
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		if filter.Escalated != nil && r.Escalated != *filter.Escalated {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *r
	return &copy, nil
}

func (s *fakeStore) Create(ctx context.Context, report *model.Report) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	stored := *report
	s.reports[report.ID] = &stored
	s.order = append(s.order, report.ID)
	return nil
}

func (s *fakeStore) Complete(ctx context.Context, id uuid.UUID, afterPhoto string, notes string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completeCalls++

	r, ok := s.reports[id]
	if !ok || r.Status != model.ReportStatusPending {
		return false, nil
	}
	now := time.Now()
	r.Status = model.ReportStatusCompleted
	r.ResolvedAt = &now
	r.AfterPhoto = &afterPhoto
	if notes != "" {
		r.CompletionNotes = &notes
	}
	return true, nil
}

func (s *fakeStore) Escalate(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.escalateErr[id]; err != nil {
		return false, err
	}

	r, ok := s.reports[id]
	if !ok || r.Status != model.ReportStatusPending || r.Escalated {
		return false, nil
	}
	now := time.Now()
	r.Escalated = true
	r.EscalatedAt = &now
	r.EscalationReason = &reason
	r.Priority = "high"
	return true, nil
}

func (s *fakeStore) ListPendingUnescalated(ctx context.Context) ([]model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Report
	for _, id := range s.order {
		r := s.reports[id]
		if r.Status == model.ReportStatusPending && !r.Escalated {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeStore) LogEvent(ctx context.Context, logEntry *model.ReportStatusLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, *logEntry)
	return nil
}

func (s *fakeStore) get(id uuid.UUID) model.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.reports[id]
}

func containsStatus(statuses []model.ReportStatus, status model.ReportStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

var errStoreDown = errors.New("store down")

type fakeVision struct {
	verdict *Verification
	err     error
}

func (v *fakeVision) Verify(ctx context.Context, image string) (*Verification, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.verdict, nil
}

type countingNotifier struct {
	mu    sync.Mutex
	count int
}

func (n *countingNotifier) Notify(ctx context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
}

func (n *countingNotifier) calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}
