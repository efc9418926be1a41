package stores

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Trace statuses.
const (
	TraceOK    = "ok"
	TraceError = "error"
)

// GenerationTrace records one remote generation call.
// Indexed by operation and timestamp for the recent-activity listing.
type GenerationTrace struct {
	ID         uint              `gorm:"primarykey" json:"-"`
	CreatedAt  time.Time         `json:"-"`
	TraceID    string            `gorm:"uniqueIndex;size:64;not null" json:"trace_id"`
	Operation  string            `gorm:"index;size:64;not null" json:"operation"`
	Mode       string            `gorm:"size:32" json:"mode,omitempty"`
	Model      string            `gorm:"size:128" json:"model,omitempty"`
	Status     string            `gorm:"size:16;not null" json:"status"` // ok, error
	Error      string            `gorm:"type:text" json:"error,omitempty"`
	Details    datatypes.JSONMap `json:"details,omitempty"`
	Timestamp  int64             `gorm:"index;not null" json:"timestamp"`
	DurationMS int64             `json:"duration_ms"`
}

// TraceStore interface for trace persistence operations
type TraceStore interface {
	// SaveTrace saves a single trace event
	SaveTrace(trace *GenerationTrace) error

	// RecentTraces returns the newest traces first
	RecentTraces(limit int) ([]*GenerationTrace, error)

	// TracesByOperation returns the newest traces of one operation first
	TracesByOperation(operation string, limit int) ([]*GenerationTrace, error)

	// PruneTraces removes traces recorded before cutoff
	PruneTraces(cutoff time.Time) (int64, error)
}

// SaveTrace saves a single trace event
func (s *GORMStore) SaveTrace(trace *GenerationTrace) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.db.Create(trace).Error
}

// RecentTraces retrieves the latest traces, newest first. limit <= 0 means 50.
func (s *GORMStore) RecentTraces(limit int) ([]*GenerationTrace, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if limit <= 0 {
		limit = 50
	}

	var traces []*GenerationTrace
	err := s.db.Order("timestamp DESC").Order("id DESC").Limit(limit).Find(&traces).Error
	return traces, err
}

// TracesByOperation retrieves the latest traces for one operation, newest first
func (s *GORMStore) TracesByOperation(operation string, limit int) ([]*GenerationTrace, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if limit <= 0 {
		limit = 50
	}

	var traces []*GenerationTrace
	err := s.db.Where("operation = ?", operation).
		Order("timestamp DESC").Order("id DESC").
		Limit(limit).
		Find(&traces).Error
	return traces, err
}

// PruneTraces deletes traces older than cutoff and reports how many went
func (s *GORMStore) PruneTraces(cutoff time.Time) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}
	res := s.db.Where("timestamp < ?", cutoff.UnixMilli()).Delete(&GenerationTrace{})
	return res.RowsAffected, res.Error
}
