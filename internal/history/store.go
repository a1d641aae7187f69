package history

import "errors"

var (
	// ErrRunNotFound is returned when no record exists for a run ID.
	ErrRunNotFound = errors.New("run not found")
)

// Store persists run records.
type Store interface {
	// SaveRun persists one completed run.
	SaveRun(rec *Record) error

	// GetRun loads a run by ID, including its archived output.
	GetRun(id string) (*Record, error)

	// ListRuns returns up to limit runs, most recent first, without
	// their output blobs. limit <= 0 means no limit.
	ListRuns(limit int) ([]*Record, error)

	// Close releases the store.
	Close() error
}

// NoOpStore discards every save and reports no runs. It stands in when
// history is disabled so callers never branch on nil.
type NoOpStore struct{}

// NewNoOpStore creates a store that keeps nothing.
func NewNoOpStore() *NoOpStore {
	return &NoOpStore{}
}

func (s *NoOpStore) SaveRun(rec *Record) error             { return nil }
func (s *NoOpStore) GetRun(id string) (*Record, error)     { return nil, ErrRunNotFound }
func (s *NoOpStore) ListRuns(limit int) ([]*Record, error) { return nil, nil }
func (s *NoOpStore) Close() error                          { return nil }
