// Package history persists completed run records so past searches can
// be listed and reviewed later.
package history

import "time"

// Record describes one completed run.
type Record struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Pattern   string        `json:"pattern"`
	InputPath string        `json:"input_path"`
	Workers   int           `json:"workers"`
	Chunks    int64         `json:"chunks"`
	Bytes     int64         `json:"bytes"`
	Matches   int64         `json:"matches"`
	Duration  time.Duration `json:"duration"`

	// Output is the matched-record stream the run produced. It is
	// archived apart from the metadata and may be large.
	Output []byte `json:"-"`
}
