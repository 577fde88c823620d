// Package runs records every dashboard pipeline invocation.
package runs

import (
	"context"
	"errors"
	"time"
)

// Status is the lifecycle state of a run.
type Status string

const (
	// StatusPending indicates the run was accepted but has not started.
	StatusPending Status = "pending"
	// StatusRunning indicates the pipeline is executing.
	StatusRunning Status = "running"
	// StatusCompleted indicates the dashboard was built.
	StatusCompleted Status = "completed"
	// StatusFailed indicates the pipeline returned an error.
	StatusFailed Status = "failed"
)

// ErrNotFound is returned when no run has the requested ID.
var ErrNotFound = errors.New("run not found")

// Run is the record of one pipeline invocation.
type Run struct {
	// RunID is the unique identifier for this run.
	RunID string `json:"run_id"`

	// Source is the file name or gs:// URI the export came from.
	Source string `json:"source"`

	// FileHash is the hex SHA-256 of the export bytes.
	FileHash string `json:"file_hash,omitempty"`

	Status Status `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the run failed.
	Error string `json:"error,omitempty"`

	// TransactionCount is the number of cash sales after normalization.
	TransactionCount int `json:"transaction_count"`

	// Cached is set when the dashboard was served from the result cache.
	Cached bool `json:"cached"`
}

// Filter defines filtering criteria for listing runs.
type Filter struct {
	// FileHash filters runs by export content.
	FileHash string

	// Status filters runs by status.
	Status Status

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}

// Store saves and retrieves run records.
type Store interface {
	// Save saves or updates a run.
	Save(ctx context.Context, run *Run) error

	// Get retrieves a run by ID. It returns ErrNotFound for unknown IDs.
	Get(ctx context.Context, runID string) (*Run, error)

	// List retrieves runs newest first with optional filtering.
	List(ctx context.Context, filter Filter) ([]*Run, error)
}
