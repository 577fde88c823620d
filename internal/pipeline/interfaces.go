package pipeline

import (
	"context"

	"github.com/dvloznov/pharmacy-sales/internal/runs"
)

// Summarizer is the dashboard API consumed by the HTTP handlers and the CLI.
// This interface enables mocking of the pipeline in handler tests.
type Summarizer interface {
	// Summarize builds the dashboard for export bytes read from source.
	Summarize(ctx context.Context, source string, data []byte) (*Dashboard, error)

	// SummarizeURI fetches a gs:// export and builds its dashboard.
	SummarizeURI(ctx context.Context, uri string) (*Dashboard, error)

	// Run returns the record of a run.
	Run(ctx context.Context, runID string) (*runs.Run, error)

	// Runs lists recorded runs.
	Runs(ctx context.Context, filter runs.Filter) ([]*runs.Run, error)

	// Dashboard returns the dashboard of a completed run while it is cached.
	Dashboard(ctx context.Context, runID string) (*Dashboard, error)
}

var _ Summarizer = (*Service)(nil)
