package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dvloznov/pharmacy-sales/internal/aggregate"
	"github.com/dvloznov/pharmacy-sales/internal/gcs"
	"github.com/dvloznov/pharmacy-sales/internal/logger"
	"github.com/dvloznov/pharmacy-sales/internal/normalize"
	"github.com/dvloznov/pharmacy-sales/internal/runs"
)

// ErrNoFetcher is returned by SummarizeURI when no storage is configured.
var ErrNoFetcher = errors.New("no object fetcher configured")

// ErrDashboardExpired is returned for a known run whose dashboard has left
// the cache.
var ErrDashboardExpired = errors.New("dashboard no longer cached")

// ServiceOptions configures NewService. Zero values use the default
// normalizer and aggregator, no cache and no timeout.
type ServiceOptions struct {
	Normalizer *normalize.Normalizer
	Aggregator *aggregate.Aggregator
	Runs       runs.Store
	Fetcher    gcs.ObjectFetcher
	CacheSize  int
	CacheTTL   time.Duration
	Timeout    time.Duration
}

// Service runs the dashboard pipeline, records every run and caches
// dashboards by export content.
type Service struct {
	pipeline *Pipeline
	runs     runs.Store
	fetcher  gcs.ObjectFetcher
	cache    *expirable.LRU[string, *Dashboard]
	timeout  time.Duration
	now      func() time.Time
}

// NewService creates a service. Runs is required.
func NewService(opts ServiceOptions) *Service {
	n := normalize.Default()
	if opts.Normalizer != nil {
		n = *opts.Normalizer
	}
	a := aggregate.Default()
	if opts.Aggregator != nil {
		a = *opts.Aggregator
	}

	s := &Service{
		pipeline: NewDashboardPipeline(n, a),
		runs:     opts.Runs,
		fetcher:  opts.Fetcher,
		timeout:  opts.Timeout,
		now:      time.Now,
	}
	if opts.CacheSize > 0 {
		s.cache = expirable.NewLRU[string, *Dashboard](opts.CacheSize, nil, opts.CacheTTL)
	}
	return s
}

// SummarizeURI fetches an export from cloud storage and summarizes it.
func (s *Service) SummarizeURI(ctx context.Context, uri string) (*Dashboard, error) {
	if s.fetcher == nil {
		return nil, ErrNoFetcher
	}
	data, err := s.fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	return s.Summarize(ctx, uri, data)
}

// Summarize builds the dashboard for one export. Byte-identical exports
// return the cached tables under a new run.
func (s *Service) Summarize(ctx context.Context, source string, data []byte) (*Dashboard, error) {
	run := &runs.Run{
		RunID:     uuid.New().String(),
		Source:    source,
		FileHash:  HashSource(data),
		Status:    runs.StatusPending,
		CreatedAt: s.now(),
	}

	log := logger.WithFields(logger.FromContext(ctx), map[string]interface{}{
		"run_id":    run.RunID,
		"source":    source,
		"file_hash": run.FileHash,
	})
	ctx = logger.WithContext(ctx, log)

	if s.cache != nil {
		if cached, ok := s.cache.Get(run.FileHash); ok {
			dash := cached.withRun(run.RunID, source)
			run.Cached = true
			s.finish(ctx, run, len(dash.Transactions), nil)
			log.Info().Msg("Dashboard served from cache")
			return dash, nil
		}
	}

	started := s.now()
	run.Status = runs.StatusRunning
	run.StartedAt = &started
	if err := s.runs.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	state := &PipelineState{
		RunID:    run.RunID,
		Source:   source,
		Data:     data,
		FileHash: run.FileHash,
	}
	if err := s.pipeline.Execute(ctx, state); err != nil {
		s.finish(ctx, run, 0, err)
		log.Error().Err(err).Msg("Dashboard pipeline failed")
		return nil, err
	}

	dash := state.Dashboard
	if s.cache != nil {
		s.cache.Add(run.FileHash, dash)
	}
	s.finish(ctx, run, len(dash.Transactions), nil)

	log.Info().
		Int("cash_sales", len(dash.Transactions)).
		Int("grid_rows", len(dash.TimeBuckets)).
		Int("warnings", len(dash.Warnings)).
		Msg("Dashboard built")

	return dash, nil
}

// finish records the final state of a run. Recording failures are logged,
// not returned, so they never mask the pipeline result.
func (s *Service) finish(ctx context.Context, run *runs.Run, count int, runErr error) {
	completed := s.now()
	run.CompletedAt = &completed
	run.TransactionCount = count
	run.Status = runs.StatusCompleted
	if runErr != nil {
		run.Status = runs.StatusFailed
		run.Error = runErr.Error()
	}
	if run.StartedAt == nil {
		run.StartedAt = &completed
	}

	if err := s.runs.Save(context.WithoutCancel(ctx), run); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("Failed to record run")
	}
}

// Run returns the record of a run.
func (s *Service) Run(ctx context.Context, runID string) (*runs.Run, error) {
	return s.runs.Get(ctx, runID)
}

// Runs lists recorded runs.
func (s *Service) Runs(ctx context.Context, filter runs.Filter) ([]*runs.Run, error) {
	return s.runs.List(ctx, filter)
}

// Dashboard returns the dashboard of a completed run while it is cached.
func (s *Service) Dashboard(ctx context.Context, runID string) (*Dashboard, error) {
	run, err := s.runs.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status != runs.StatusCompleted || s.cache == nil {
		return nil, ErrDashboardExpired
	}
	dash, ok := s.cache.Peek(run.FileHash)
	if !ok {
		return nil, ErrDashboardExpired
	}
	return dash.withRun(run.RunID, run.Source), nil
}
