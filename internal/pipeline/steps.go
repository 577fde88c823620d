package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/dvloznov/pharmacy-sales/internal/aggregate"
	"github.com/dvloznov/pharmacy-sales/internal/domain"
	"github.com/dvloznov/pharmacy-sales/internal/extract"
	"github.com/dvloznov/pharmacy-sales/internal/logger"
	"github.com/dvloznov/pharmacy-sales/internal/normalize"
)

// PipelineStep represents a single step in the dashboard pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps. Each step
// fills in its own fields and leaves earlier ones untouched.
type PipelineState struct {
	RunID    string
	Source   string
	Data     []byte
	FileHash string

	Raw          domain.RawExtract
	Transactions []domain.Transaction
	Dashboard    *Dashboard
	Warnings     []string
}

// HashSource returns the hex SHA-256 of an export.
func HashSource(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Step 1: HashSourceStep fingerprints the export bytes.
type HashSourceStep struct{}

func (s *HashSourceStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.FileHash == "" {
		state.FileHash = HashSource(state.Data)
	}
	return nil
}

// Step 2: ReadExtractStep decodes the spreadsheet into raw cells.
type ReadExtractStep struct{}

func (s *ReadExtractStep) Execute(ctx context.Context, state *PipelineState) error {
	raw, err := extract.Read(state.Data)
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	log.Debug().
		Str("format", string(extract.Detect(state.Data))).
		Int("rows", len(raw)).
		Msg("Extract read")
	state.Raw = raw
	return nil
}

// Step 3: NormalizeStep keeps the cash sales and types their columns.
type NormalizeStep struct {
	Normalizer normalize.Normalizer
}

func (s *NormalizeStep) Execute(ctx context.Context, state *PipelineState) error {
	res, err := s.Normalizer.Run(state.Raw)
	if err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	for _, w := range res.Warnings {
		log.Warn().Msg(w)
	}
	log.Info().
		Int("extract_rows", len(state.Raw)).
		Int("cash_sales", len(res.Transactions)).
		Msg("Extract normalized")

	state.Transactions = res.Transactions
	state.Warnings = append(state.Warnings, res.Warnings...)
	return nil
}

// Step 4: AggregateStep builds every dashboard table from the transactions.
type AggregateStep struct {
	Aggregator aggregate.Aggregator
}

func (s *AggregateStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Transactions == nil {
		return fmt.Errorf("aggregate: no normalized transactions in state")
	}

	buckets := s.Aggregator.TimeBuckets(state.Transactions)
	log := logger.FromContext(ctx)
	for _, w := range buckets.Warnings {
		log.Warn().Msg(w)
	}

	warnings := make([]string, 0, len(state.Warnings)+len(buckets.Warnings))
	warnings = append(warnings, state.Warnings...)
	warnings = append(warnings, buckets.Warnings...)

	state.Dashboard = &Dashboard{
		RunID:        state.RunID,
		Source:       state.Source,
		FileHash:     state.FileHash,
		Transactions: state.Transactions,
		TimeBuckets:  buckets.Rows,
		Overnight:    buckets.Overnight,
		Weekdays:     aggregate.AggregateByWeekday(state.Transactions),
		Hourly:       aggregate.HourlyTrend(state.Transactions),
		Cumulative:   aggregate.CumulativeByHour(state.Transactions),
		Shifts:       aggregate.ShiftTotals(state.Transactions),
		LastHours:    aggregate.LastHoursComparison(state.Transactions),
		Warnings:     warnings,
	}
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially. A cancelled context
// stops the pipeline between steps.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline step %d not started: %w", i+1, err)
		}
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewDashboardPipeline creates the standard 4-step pipeline that turns
// export bytes into a dashboard.
func NewDashboardPipeline(n normalize.Normalizer, a aggregate.Aggregator) *Pipeline {
	return NewPipeline(
		&HashSourceStep{},
		&ReadExtractStep{},
		&NormalizeStep{Normalizer: n},
		&AggregateStep{Aggregator: a},
	)
}
