package pipeline

import (
	"github.com/dvloznov/pharmacy-sales/internal/domain"
)

// Dashboard holds every table built from one export. It is read-only once
// returned; cached dashboards are shared between runs.
type Dashboard struct {
	RunID    string `json:"run_id"`
	Source   string `json:"source"`
	FileHash string `json:"file_hash"`

	Transactions []domain.Transaction       `json:"transactions"`
	TimeBuckets  []domain.TimeBucketRow     `json:"time_buckets"`
	Overnight    []domain.OvernightRow      `json:"overnight"`
	Weekdays     []domain.WeekdaySummaryRow `json:"weekdays"`
	Hourly       []domain.HourlyRow         `json:"hourly"`
	Cumulative   []domain.HourlyRow         `json:"cumulative"`
	Shifts       []domain.ShiftRow          `json:"shifts"`
	LastHours    []domain.HourComparisonRow `json:"last_hours"`

	Warnings []string `json:"warnings"`
}

// withRun returns a shallow copy of d labelled with another run.
func (d *Dashboard) withRun(runID, source string) *Dashboard {
	c := *d
	c.RunID = runID
	c.Source = source
	return &c
}
