// Package aggregate builds the dashboard tables from normalized cash sales.
// Every function here is pure: inputs are read, never modified.
package aggregate

import (
	"fmt"
	"sort"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/pharmacy-sales/internal/domain"
)

// BucketHours is the width of a time bucket. Buckets are anchored at midnight.
const BucketHours = 2

// Canonical grid bounds. Buckets starting before GridStartHour or at or after
// GridEndHour are overnight.
const (
	GridStartHour = 6
	GridEndHour   = 22
)

// CanonicalBuckets returns the start times of the daytime grid in order.
func CanonicalBuckets() []civil.Time {
	starts := make([]civil.Time, 0, (GridEndHour-GridStartHour)/BucketHours)
	for h := GridStartHour; h < GridEndHour; h += BucketHours {
		starts = append(starts, civil.Time{Hour: h})
	}
	return starts
}

// BucketStart floors t to the start of its two-hour window.
func BucketStart(t civil.Time) civil.Time {
	return civil.Time{Hour: t.Hour - t.Hour%BucketHours}
}

// BucketLabel renders a bucket as "HH:MM - HH:MM".
func BucketLabel(start civil.Time) string {
	end := (start.Hour + BucketHours) % 24
	return fmt.Sprintf("%02d:%02d - %02d:%02d", start.Hour, start.Minute, end, start.Minute)
}

func inGrid(start civil.Time) bool {
	return start.Hour >= GridStartHour && start.Hour < GridEndHour
}

// TimeBucketResult is the dense grid plus what was left out of it.
type TimeBucketResult struct {
	Rows      []domain.TimeBucketRow
	Overnight []domain.OvernightRow
	Warnings  []string
}

// Aggregator assigns amounts to the local and foreign slots.
type Aggregator struct {
	Currencies domain.Currencies
}

// Default returns an aggregator for the peso/dollar exports.
func Default() Aggregator {
	return Aggregator{Currencies: domain.DefaultCurrencies()}
}

// AggregateByTimeBucket returns the dense two-hour grid using the default
// currencies.
func AggregateByTimeBucket(txs []domain.Transaction) []domain.TimeBucketRow {
	return Default().TimeBuckets(txs).Rows
}

type bucketKey struct {
	date civil.Date
	hour int
}

// TimeBuckets sums sales per date and two-hour window into the two currency
// slots and keeps the last non-null exchange rate seen in each window.
// Every date with at least one sale gets all eight daytime windows, in order.
// Sales outside the daytime grid are totalled per date in Overnight.
func (a Aggregator) TimeBuckets(txs []domain.Transaction) TimeBucketResult {
	cells := make(map[bucketKey]*domain.TimeBucketRow)
	overnight := make(map[civil.Date]*domain.OvernightRow)
	dates := make(map[civil.Date]struct{})
	unknown := newCounter()

	for _, tx := range txs {
		dates[tx.Date] = struct{}{}
		start := BucketStart(tx.Time)

		if !inGrid(start) {
			row, ok := overnight[tx.Date]
			if !ok {
				row = &domain.OvernightRow{Date: tx.Date}
				overnight[tx.Date] = row
			}
			row.Count++
			if tx.Amount.Valid {
				var known bool
				if row.CurrencyAmounts, known = row.Add(a.Currencies, tx.Currency, tx.Amount.Decimal); !known {
					unknown.inc(tx.Currency)
				}
			}
			continue
		}

		key := bucketKey{date: tx.Date, hour: start.Hour}
		cell, ok := cells[key]
		if !ok {
			cell = &domain.TimeBucketRow{Date: tx.Date, BucketStart: start, BucketLabel: BucketLabel(start)}
			cells[key] = cell
		}
		if tx.Amount.Valid {
			var known bool
			if cell.CurrencyAmounts, known = cell.Add(a.Currencies, tx.Currency, tx.Amount.Decimal); !known {
				unknown.inc(tx.Currency)
			}
		}
		if tx.ExchangeRate.Valid {
			cell.ExchangeRate = tx.ExchangeRate
		}
	}

	sortedDates := sortDates(dates)
	grid := CanonicalBuckets()

	res := TimeBucketResult{
		Rows:      make([]domain.TimeBucketRow, 0, len(sortedDates)*len(grid)),
		Overnight: make([]domain.OvernightRow, 0, len(overnight)),
	}
	for _, d := range sortedDates {
		for _, start := range grid {
			if cell, ok := cells[bucketKey{date: d, hour: start.Hour}]; ok {
				res.Rows = append(res.Rows, *cell)
				continue
			}
			res.Rows = append(res.Rows, domain.TimeBucketRow{
				Date:        d,
				BucketStart: start,
				BucketLabel: BucketLabel(start),
			})
		}
		if row, ok := overnight[d]; ok {
			res.Overnight = append(res.Overnight, *row)
		}
	}

	if n := len(res.Overnight); n > 0 {
		var total int
		for _, row := range res.Overnight {
			total += row.Count
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%d sales on %d dates fall outside %02d:00 - %02d:00 and are reported as overnight totals",
			total, n, GridStartHour, GridEndHour))
	}
	for _, code := range unknown.order {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%d sales in currency %q are not counted in the %s/%s columns",
			unknown.counts[code], code, a.Currencies.Local, a.Currencies.Foreign))
	}

	return res
}

// OvernightTotals returns only the per-date totals of sales outside the grid.
func (a Aggregator) OvernightTotals(txs []domain.Transaction) []domain.OvernightRow {
	return a.TimeBuckets(txs).Overnight
}

func sortDates(set map[civil.Date]struct{}) []civil.Date {
	dates := make([]civil.Date, 0, len(set))
	for d := range set {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// counter counts occurrences and remembers first-seen order.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) inc(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

