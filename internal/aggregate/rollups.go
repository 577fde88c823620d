package aggregate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/pharmacy-sales/internal/domain"
)

// The rollups below sum Amount across currencies, the way the dashboard
// charts show them.

// Shift is a named range of hours. End may be lower than Start when the
// shift crosses midnight.
type Shift struct {
	Name  string
	Start int
	End   int
}

// Shifts are the three pharmacy work shifts, in display order.
var Shifts = []Shift{
	{Name: "Mañana", Start: 6, End: 14},
	{Name: "Tarde", Start: 14, End: 22},
	{Name: "Noche", Start: 22, End: 6},
}

// Contains reports whether hour falls in the shift.
func (s Shift) Contains(hour int) bool {
	if s.Start <= s.End {
		return hour >= s.Start && hour < s.End
	}
	return hour >= s.Start || hour < s.End
}

// ClosingHours are compared by LastHoursComparison.
var ClosingHours = []int{20, 21}

func hourlyTotals(txs []domain.Transaction) [24]decimal.Decimal {
	var totals [24]decimal.Decimal
	for _, tx := range txs {
		if tx.Amount.Valid {
			totals[tx.Time.Hour] = totals[tx.Time.Hour].Add(tx.Amount.Decimal)
		}
	}
	return totals
}

func hoursPresent(txs []domain.Transaction) [24]bool {
	var seen [24]bool
	for _, tx := range txs {
		seen[tx.Time.Hour] = true
	}
	return seen
}

// HourlyTrend sums sales per hour of day. Only hours with sales appear.
func HourlyTrend(txs []domain.Transaction) []domain.HourlyRow {
	totals := hourlyTotals(txs)
	seen := hoursPresent(txs)

	rows := make([]domain.HourlyRow, 0, 24)
	for h := 0; h < 24; h++ {
		if seen[h] {
			rows = append(rows, domain.HourlyRow{Hour: h, Total: totals[h]})
		}
	}
	return rows
}

// CumulativeByHour is HourlyTrend with a running total carried across
// ascending hours, so the last row holds the total of every sale.
func CumulativeByHour(txs []domain.Transaction) []domain.HourlyRow {
	rows := HourlyTrend(txs)
	running := decimal.Zero
	for i := range rows {
		running = running.Add(rows[i].Total)
		rows[i].Cumulative = running
	}
	return rows
}

// ShiftTotals returns one row per shift in Shifts order, zero when empty.
func ShiftTotals(txs []domain.Transaction) []domain.ShiftRow {
	totals := hourlyTotals(txs)
	rows := make([]domain.ShiftRow, len(Shifts))
	for i, s := range Shifts {
		rows[i] = domain.ShiftRow{Shift: s.Name, Total: decimal.Zero}
		for h := 0; h < 24; h++ {
			if s.Contains(h) {
				rows[i].Total = rows[i].Total.Add(totals[h])
			}
		}
	}
	return rows
}

// LastHoursComparison returns the totals of the last two opening hours.
func LastHoursComparison(txs []domain.Transaction) []domain.HourComparisonRow {
	totals := hourlyTotals(txs)
	rows := make([]domain.HourComparisonRow, len(ClosingHours))
	for i, h := range ClosingHours {
		rows[i] = domain.HourComparisonRow{
			Range: fmt.Sprintf("%02d:00 - %02d:00", h, h+1),
			Total: totals[h],
		}
	}
	return rows
}
