package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/pharmacy-sales/internal/domain"
)

// WeekdayOrder is the display order of the weekday table.
var WeekdayOrder = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// AggregateByWeekday sums amounts per weekday, Monday first. Weekdays with no
// sales are left out. Null amounts count toward presence but not the total.
func AggregateByWeekday(txs []domain.Transaction) []domain.WeekdaySummaryRow {
	totals := make(map[time.Weekday]decimal.Decimal)
	for _, tx := range txs {
		wd := tx.Date.In(time.UTC).Weekday()
		total := totals[wd]
		if tx.Amount.Valid {
			total = total.Add(tx.Amount.Decimal)
		}
		totals[wd] = total
	}

	rows := make([]domain.WeekdaySummaryRow, 0, len(totals))
	for _, wd := range WeekdayOrder {
		if total, ok := totals[wd]; ok {
			rows = append(rows, domain.WeekdaySummaryRow{Weekday: wd.String(), Total: total})
		}
	}
	return rows
}
