package aggregate

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/pharmacy-sales/internal/domain"
)

var (
	mon = civil.Date{Year: 2024, Month: 3, Day: 4}
	tue = civil.Date{Year: 2024, Month: 3, Day: 5}
	sun = civil.Date{Year: 2024, Month: 3, Day: 10}
)

func sale(d civil.Date, clock string, amount, currency, rate string) domain.Transaction {
	tod, err := civil.ParseTime(clock)
	if err != nil {
		panic(err)
	}
	tx := domain.Transaction{Date: d, Time: tod, Customer: domain.CashSaleMarker, Currency: currency}
	if amount != "" {
		tx.Amount = decimal.NewNullDecimal(decimal.RequireFromString(amount))
	}
	if rate != "" {
		tx.ExchangeRate = decimal.NewNullDecimal(decimal.RequireFromString(rate))
	}
	return tx
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBucketLabel(t *testing.T) {
	assert.Equal(t, "06:00 - 08:00", BucketLabel(civil.Time{Hour: 6}))
	assert.Equal(t, "20:00 - 22:00", BucketLabel(civil.Time{Hour: 20}))
	assert.Equal(t, "22:00 - 00:00", BucketLabel(civil.Time{Hour: 22}))
}

func TestBucketStart(t *testing.T) {
	assert.Equal(t, civil.Time{Hour: 6}, BucketStart(civil.Time{Hour: 7, Minute: 59, Second: 59}))
	assert.Equal(t, civil.Time{Hour: 8}, BucketStart(civil.Time{Hour: 8}))
	assert.Equal(t, civil.Time{Hour: 22}, BucketStart(civil.Time{Hour: 23, Minute: 30}))
	assert.Equal(t, civil.Time{Hour: 0}, BucketStart(civil.Time{Hour: 1}))
}

func TestCanonicalBuckets(t *testing.T) {
	var labels []string
	for _, start := range CanonicalBuckets() {
		labels = append(labels, BucketLabel(start))
	}
	assert.Equal(t, []string{
		"06:00 - 08:00", "08:00 - 10:00", "10:00 - 12:00", "12:00 - 14:00",
		"14:00 - 16:00", "16:00 - 18:00", "18:00 - 20:00", "20:00 - 22:00",
	}, labels)
}

func TestAggregateByTimeBucket_DenseGrid(t *testing.T) {
	txs := []domain.Transaction{
		sale(tue, "13:00:00", "10", "Pesos", ""),
		sale(mon, "07:15:00", "10", "Pesos", ""),
		sale(sun, "21:59:59", "5", "Dlls", ""),
	}

	rows := AggregateByTimeBucket(txs)
	require.Len(t, rows, 8*3)

	seen := make(map[string]bool)
	for i, row := range rows {
		key := row.Date.String() + " " + row.BucketLabel
		assert.False(t, seen[key], "duplicate %s", key)
		seen[key] = true

		if i > 0 {
			prev := rows[i-1]
			if prev.Date == row.Date {
				assert.True(t, prev.BucketStart.Before(row.BucketStart))
			} else {
				assert.True(t, prev.Date.Before(row.Date))
			}
		}
	}
	assert.Equal(t, mon, rows[0].Date)
	assert.Equal(t, sun, rows[len(rows)-1].Date)
	assert.True(t, rows[len(rows)-1].Foreign.Equal(dec("5")))
}

func TestAggregateByTimeBucket_Sums(t *testing.T) {
	txs := []domain.Transaction{
		sale(mon, "07:15:00", "100", "Pesos", ""),
		sale(mon, "07:45:00", "50", "Pesos", ""),
		sale(mon, "09:00:00", "30", "Pesos", ""),
		sale(mon, "09:10:00", "2.5", "Dlls", ""),
		sale(mon, "09:20:00", "", "Pesos", ""),
	}

	rows := AggregateByTimeBucket(txs)
	require.Len(t, rows, 8)

	assert.Equal(t, "06:00 - 08:00", rows[0].BucketLabel)
	assert.True(t, rows[0].Local.Equal(dec("150")))
	assert.True(t, rows[0].Foreign.IsZero())

	assert.Equal(t, "08:00 - 10:00", rows[1].BucketLabel)
	assert.True(t, rows[1].Local.Equal(dec("30")))
	assert.True(t, rows[1].Foreign.Equal(dec("2.5")))

	for _, row := range rows[2:] {
		assert.True(t, row.IsZero(), row.BucketLabel)
		assert.False(t, row.ExchangeRate.Valid, row.BucketLabel)
	}
}

func TestAggregateByTimeBucket_LastRateWins(t *testing.T) {
	txs := []domain.Transaction{
		sale(mon, "10:05:00", "1", "Dlls", "17.0"),
		sale(mon, "10:55:00", "1", "Pesos", "17.5"),
		sale(mon, "11:30:00", "1", "Pesos", ""),
		sale(mon, "12:00:00", "1", "Pesos", "16.9"),
	}

	rows := AggregateByTimeBucket(txs)
	require.Len(t, rows, 8)

	require.True(t, rows[2].ExchangeRate.Valid)
	assert.True(t, rows[2].ExchangeRate.Decimal.Equal(dec("17.5")))
	require.True(t, rows[3].ExchangeRate.Valid)
	assert.True(t, rows[3].ExchangeRate.Decimal.Equal(dec("16.9")))
}

func TestAggregateByTimeBucket_Empty(t *testing.T) {
	rows := AggregateByTimeBucket(nil)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestTimeBuckets_Overnight(t *testing.T) {
	txs := []domain.Transaction{
		sale(mon, "10:00:00", "10", "Pesos", ""),
		sale(mon, "23:30:00", "40", "Pesos", ""),
		sale(tue, "05:59:00", "3", "Dlls", ""),
	}

	res := Default().TimeBuckets(txs)
	require.Len(t, res.Rows, 16)
	for _, row := range res.Rows[8:] {
		assert.True(t, row.IsZero())
	}

	require.Len(t, res.Overnight, 2)
	assert.Equal(t, mon, res.Overnight[0].Date)
	assert.True(t, res.Overnight[0].Local.Equal(dec("40")))
	assert.Equal(t, 1, res.Overnight[0].Count)
	assert.Equal(t, tue, res.Overnight[1].Date)
	assert.True(t, res.Overnight[1].Foreign.Equal(dec("3")))

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "2 sales on 2 dates")
	assert.Equal(t, res.Overnight, Default().OvernightTotals(txs))
}

func TestTimeBuckets_UnknownCurrency(t *testing.T) {
	txs := []domain.Transaction{
		sale(mon, "10:00:00", "10", "Euros", ""),
		sale(mon, "10:30:00", "10", "Euros", ""),
		sale(mon, "11:00:00", "7", "Pesos", ""),
	}

	res := Default().TimeBuckets(txs)
	require.Len(t, res.Rows, 8)
	assert.True(t, res.Rows[2].Local.Equal(dec("7")))
	assert.True(t, res.Rows[2].Foreign.IsZero())
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], `2 sales in currency "Euros"`)
}

func TestTimeBuckets_CustomCurrencies(t *testing.T) {
	a := Aggregator{Currencies: domain.Currencies{Local: "MXN", Foreign: "USD"}}
	res := a.TimeBuckets([]domain.Transaction{
		sale(mon, "10:00:00", "10", "MXN", ""),
		sale(mon, "10:00:00", "1", "USD", ""),
	})
	assert.True(t, res.Rows[2].Local.Equal(dec("10")))
	assert.True(t, res.Rows[2].Foreign.Equal(dec("1")))
	assert.Empty(t, res.Warnings)
}

func TestTimeBuckets_DoesNotModifyInput(t *testing.T) {
	txs := []domain.Transaction{
		sale(mon, "10:00:00", "10", "Pesos", "17"),
		sale(mon, "10:10:00", "5", "Pesos", "18"),
	}
	before := append([]domain.Transaction(nil), txs...)

	_ = Default().TimeBuckets(txs)
	assert.Equal(t, before, txs)
}

func TestAggregateByWeekday(t *testing.T) {
	txs := []domain.Transaction{
		sale(sun, "10:00:00", "5", "Pesos", ""),
		sale(tue, "10:00:00", "7", "Pesos", ""),
		sale(mon, "10:00:00", "1", "Pesos", ""),
		sale(tue, "12:00:00", "3", "Dlls", ""),
		sale(mon, "11:00:00", "", "Pesos", ""),
	}

	rows := AggregateByWeekday(txs)
	require.Len(t, rows, 3)
	assert.Equal(t, "Monday", rows[0].Weekday)
	assert.True(t, rows[0].Total.Equal(dec("1")))
	assert.Equal(t, "Tuesday", rows[1].Weekday)
	assert.True(t, rows[1].Total.Equal(dec("10")))
	assert.Equal(t, "Sunday", rows[2].Weekday)
	assert.True(t, rows[2].Total.Equal(dec("5")))
}

func TestAggregateByWeekday_OrderIndependent(t *testing.T) {
	txs := []domain.Transaction{
		sale(sun, "10:00:00", "5", "Pesos", ""),
		sale(mon, "10:00:00", "1", "Pesos", ""),
	}
	reversed := []domain.Transaction{txs[1], txs[0]}

	assert.Equal(t, AggregateByWeekday(txs), AggregateByWeekday(reversed))
	assert.Empty(t, AggregateByWeekday(nil))
}

func TestHourlyTrendAndCumulative(t *testing.T) {
	txs := []domain.Transaction{
		sale(mon, "09:15:00", "10", "Pesos", ""),
		sale(tue, "09:45:00", "5", "Dlls", ""),
		sale(mon, "07:00:00", "2", "Pesos", ""),
		sale(mon, "13:00:00", "", "Pesos", ""),
	}

	trend := HourlyTrend(txs)
	require.Len(t, trend, 3)
	assert.Equal(t, []int{7, 9, 13}, []int{trend[0].Hour, trend[1].Hour, trend[2].Hour})
	assert.True(t, trend[1].Total.Equal(dec("15")))
	assert.True(t, trend[2].Total.IsZero())

	cum := CumulativeByHour(txs)
	require.Len(t, cum, 3)
	assert.True(t, cum[0].Cumulative.Equal(dec("2")))
	assert.True(t, cum[1].Cumulative.Equal(dec("17")))
	assert.True(t, cum[2].Cumulative.Equal(dec("17")))
}

func TestCumulativeByHour_RunsAcrossHours(t *testing.T) {
	txs := []domain.Transaction{
		sale(mon, "07:15:00", "100", "Pesos", ""),
		sale(mon, "07:45:00", "50", "Pesos", ""),
		sale(mon, "09:00:00", "30", "Pesos", ""),
		sale(tue, "21:30:00", "5", "Dlls", ""),
		sale(tue, "23:10:00", "40", "Pesos", ""),
	}

	cum := CumulativeByHour(txs)
	require.Len(t, cum, 4)

	want := []struct {
		hour       int
		total      string
		cumulative string
	}{
		{7, "150", "150"},
		{9, "30", "180"},
		{21, "5", "185"},
		{23, "40", "225"},
	}
	for i, w := range want {
		assert.Equal(t, w.hour, cum[i].Hour)
		assert.True(t, cum[i].Total.Equal(dec(w.total)), "hour %d total %s", w.hour, cum[i].Total)
		assert.True(t, cum[i].Cumulative.Equal(dec(w.cumulative)), "hour %d cumulative %s", w.hour, cum[i].Cumulative)
	}
}

func TestShiftTotals(t *testing.T) {
	txs := []domain.Transaction{
		sale(mon, "06:00:00", "1", "Pesos", ""),
		sale(mon, "13:59:00", "2", "Pesos", ""),
		sale(mon, "14:00:00", "4", "Pesos", ""),
		sale(mon, "22:10:00", "8", "Pesos", ""),
		sale(mon, "03:00:00", "16", "Pesos", ""),
	}

	rows := ShiftTotals(txs)
	require.Len(t, rows, 3)
	assert.Equal(t, "Mañana", rows[0].Shift)
	assert.True(t, rows[0].Total.Equal(dec("3")))
	assert.Equal(t, "Tarde", rows[1].Shift)
	assert.True(t, rows[1].Total.Equal(dec("4")))
	assert.Equal(t, "Noche", rows[2].Shift)
	assert.True(t, rows[2].Total.Equal(dec("24")))

	empty := ShiftTotals(nil)
	require.Len(t, empty, 3)
	for _, row := range empty {
		assert.True(t, row.Total.IsZero())
	}
}

func TestLastHoursComparison(t *testing.T) {
	rows := LastHoursComparison([]domain.Transaction{
		sale(mon, "20:30:00", "10", "Pesos", ""),
		sale(mon, "21:10:00", "4", "Pesos", ""),
		sale(tue, "21:50:00", "6", "Pesos", ""),
		sale(tue, "22:00:00", "100", "Pesos", ""),
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "20:00 - 21:00", rows[0].Range)
	assert.True(t, rows[0].Total.Equal(dec("10")))
	assert.Equal(t, "21:00 - 22:00", rows[1].Range)
	assert.True(t, rows[1].Total.Equal(dec("10")))
}
