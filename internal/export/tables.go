// Package export renders a dashboard as JSON, CSV, text tables or an xlsx
// workbook.
package export

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/pharmacy-sales/internal/pipeline"
)

// Column names of the time-bucket table.
var TimeBucketHeader = []string{"Fecha", "HoraRango", "acumulado pesos", "acumulado dolares", "tc"}

// table is one rectangular block of cells. A nil cell is left empty.
type table struct {
	name   string
	header []string
	rows   [][]any
}

func num(d decimal.Decimal) any {
	return d.InexactFloat64()
}

func nullNum(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.InexactFloat64()
}

func tables(d *pipeline.Dashboard) []table {
	buckets := table{name: "acumulado por horas", header: TimeBucketHeader}
	for _, r := range d.TimeBuckets {
		buckets.rows = append(buckets.rows, []any{r.Date.String(), r.BucketLabel, num(r.Local), num(r.Foreign), nullNum(r.ExchangeRate)})
	}

	overnight := table{name: "fuera de horario", header: []string{"Fecha", "acumulado pesos", "acumulado dolares", "transacciones"}}
	for _, r := range d.Overnight {
		overnight.rows = append(overnight.rows, []any{r.Date.String(), num(r.Local), num(r.Foreign), r.Count})
	}

	weekdays := table{name: "por dia", header: []string{"Day_of_Week", "Importe"}}
	for _, r := range d.Weekdays {
		weekdays.rows = append(weekdays.rows, []any{r.Weekday, num(r.Total)})
	}

	hourly := table{name: "por hora", header: []string{"HoraEntera", "Importe", "Acumulado"}}
	for _, r := range d.Cumulative {
		hourly.rows = append(hourly.rows, []any{r.Hour, num(r.Total), num(r.Cumulative)})
	}

	shifts := table{name: "turnos", header: []string{"Turno", "Importe"}}
	for _, r := range d.Shifts {
		shifts.rows = append(shifts.rows, []any{r.Shift, num(r.Total)})
	}

	lastHours := table{name: "ultimas horas", header: []string{"Rango", "Importe"}}
	for _, r := range d.LastHours {
		lastHours.rows = append(lastHours.rows, []any{r.Range, num(r.Total)})
	}

	txs := table{name: "transacciones", header: []string{"Cliente", "Fecha", "Hora", "Importe", "Divisa", "T.C."}}
	for _, r := range d.Transactions {
		txs.rows = append(txs.rows, []any{r.Customer, r.Date.String(), r.Time.String(), nullNum(r.Amount), r.Currency, nullNum(r.ExchangeRate)})
	}

	return []table{buckets, overnight, weekdays, hourly, shifts, lastHours, txs}
}

// text renders a cell for CSV and text output.
func text(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
