package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// TimeBucketRow is one (date, two-hour window) cell of the dashboard grid.
type TimeBucketRow struct {
	Date        civil.Date `json:"Fecha"`
	BucketStart civil.Time `json:"-"`
	BucketLabel string     `json:"HoraRango"`
	CurrencyAmounts
	ExchangeRate decimal.NullDecimal `json:"tc"`
}

// OvernightRow totals the sales of one date that fall outside the
// 06:00-22:00 grid.
type OvernightRow struct {
	Date civil.Date `json:"Fecha"`
	CurrencyAmounts
	Count int `json:"transacciones"`
}

// WeekdaySummaryRow is the summed amount for one weekday.
type WeekdaySummaryRow struct {
	Weekday string          `json:"Day_of_Week"`
	Total   decimal.Decimal `json:"Importe"`
}

// HourlyRow is the summed amount for one hour of the day. Cumulative is only
// filled by the running-total rollup.
type HourlyRow struct {
	Hour       int             `json:"HoraEntera"`
	Total      decimal.Decimal `json:"Importe"`
	Cumulative decimal.Decimal `json:"Acumulado"`
}

// ShiftRow is the summed amount for one work shift.
type ShiftRow struct {
	Shift string          `json:"Turno"`
	Total decimal.Decimal `json:"Importe"`
}

// HourComparisonRow is the summed amount for one closing hour.
type HourComparisonRow struct {
	Range string          `json:"Rango"`
	Total decimal.Decimal `json:"Importe"`
}
