package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// CashSaleMarker is the customer value the point-of-sale system writes for
// walk-in cash sales. The internal spacing and the trailing space are part
// of the value.
const CashSaleMarker = "C O N T A D O "

// Transaction is one cash sale from a point-of-sale export.
// Amount and ExchangeRate are null when the export held non-numeric text.
type Transaction struct {
	Date         civil.Date          `json:"Fecha"`
	Time         civil.Time          `json:"Hora"`
	Customer     string              `json:"Cliente"`
	Amount       decimal.NullDecimal `json:"Importe"`
	Currency     string              `json:"Divisa"`
	ExchangeRate decimal.NullDecimal `json:"T.C."`

	// SourceRow is the zero-based row of the sale in the raw extract.
	SourceRow int `json:"-"`
}

// DateTime combines the sale date and time of day.
func (t Transaction) DateTime() civil.DateTime {
	return civil.DateTime{Date: t.Date, Time: t.Time}
}
