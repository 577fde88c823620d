package domain

import "github.com/shopspring/decimal"

func init() {
	// Amounts and rates are numeric columns in every JSON rendering.
	decimal.MarshalJSONWithoutQuotes = true
}
