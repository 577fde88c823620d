package domain

import "github.com/shopspring/decimal"

// Default currency codes found in the Divisa column.
const (
	DefaultLocalCurrency   = "Pesos"
	DefaultForeignCurrency = "Dlls"
)

// Currencies names the two currency codes that get their own amount slot.
type Currencies struct {
	Local   string
	Foreign string
}

// DefaultCurrencies returns the peso/dollar pair used by the exports.
func DefaultCurrencies() Currencies {
	return Currencies{Local: DefaultLocalCurrency, Foreign: DefaultForeignCurrency}
}

// CurrencyAmounts always carries both slots, whichever currencies the
// input happened to contain.
type CurrencyAmounts struct {
	Local   decimal.Decimal `json:"acumulado pesos"`
	Foreign decimal.Decimal `json:"acumulado dolares"`
}

// Add returns a copy of a with amount added to the slot for currency.
// ok is false when currency is neither the local nor the foreign code; a is
// then returned unchanged.
func (a CurrencyAmounts) Add(c Currencies, currency string, amount decimal.Decimal) (CurrencyAmounts, bool) {
	switch currency {
	case c.Local:
		a.Local = a.Local.Add(amount)
	case c.Foreign:
		a.Foreign = a.Foreign.Add(amount)
	default:
		return a, false
	}
	return a, true
}

// IsZero reports whether both slots are zero.
func (a CurrencyAmounts) IsZero() bool {
	return a.Local.IsZero() && a.Foreign.IsZero()
}
