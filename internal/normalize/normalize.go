// Package normalize turns a raw point-of-sale extract into typed cash-sale
// transactions.
package normalize

import (
	"fmt"
	"strings"

	"github.com/dvloznov/pharmacy-sales/internal/domain"
)

// HeaderRowIndex is the row of the extract that holds the column names.
// Rows before it are report titles.
const HeaderRowIndex = 2

// Column names expected in the header row.
const (
	ColCustomer     = "Cliente"
	ColStatus       = "Status"
	ColDate         = "Fecha"
	ColTime         = "Hora"
	ColAmount       = "Importe"
	ColCurrency     = "Divisa"
	ColExchangeRate = "T.C."
)

var requiredColumns = []string{
	ColCustomer,
	ColStatus,
	ColDate,
	ColTime,
	ColAmount,
	ColCurrency,
	ColExchangeRate,
}

// TimestampPolicy decides what happens to a cash sale whose date or time
// cannot be parsed.
type TimestampPolicy string

const (
	// PolicyFail aborts the whole normalization.
	PolicyFail TimestampPolicy = "fail"
	// PolicySkip drops the row and records a warning.
	PolicySkip TimestampPolicy = "skip"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (TimestampPolicy, error) {
	switch p := TimestampPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyFail, PolicySkip:
		return p, nil
	case "":
		return PolicyFail, nil
	default:
		return "", fmt.Errorf("unknown timestamp policy %q: must be %q or %q", s, PolicyFail, PolicySkip)
	}
}

// Normalizer holds the settings for a normalization run. The zero value is
// not usable; start from Default.
type Normalizer struct {
	CashMarker string
	Policy     TimestampPolicy
}

// Default returns a normalizer that keeps exact cash-marker rows and fails
// on the first bad timestamp.
func Default() Normalizer {
	return Normalizer{CashMarker: domain.CashSaleMarker, Policy: PolicyFail}
}

// Result is the output of a normalization run.
type Result struct {
	Transactions []domain.Transaction
	Warnings     []string
}

// Normalize runs the default normalizer and returns only the transactions.
func Normalize(raw domain.RawExtract) ([]domain.Transaction, error) {
	res, err := Default().Run(raw)
	if err != nil {
		return nil, err
	}
	return res.Transactions, nil
}

// Run reads the header at HeaderRowIndex, keeps the data rows whose customer
// equals the cash marker exactly and converts them to transactions.
// The Status column is read for validation only. raw is not modified.
func (n Normalizer) Run(raw domain.RawExtract) (Result, error) {
	if len(raw) <= HeaderRowIndex+1 {
		return Result{}, &domain.MalformedExtractError{
			Reason: fmt.Sprintf("extract has %d rows, need a header at row %d and at least one data row", len(raw), HeaderRowIndex),
		}
	}

	cols, err := locateColumns(raw[HeaderRowIndex])
	if err != nil {
		return Result{}, err
	}

	res := Result{Transactions: make([]domain.Transaction, 0, len(raw)-HeaderRowIndex-1)}
	for i := HeaderRowIndex + 1; i < len(raw); i++ {
		if raw.Cell(i, cols[ColCustomer]) != n.CashMarker {
			continue
		}

		tx, err := n.convert(raw, i, cols)
		if err != nil {
			if n.Policy == PolicySkip {
				res.Warnings = append(res.Warnings, fmt.Sprintf("skipped: %v", err))
				continue
			}
			return Result{}, err
		}
		res.Transactions = append(res.Transactions, tx)
	}

	return res, nil
}

func (n Normalizer) convert(raw domain.RawExtract, row int, cols map[string]int) (domain.Transaction, error) {
	dateCell := raw.Cell(row, cols[ColDate])
	date, err := parseDate(dateCell)
	if err != nil {
		return domain.Transaction{}, &domain.InvalidTimestampError{Row: row, Field: ColDate, Value: dateCell, Err: err}
	}

	timeCell := raw.Cell(row, cols[ColTime])
	tod, err := parseTime(timeCell)
	if err != nil {
		return domain.Transaction{}, &domain.InvalidTimestampError{Row: row, Field: ColTime, Value: timeCell, Err: err}
	}

	return domain.Transaction{
		Date:         date,
		Time:         tod,
		Customer:     raw.Cell(row, cols[ColCustomer]),
		Amount:       parseAmount(raw.Cell(row, cols[ColAmount])),
		Currency:     strings.TrimSpace(raw.Cell(row, cols[ColCurrency])),
		ExchangeRate: parseAmount(raw.Cell(row, cols[ColExchangeRate])),
		SourceRow:    row,
	}, nil
}

// locateColumns maps each required column to its index in the header row.
// Header cells are compared after trimming; the first occurrence wins.
func locateColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.MalformedExtractError{
			Reason:  fmt.Sprintf("header row %d", HeaderRowIndex),
			Missing: missing,
		}
	}
	return cols, nil
}
