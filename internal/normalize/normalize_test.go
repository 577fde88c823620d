package normalize

import (
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/pharmacy-sales/internal/domain"
)

var header = []string{"Cliente", "Status", "Fecha", "Hora", "Importe", "Divisa", "T.C."}

func extract(rows ...[]string) domain.RawExtract {
	raw := domain.RawExtract{
		{"Farmacia Central"},
		{"Reporte de ventas", "", "marzo"},
		header,
	}
	return append(raw, rows...)
}

func TestNormalize_HeaderOffset(t *testing.T) {
	raw := extract(
		[]string{domain.CashSaleMarker, "Pagado", "2024-03-04", "07:15:00", "100", "Pesos", "17.0"},
		[]string{domain.CashSaleMarker, "Pagado", "2024-03-04", "07:45:00", "50", "Pesos", "17.5"},
		[]string{domain.CashSaleMarker, "Pagado", "2024-03-05", "09:00:00", "30", "Dlls", "17.2"},
	)
	require.Len(t, raw, 6)

	txs, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, civil.Date{Year: 2024, Month: 3, Day: 4}, txs[0].Date)
	assert.Equal(t, civil.Time{Hour: 7, Minute: 15}, txs[0].Time)
	assert.True(t, txs[0].Amount.Decimal.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "Pesos", txs[0].Currency)
	assert.Equal(t, 3, txs[0].SourceRow)
	assert.Equal(t, "Dlls", txs[2].Currency)
	assert.True(t, txs[2].ExchangeRate.Decimal.Equal(decimal.RequireFromString("17.2")))
}

func TestNormalize_ExactCashMarker(t *testing.T) {
	tests := []struct {
		name     string
		customer string
		kept     bool
	}{
		{"marker", "C O N T A D O ", true},
		{"no spacing", "CONTADO", false},
		{"no trailing space", "C O N T A D O", false},
		{"extra leading space", " C O N T A D O ", false},
		{"named client", "Juan Perez", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, err := Normalize(extract(
				[]string{tt.customer, "Pagado", "2024-03-04", "10:00:00", "10", "Pesos", "17"},
			))
			require.NoError(t, err)
			if tt.kept {
				assert.Len(t, txs, 1)
			} else {
				assert.Empty(t, txs)
			}
		})
	}
}

func TestNormalize_TwoRowsDifferingInCustomer(t *testing.T) {
	txs, err := Normalize(extract(
		[]string{"CONTADO", "Pagado", "2024-03-04", "10:00:00", "10", "Pesos", "17"},
		[]string{domain.CashSaleMarker, "Pagado", "2024-03-04", "10:00:00", "10", "Pesos", "17"},
	))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.CashSaleMarker, txs[0].Customer)
}

func TestNormalize_NonNumericAmount(t *testing.T) {
	txs, err := Normalize(extract(
		[]string{domain.CashSaleMarker, "Pagado", "2024-03-04", "10:00:00", "abc", "Pesos", "17"},
		[]string{domain.CashSaleMarker, "Pagado", "2024-03-04", "10:30:00", "$1,250.50", "Pesos", "n/a"},
	))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.False(t, txs[0].Amount.Valid)
	assert.True(t, txs[1].Amount.Valid)
	assert.True(t, txs[1].Amount.Decimal.Equal(decimal.RequireFromString("1250.50")))
	assert.False(t, txs[1].ExchangeRate.Valid)
}

func TestNormalize_NoCashRows(t *testing.T) {
	txs, err := Normalize(extract(
		[]string{"Clinica Norte", "Pagado", "2024-03-04", "10:00:00", "10", "Pesos", "17"},
	))
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)
}

func TestNormalize_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		raw     domain.RawExtract
		missing []string
	}{
		{
			name: "too few rows",
			raw:  domain.RawExtract{{"title"}, {}, header},
		},
		{
			name: "empty",
			raw:  nil,
		},
		{
			name: "missing customer and status",
			raw: domain.RawExtract{
				{"title"}, {},
				{"Fecha", "Hora", "Importe", "Divisa", "T.C."},
				{"2024-03-04", "10:00:00", "10", "Pesos", "17"},
			},
			missing: []string{"Cliente", "Status"},
		},
		{
			name: "header on the wrong row",
			raw: domain.RawExtract{
				header, {}, {},
				{domain.CashSaleMarker, "Pagado", "2024-03-04", "10:00:00", "10", "Pesos", "17"},
			},
			missing: header,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)
			var malformed *domain.MalformedExtractError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Equal(t, tt.missing, malformed.Missing)
		})
	}
}

func TestNormalize_HeaderCellsAreTrimmed(t *testing.T) {
	raw := domain.RawExtract{
		{}, {},
		{" Cliente", "Status ", "Fecha", "Hora", "Importe", "Divisa", " T.C. ", "Sucursal"},
		{domain.CashSaleMarker, "Pagado", "2024-03-04", "10:00:00", "10", "Pesos", "17", "Centro"},
	}
	txs, err := Normalize(raw)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestNormalize_ShortRowsArePadded(t *testing.T) {
	txs, err := Normalize(extract(
		[]string{domain.CashSaleMarker, "Pagado", "2024-03-04", "10:00:00", "10"},
	))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "", txs[0].Currency)
	assert.False(t, txs[0].ExchangeRate.Valid)
}

func TestNormalize_InvalidTimestamp(t *testing.T) {
	raw := extract(
		[]string{domain.CashSaleMarker, "Pagado", "2024-03-04", "10:00:00", "10", "Pesos", "17"},
		[]string{domain.CashSaleMarker, "Pagado", "2024-03-04", "mediodia", "10", "Pesos", "17"},
		[]string{"Clinica", "Pagado", "", "", "10", "Pesos", "17"},
	)

	t.Run("fail fast", func(t *testing.T) {
		_, err := Normalize(raw)
		var tsErr *domain.InvalidTimestampError
		require.True(t, errors.As(err, &tsErr))
		assert.Equal(t, 4, tsErr.Row)
		assert.Equal(t, ColTime, tsErr.Field)
		assert.Equal(t, "mediodia", tsErr.Value)
	})

	t.Run("skip", func(t *testing.T) {
		n := Default()
		n.Policy = PolicySkip
		res, err := n.Run(raw)
		require.NoError(t, err)
		assert.Len(t, res.Transactions, 1)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "row 4")
	})
}

func TestNormalize_DoesNotModifyInput(t *testing.T) {
	raw := extract(
		[]string{domain.CashSaleMarker, "Pagado", "2024-03-04", "10:00:00", " 10 ", " Pesos ", "17"},
	)
	before := make([]string, len(raw[3]))
	copy(before, raw[3])

	_, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, before, raw[3])
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyFail, p)

	p, err = ParsePolicy("SKIP")
	require.NoError(t, err)
	assert.Equal(t, PolicySkip, p)

	_, err = ParsePolicy("ignore")
	assert.Error(t, err)
}
