package normalize

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := civil.Date{Year: 2024, Month: 3, Day: 4}
	tests := []struct {
		in      string
		wantErr bool
	}{
		{in: "2024-03-04"},
		{in: " 2024-03-04 "},
		{in: "2024-03-04 07:15:00"},
		{in: "2024-03-04T07:15:00"},
		{in: "04/03/2024"},
		{in: "4/3/2024"},
		{in: "03-04-24"},
		{in: "45355"},
		{in: "45355.3125"},
		{in: "", wantErr: true},
		{in: "ayer", wantErr: true},
		{in: "NaN", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in      string
		want    civil.Time
		wantErr bool
	}{
		{in: "07:15:00", want: civil.Time{Hour: 7, Minute: 15}},
		{in: "23:59:59", want: civil.Time{Hour: 23, Minute: 59, Second: 59}},
		{in: "07:15", want: civil.Time{Hour: 7, Minute: 15}},
		{in: "9:05:10 PM", want: civil.Time{Hour: 21, Minute: 5, Second: 10}},
		{in: "0.3125", want: civil.Time{Hour: 7, Minute: 30}},
		{in: "45355.5", want: civil.Time{Hour: 12}},
		{in: "2024-03-04 18:20:00", want: civil.Time{Hour: 18, Minute: 20}},
		{in: "", wantErr: true},
		{in: "25:00:00", wantErr: true},
		{in: "-0.5", wantErr: true},
		{in: "tarde", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTime(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
		want  string
	}{
		{"100", true, "100"},
		{"-12.5", true, "-12.5"},
		{"$1,234.56", true, "1234.56"},
		{" 17.35 ", true, "17.35"},
		{"", false, ""},
		{"abc", false, ""},
		{"NaN", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseAmount(tt.in)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, got.Decimal.String())
			}
		})
	}
}
