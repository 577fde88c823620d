package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var errEmpty = errors.New("empty cell")

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2/1/2006",
	"2/1/2006 15:04:05",
	"01-02-06",
}

var timeLayouts = []string{
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseDate accepts ISO dates, day-first dates and Excel serial numbers.
// A time part, when present, is ignored.
func parseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, errEmpty
	}
	if d, err := civil.ParseDate(s); err == nil {
		return d, nil
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(serial) || math.IsInf(serial, 0) {
			return civil.Date{}, fmt.Errorf("not a date serial")
		}
		t, err := excelize.ExcelDateToTime(math.Floor(serial), false)
		if err != nil {
			return civil.Date{}, err
		}
		return civil.DateOf(t), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, fmt.Errorf("unrecognized date format")
}

// parseTime accepts HH:MM:SS and a few export variants, including the
// fraction-of-a-day numbers Excel stores for time cells.
func parseTime(s string) (civil.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Time{}, errEmpty
	}
	if t, err := civil.ParseTime(s); err == nil {
		return t, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return timeFromSerial(f)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.TimeOf(t), nil
		}
	}
	return civil.Time{}, fmt.Errorf("expected HH:MM:SS")
}

func timeFromSerial(f float64) (civil.Time, error) {
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return civil.Time{}, fmt.Errorf("time value out of range")
	}
	_, frac := math.Modf(f)
	secs := int(math.Round(frac * 86400))
	if secs >= 86400 {
		secs = 86399
	}
	return civil.Time{Hour: secs / 3600, Minute: secs % 3600 / 60, Second: secs % 60}, nil
}

// parseAmount coerces a cell to a decimal. Currency symbols and thousands
// separators are removed; anything still non-numeric becomes null.
func parseAmount(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
