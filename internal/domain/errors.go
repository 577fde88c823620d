package domain

import (
	"fmt"
	"strings"
)

// MalformedExtractError reports a raw extract without the minimum layout:
// a header row at index 2 followed by data, with the required columns.
type MalformedExtractError struct {
	Reason  string
	Missing []string
}

func (e *MalformedExtractError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("malformed extract: %s: missing columns %s", e.Reason, strings.Join(e.Missing, ", "))
	}
	return "malformed extract: " + e.Reason
}

// InvalidTimestampError reports a date or time cell that could not be parsed.
type InvalidTimestampError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *InvalidTimestampError) Error() string {
	return fmt.Sprintf("row %d: invalid %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *InvalidTimestampError) Unwrap() error {
	return e.Err
}
