package domain

// RawExtract is the untyped cell grid of the first sheet of an export.
// Rows may be ragged.
type RawExtract [][]string

// Cell returns the value at (row, col) or "" when the row is too short.
func (r RawExtract) Cell(row, col int) string {
	if row < 0 || row >= len(r) || col < 0 || col >= len(r[row]) {
		return ""
	}
	return r[row][col]
}
