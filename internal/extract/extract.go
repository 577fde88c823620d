// Package extract reads the cell grid out of a point-of-sale export.
package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/dvloznov/pharmacy-sales/internal/domain"
)

// Format identifies how an export is encoded.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

var zipMagic = []byte("PK\x03\x04")

var utf8BOM = []byte("\xef\xbb\xbf")

const sniffLines = 5

// Detect reports the format of data. Office Open XML workbooks are zip
// archives; anything else is treated as delimited text.
func Detect(data []byte) Format {
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	return FormatCSV
}

// Read returns the cells of the first sheet of an xlsx workbook or of a
// delimited text export.
func Read(data []byte) (domain.RawExtract, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &domain.MalformedExtractError{Reason: "empty file"}
	}
	switch Detect(data) {
	case FormatXLSX:
		return readXLSX(data)
	default:
		return readCSV(data)
	}
}

func readXLSX(data []byte) (domain.RawExtract, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &domain.MalformedExtractError{Reason: fmt.Sprintf("open workbook: %v", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &domain.MalformedExtractError{Reason: "workbook has no sheets"}
	}

	// Raw values keep dates as serial numbers instead of locale formatted text.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return domain.RawExtract(rows), nil
}

func readCSV(data []byte) (domain.RawExtract, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	comma := sniffDelimiter(data)
	reader := csv.NewReader(bytes.NewReader(keepBlankLines(data, comma)))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows domain.RawExtract
	lineNum := 0
	for {
		lineNum++
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &domain.MalformedExtractError{Reason: fmt.Sprintf("line %d: %v", lineNum, err)}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// keepBlankLines turns empty lines into a lone delimiter. The csv reader
// skips empty lines, which would shift the header row.
func keepBlankLines(data []byte, comma rune) []byte {
	lines := bytes.Split(data, []byte("\n"))
	for i, line := range lines {
		if i == len(lines)-1 {
			break
		}
		if len(bytes.TrimRight(line, "\r")) == 0 {
			lines[i] = []byte(string(comma))
		}
	}
	return bytes.Join(lines, []byte("\n"))
}

// sniffDelimiter picks ';' when the leading lines hold more semicolons than
// commas, as spreadsheet exports in Spanish locales do. Several lines are
// inspected because the first rows of a report are often a bare title.
func sniffDelimiter(data []byte) rune {
	head := data
	for i, n := 0, 0; i < len(data); i++ {
		if data[i] == '\n' {
			n++
			if n == sniffLines {
				head = data[:i]
				break
			}
		}
	}
	if bytes.Count(head, []byte(";")) > bytes.Count(head, []byte(",")) {
		return ';'
	}
	return ','
}
