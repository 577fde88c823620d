package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/xuri/excelize/v2"

	"github.com/dvloznov/pharmacy-sales/internal/domain"
	"github.com/dvloznov/pharmacy-sales/internal/pipeline"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatText, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q: must be json, text, csv or xlsx", s)
	}
}

// Write renders d to w in the given format.
func Write(w io.Writer, format Format, d *pipeline.Dashboard) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, d)
	case FormatText:
		return WriteText(w, d)
	case FormatCSV:
		return WriteCSV(w, d.TimeBuckets)
	case FormatXLSX:
		return WriteXLSX(w, d)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// WriteJSON writes the dashboard as indented JSON.
func WriteJSON(w io.Writer, d *pipeline.Dashboard) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// WriteCSV writes the time-bucket table with its dashboard column names.
func WriteCSV(w io.Writer, rows []domain.TimeBucketRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TimeBucketHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rate := ""
		if r.ExchangeRate.Valid {
			rate = r.ExchangeRate.Decimal.String()
		}
		if err := cw.Write([]string{r.Date.String(), r.BucketLabel, r.Local.String(), r.Foreign.String(), rate}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteText writes every table aligned in columns, without the raw
// transactions.
func WriteText(w io.Writer, d *pipeline.Dashboard) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Run:\t%s\nSource:\t%s\nCash sales:\t%d\n", d.RunID, d.Source, len(d.Transactions))
	for _, warning := range d.Warnings {
		fmt.Fprintf(tw, "Warning:\t%s\n", warning)
	}

	for _, t := range tables(d) {
		if t.name == "transacciones" || len(t.rows) == 0 {
			continue
		}
		fmt.Fprintf(tw, "\n== %s ==\n", t.name)
		fmt.Fprintln(tw, strings.Join(t.header, "\t"))
		for _, row := range t.rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = text(v)
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
	}
	return tw.Flush()
}

// WriteXLSX writes one sheet per table.
func WriteXLSX(w io.Writer, d *pipeline.Dashboard) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables(d) {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.name); err != nil {
			return fmt.Errorf("create sheet %q: %w", t.name, err)
		}

		header := make([]any, len(t.header))
		for j, h := range t.header {
			header[j] = h
		}
		if err := f.SetSheetRow(t.name, "A1", &header); err != nil {
			return fmt.Errorf("write %q header: %w", t.name, err)
		}
		for j, row := range t.rows {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(t.name, cell, &row); err != nil {
				return fmt.Errorf("write %q row %d: %w", t.name, j+1, err)
			}
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
