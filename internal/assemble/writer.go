package assemble

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JonMunkholm/pdftables/internal/extract"
	"github.com/xuri/excelize/v2"
)

// ErrEmpty is returned when asked to write no tables.
var ErrEmpty = errors.New("no tables to write")

// Format is an output file format.
type Format int

const (
	FormatXLSX Format = iota
	FormatCSV
)

// ParseFormat parses "xlsx" or "csv".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "xlsx":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	default:
		return 0, fmt.Errorf("unknown output format %q", s)
	}
}

func (f Format) String() string {
	if f == FormatCSV {
		return "csv"
	}
	return "xlsx"
}

// Ext returns the file extension, dot included.
func (f Format) Ext() string {
	return "." + f.String()
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write renders tables in the given format and layout to w.
// CSV output is a single stream, so layout only applies to XLSX.
func Write(w io.Writer, format Format, layout Layout, tables []Table) error {
	if len(tables) == 0 {
		return ErrEmpty
	}
	if format == FormatCSV {
		return WriteCSV(w, tables)
	}
	return WriteXLSX(w, Plan(tables, layout))
}

// Save writes tables to path, closing the file on every exit path.
func Save(path string, format Format, layout Layout, tables []Table) (err error) {
	if len(tables) == 0 {
		return ErrEmpty
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close %s: %w", path, cerr))
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := Write(f, format, layout, tables); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteXLSX writes sheets as an XLSX workbook. Label and header rows are bold.
func WriteXLSX(w io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return ErrEmpty
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return fmt.Errorf("name sheet %q: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("create sheet %q: %w", sheet.Name, err)
		}

		if err := writeSheet(f, sheet, bold); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet Sheet, headerStyle int) error {
	for r, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return fmt.Errorf("write %s!%s: %w", sheet.Name, cell, err)
		}
	}

	for _, r := range sheet.HeaderRows {
		if r >= len(sheet.Rows) {
			continue
		}
		first, _ := excelize.CoordinatesToCellName(1, r+1)
		last, _ := excelize.CoordinatesToCellName(len(sheet.Rows[r]), r+1)
		if err := f.SetCellStyle(sheet.Name, first, last, headerStyle); err != nil {
			return fmt.Errorf("style %s!%s: %w", sheet.Name, first, err)
		}
	}
	return nil
}

// WriteCSV writes every table framed by "Table Start - <label>" and
// "Table End - <label>" lines followed by one empty line.
func WriteCSV(w io.Writer, tables []Table) error {
	if len(tables) == 0 {
		return ErrEmpty
	}

	cw := csv.NewWriter(w)
	for _, t := range tables {
		// Marker lines bypass the csv writer so labels are never quoted.
		if _, err := fmt.Fprintf(w, "%s%s\n", extract.TableStartPrefix, t.Label); err != nil {
			return err
		}
		if len(t.Header) > 0 {
			if err := cw.Write(t.Header); err != nil {
				return err
			}
		}
		if err := cw.WriteAll(t.Rows); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s%s\n\n", extract.TableEndPrefix, t.Label); err != nil {
			return err
		}
	}
	return nil
}
