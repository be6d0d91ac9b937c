// Package extract turns source documents into raw tables.
//
// Extractors are thin adapters over third-party readers. They emit cells
// exactly as found (normalize.Cell); numeric normalization happens later in
// the pipeline. Each extractor is registered for one or more file
// extensions in a Registry.
//
//	reg := extract.DefaultRegistry(extract.DefaultOptions())
//	ex, err := reg.ForFile("report.pdf")
//	...
//	tables, err := ex.Extract(ctx, "report.pdf")
//
// Supported sources:
//
//   - .pdf: the embedded text layer, grouped into rows and cells by position
//   - .png, .jpg, .jpeg, .tif, .tiff: Tesseract OCR (build with -tags ocr)
//   - .csv: tables already exported by another extractor
package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/pdftables/internal/normalize"
	"github.com/JonMunkholm/pdftables/internal/ocr"
)

// Extraction families, used to label tables and group them on sheets.
const (
	FamilyStream = "Stream"
	FamilyOCR    = "OCR"
	FamilyCSV    = "CSV"
)

// ErrNoTables is returned when a document was read but held no table.
var ErrNoTables = errors.New("no tables found")

// ErrUnsupported is returned for file extensions with no registered extractor.
var ErrUnsupported = errors.New("unsupported file format")

// Table is one raw table found in a document.
type Table struct {
	// Label is human readable, e.g. "Stream Table 3".
	Label string

	// Family is the extraction strategy that produced the table.
	Family string

	// Page is the 1-based source page, 0 when the source has no pages.
	Page int

	Header []normalize.Cell
	Rows   [][]normalize.Cell
}

// Width returns the widest row length, header included.
func (t *Table) Width() int {
	w := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Extractor reads every table out of one file.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]Table, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, path string) ([]Table, error)

// Extract calls f(ctx, path).
func (f ExtractorFunc) Extract(ctx context.Context, path string) ([]Table, error) {
	return f(ctx, path)
}

// Options tunes the positional grouping used by the PDF and OCR extractors.
type Options struct {
	// RowTolerance is the vertical distance within which text runs share a row.
	RowTolerance float64

	// ColumnGap is the horizontal gap that starts a new cell.
	ColumnGap float64

	// MinColumns is the minimum number of cells for a row to belong to a table.
	MinColumns int

	// OCRLanguage is passed to Tesseract, e.g. "eng+rus".
	OCRLanguage string

	// PageSegMode is the Tesseract page segmentation mode. Zero selects
	// ocr.PSM_SINGLE_BLOCK.
	PageSegMode ocr.PageSegMode
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		RowTolerance: 2,
		ColumnGap:    10,
		MinColumns:   2,
		OCRLanguage:  "eng",
		PageSegMode:  ocr.PSM_SINGLE_BLOCK,
	}
}

// buildTables splits grid rows into tables: every run of consecutive rows
// with at least minCols cells is one table whose first row is the header.
// Rows are padded with absent cells to the table width.
func buildTables(rows [][]string, minCols int, family string, page int, seq *int) []Table {
	var tables []Table
	var run [][]string

	flush := func() {
		if len(run) >= 2 {
			*seq++
			tables = append(tables, newTable(run, family, page, *seq))
		}
		run = nil
	}

	for _, row := range rows {
		if len(row) >= minCols {
			run = append(run, row)
			continue
		}
		flush()
	}
	flush()

	return tables
}

func newTable(rows [][]string, family string, page, n int) Table {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}

	t := Table{
		Label:  fmt.Sprintf("%s Table %d", family, n),
		Family: family,
		Page:   page,
		Header: padCells(rows[0], width),
	}
	for _, r := range rows[1:] {
		t.Rows = append(t.Rows, padCells(r, width))
	}
	return t
}

func padCells(values []string, width int) []normalize.Cell {
	cells := make([]normalize.Cell, width)
	for i, v := range values {
		cells[i] = normalize.Text(v)
	}
	return cells
}
