package extract

// pdf.go reads tables from the embedded text layer of a PDF.
//
// Uses github.com/ledongthuc/pdf for parsing. Text runs are grouped into rows
// by baseline and into cells by horizontal gaps, the whitespace-alignment
// ("stream") strategy. Scanned, image-only pages carry no text layer and
// yield nothing here; convert them to images and use the OCR extractor.

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts stream tables from PDF text layers.
type PDFExtractor struct {
	opts Options
}

// NewPDFExtractor returns a PDF extractor using opts for row and cell grouping.
func NewPDFExtractor(opts Options) *PDFExtractor {
	return &PDFExtractor{opts: opts}
}

// Extract implements Extractor.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (tables []Table, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	// The parser panics on some malformed content streams.
	defer func() {
		if p := recover(); p != nil {
			tables = nil
			err = fmt.Errorf("read pdf %s: malformed content: %v", path, p)
		}
	}()

	seq := 0
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		content := page.Content()
		runs := make([]textRun, 0, len(content.Text))
		for _, t := range content.Text {
			runs = append(runs, textRun{X: t.X, Y: t.Y, W: t.W, S: t.S})
		}

		tables = append(tables, e.pageTables(runs, i, &seq)...)
	}

	if len(tables) == 0 {
		return nil, ErrNoTables
	}
	return tables, nil
}

// pageTables groups one page's runs into tables.
func (e *PDFExtractor) pageTables(runs []textRun, page int, seq *int) []Table {
	var grid [][]string
	for _, row := range groupRows(runs, e.opts.RowTolerance) {
		grid = append(grid, splitCells(row, e.opts.ColumnGap))
	}
	return buildTables(grid, e.opts.MinColumns, FamilyStream, page, seq)
}
