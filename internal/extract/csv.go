package extract

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JonMunkholm/pdftables/internal/normalize"
)

// Marker lines framing each table in CSV exports.
const (
	TableStartPrefix = "Table Start - "
	TableEndPrefix   = "Table End - "
)

// CSVExtractor reads tables from CSV files.
//
// A file may hold several tables framed by "Table Start - <label>" and
// "Table End - <label>" lines, as written by the assemble package. Without
// markers, records whose fields are all empty separate tables. Empty fields
// become absent cells.
type CSVExtractor struct{}

// NewCSVExtractor returns a CSV extractor.
func NewCSVExtractor() *CSVExtractor {
	return &CSVExtractor{}
}

// Extract implements Extractor.
func (e *CSVExtractor) Extract(ctx context.Context, path string) ([]Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()

	tables, err := e.Read(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	return tables, nil
}

// Read parses tables from r.
func (e *CSVExtractor) Read(ctx context.Context, r io.Reader) ([]Table, error) {
	cr := csv.NewReader(NewSourceReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var (
		tables []Table
		rows   [][]string
		label  string
		seq    int
	)

	flush := func() {
		if len(rows) > 0 {
			seq++
			t := newTable(rows, FamilyCSV, 0, seq)
			if label != "" {
				t.Label = label
			}
			absentEmpty(&t)
			tables = append(tables, t)
		}
		rows = nil
		label = ""
	}

	for line := 0; ; line++ {
		if line%100 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		// Marker labels may contain commas, which split them into fields.
		first := strings.TrimSpace(record[0])
		switch {
		case strings.HasPrefix(first, TableStartPrefix):
			flush()
			label = strings.TrimPrefix(strings.TrimSpace(strings.Join(record, ",")), TableStartPrefix)
		case strings.HasPrefix(first, TableEndPrefix):
			flush()
		case blankRecord(record):
			flush()
		default:
			rows = append(rows, record)
		}
	}
	flush()

	if len(tables) == 0 {
		return nil, ErrNoTables
	}
	return tables, nil
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// absentEmpty turns empty body cells into absent cells.
func absentEmpty(t *Table) {
	for _, row := range t.Rows {
		for i, c := range row {
			if c.Valid && c.String == "" {
				row[i] = normalize.Absent()
			}
		}
	}
}
