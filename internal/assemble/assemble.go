// Package assemble lays normalized tables out on spreadsheet sheets and
// writes them as XLSX or CSV.
//
// A combined region stacks tables vertically. Each table contributes a label
// row, its header row and its data rows; consecutive tables are separated by
// exactly two blank rows, and every row is padded with empty strings to the
// widest table in the region:
//
//	Stream Table 1 |        |
//	Item           | 2019   | 2020
//	Revenue        | 1234,5 | -99,5
//	               |        |
//	               |        |
//	Stream Table 2 |        |
//	...
package assemble

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/pdftables/internal/extract"
	"github.com/JonMunkholm/pdftables/internal/normalize"
)

// separatorRows is the number of blank rows between tables in a region.
const separatorRows = 2

// Table is a normalized table ready for layout.
type Table struct {
	Label  string     `json:"label"`
	Family string     `json:"family"`
	Page   int        `json:"page,omitempty"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// FromExtracted normalizes every body cell of an extracted table. Header
// cells are only trimmed: they are labels, not values. stats may be nil.
func FromExtracted(t extract.Table, stats *normalize.Stats) Table {
	header := make([]string, len(t.Header))
	for i, c := range t.Header {
		if c.Valid {
			header[i] = strings.TrimSpace(c.String)
		}
	}

	return Table{
		Label:  t.Label,
		Family: t.Family,
		Page:   t.Page,
		Header: header,
		Rows:   normalize.Rows(t.Rows, stats),
	}
}

// width returns the widest row of the table, header included.
func (t *Table) width() int {
	w := len(t.Header)
	for _, r := range t.Rows {
		if len(r) > w {
			w = len(r)
		}
	}
	if w == 0 {
		w = 1
	}
	return w
}

// Combine stacks tables into one rectangular region.
func Combine(tables []Table) [][]string {
	if len(tables) == 0 {
		return nil
	}

	width := 0
	for i := range tables {
		if w := tables[i].width(); w > width {
			width = w
		}
	}

	var region [][]string
	for i, t := range tables {
		if i > 0 {
			for j := 0; j < separatorRows; j++ {
				region = append(region, pad(nil, width))
			}
		}
		region = append(region, pad([]string{t.Label}, width))
		if len(t.Header) > 0 {
			region = append(region, pad(t.Header, width))
		}
		for _, r := range t.Rows {
			region = append(region, pad(r, width))
		}
	}
	return region
}

// pad copies row into a slice of exactly width cells.
func pad(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// Layout selects how tables are distributed over sheets.
type Layout int

const (
	// LayoutCombined puts all tables of one extraction family on one sheet.
	LayoutCombined Layout = iota
	// LayoutPerTable puts every table on its own sheet.
	LayoutPerTable
)

// ParseLayout parses "combined" or "per-table".
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "combined":
		return LayoutCombined, nil
	case "per-table":
		return LayoutPerTable, nil
	default:
		return 0, fmt.Errorf("unknown layout %q", s)
	}
}

func (l Layout) String() string {
	if l == LayoutPerTable {
		return "per-table"
	}
	return "combined"
}

// Sheet is one named sheet of laid-out rows.
type Sheet struct {
	Name string
	Rows [][]string

	// HeaderRows holds the 0-based indices of label and header rows.
	HeaderRows []int
}

// Plan distributes tables over sheets according to layout.
func Plan(tables []Table, layout Layout) []Sheet {
	names := newSheetNamer()

	if layout == LayoutPerTable {
		sheets := make([]Sheet, 0, len(tables))
		for _, t := range tables {
			sheets = append(sheets, newSheet(names.next(t.Label), []Table{t}))
		}
		return sheets
	}

	var order []string
	groups := make(map[string][]Table)
	for _, t := range tables {
		if _, ok := groups[t.Family]; !ok {
			order = append(order, t.Family)
		}
		groups[t.Family] = append(groups[t.Family], t)
	}

	sheets := make([]Sheet, 0, len(order))
	for _, family := range order {
		name := "Tables"
		if family != "" {
			name = family + " Tables"
		}
		sheets = append(sheets, newSheet(names.next(name), groups[family]))
	}
	return sheets
}

func newSheet(name string, tables []Table) Sheet {
	s := Sheet{Name: name, Rows: Combine(tables)}

	row := 0
	for i, t := range tables {
		if i > 0 {
			row += separatorRows
		}
		s.HeaderRows = append(s.HeaderRows, row)
		row++
		if len(t.Header) > 0 {
			s.HeaderRows = append(s.HeaderRows, row)
			row++
		}
		row += len(t.Rows)
	}
	return s
}
