package extract

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// textRun is a positioned fragment of page text. Y grows upwards, as in
// PDF user space.
type textRun struct {
	X, Y, W float64
	S       string
}

// groupRows orders runs top to bottom and merges runs whose baselines lie
// within tol of the first run of the row. Each row is sorted left to right.
func groupRows(runs []textRun, tol float64) [][]textRun {
	if len(runs) == 0 {
		return nil
	}

	sorted := make([]textRun, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	var rows [][]textRun
	var current []textRun
	rowY := sorted[0].Y

	for _, r := range sorted {
		if len(current) > 0 && math.Abs(r.Y-rowY) > tol {
			rows = append(rows, current)
			current = nil
		}
		if len(current) == 0 {
			rowY = r.Y
		}
		current = append(current, r)
	}
	rows = append(rows, current)

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].X < row[j].X
		})
	}
	return rows
}

// splitCells joins a row's runs into cell strings. A horizontal gap wider
// than gap starts a new cell; a narrower but visible gap becomes a space.
func splitCells(row []textRun, gap float64) []string {
	var cells []string
	var b strings.Builder
	spaceGap := gap / 5

	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			cells = append(cells, s)
		}
		b.Reset()
	}

	for i, r := range row {
		if i > 0 {
			prev := row[i-1]
			d := r.X - (prev.X + prev.W)
			switch {
			case d > gap:
				flush()
			case d > spaceGap && !strings.HasSuffix(b.String(), " "):
				b.WriteByte(' ')
			}
		}
		b.WriteString(r.S)
	}
	flush()

	return cells
}

// columnSeparator splits OCR text lines on runs of two or more spaces or
// any tab; a single space stays inside a cell.
var columnSeparator = regexp.MustCompile(`\t+|\s{2,}`)

// splitLines turns plain text into rows of cells.
func splitLines(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			rows = append(rows, nil)
			continue
		}
		var cells []string
		for _, c := range columnSeparator.Split(line, -1) {
			if c = strings.TrimSpace(c); c != "" {
				cells = append(cells, c)
			}
		}
		rows = append(rows, cells)
	}
	return rows
}
