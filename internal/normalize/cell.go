package normalize

// Cell is a raw value as produced by a table extractor.
//
// Extractors emit either text or nothing at all (an empty spreadsheet cell).
// Valid=false marks the absent case, mirroring pgtype.Text.
type Cell struct {
	String string
	Valid  bool
}

// Text returns a present cell holding s.
func Text(s string) Cell {
	return Cell{String: s, Valid: true}
}

// Absent returns an empty cell.
func Absent() Cell {
	return Cell{}
}

// Cells wraps each string as a present cell.
func Cells(values ...string) []Cell {
	out := make([]Cell, len(values))
	for i, v := range values {
		out[i] = Text(v)
	}
	return out
}

// IsAbsent reports whether the cell carries no value.
func (c Cell) IsAbsent() bool {
	return !c.Valid
}
