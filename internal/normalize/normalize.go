// Package normalize rewrites numeric cell values extracted from tables into
// one canonical, locale-consistent representation.
//
// Table extractors emit numbers in whatever shape the source document used:
//
//	1,234.50     American grouping
//	1.234,50     European grouping
//	(99.5)       accounting negative
//	$99.50       currency prefixed
//	1 234,50     no-break space and other whitespace artifacts
//
// Every cell runs through the same three steps:
//
//	raw cell -> Clean -> Classify -> Canonicalize -> normalized cell
//
// Numeric tokens end up as digits with a single decimal comma and an
// optional leading minus ("1234,50", "-99,5"). Text, dates and anything else
// that does not match a numeric grammar pass through cleaned but otherwise
// untouched.
//
// Each cell is classified on its own; there is no column-level locale
// inference. A bare "1.234" is therefore read as a decimal ("1,234") even
// when the column holds thousands-grouped integers.
//
// All functions are pure and safe for concurrent use.
package normalize

// Result is the outcome of normalizing one cell.
type Result struct {
	Value  string
	Format Format

	// Recovered is set when the token looked numeric but did not parse and
	// was passed through unchanged.
	Recovered bool
}

// Normalize cleans, classifies and canonicalizes a cell.
func Normalize(c Cell) Result {
	token := Clean(c)
	f := Classify(token)
	out := Canonicalize(token, f)
	return Result{
		Value:     out,
		Format:    f,
		Recovered: f.IsNumeric() && out == token,
	}
}

// Value returns the canonical form of a cell. Absent and blank cells
// normalize to "".
func Value(c Cell) string {
	return Normalize(c).Value
}

// String is Value for a present cell.
func String(s string) string {
	return Value(Text(s))
}

// Row normalizes every cell of a row.
func Row(cells []Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = Value(c)
	}
	return out
}

// Rows normalizes a grid, accumulating per-format counts into stats when
// stats is non-nil.
func Rows(rows [][]Cell, stats *Stats) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		norm := make([]string, len(row))
		for j, c := range row {
			r := Normalize(c)
			norm[j] = r.Value
			if stats != nil {
				stats.Add(r)
			}
		}
		out[i] = norm
	}
	return out
}
