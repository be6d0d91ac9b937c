package normalize

import "strings"

// whitespaceReplacer maps the whitespace variants found in OCR and
// text-layer output to an ordinary space.
var whitespaceReplacer = strings.NewReplacer(
	"\u00a0", " ", // no-break space
	"\u202f", " ", // narrow no-break space
	"\t", " ",
)

// Clean strips currency markers and whitespace artifacts from a raw cell.
//
// Absent and blank cells clean to "". Interior whitespace variants become a
// single ordinary space; digits, separators, parentheses and letters are
// never touched. Clean(Text(Clean(c))) == Clean(c).
func Clean(c Cell) string {
	if c.IsAbsent() {
		return ""
	}
	return cleanString(c.String)
}

func cleanString(s string) string {
	s = strings.ReplaceAll(s, "$", "")
	s = whitespaceReplacer.Replace(s)
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}
