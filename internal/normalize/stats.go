package normalize

// Stats counts normalization outcomes. The zero value is ready to use.
// Stats is not safe for concurrent use; merge per-worker values instead.
type Stats struct {
	Cells     int `json:"cells"`
	Empty     int `json:"empty"`
	Rewritten int `json:"rewritten"`
	Recovered int `json:"recovered"`

	byFormat [5]int
}

// Add records one result.
func (s *Stats) Add(r Result) {
	s.Cells++
	if r.Value == "" {
		s.Empty++
	}
	if r.Recovered {
		s.Recovered++
	} else if r.Format.IsNumeric() {
		s.Rewritten++
	}
	if int(r.Format) < len(s.byFormat) {
		s.byFormat[r.Format]++
	}
}

// Merge adds the counts of other into s.
func (s *Stats) Merge(other Stats) {
	s.Cells += other.Cells
	s.Empty += other.Empty
	s.Rewritten += other.Rewritten
	s.Recovered += other.Recovered
	for i := range s.byFormat {
		s.byFormat[i] += other.byFormat[i]
	}
}

// Count returns how many cells were classified as f.
func (s Stats) Count(f Format) int {
	if int(f) < 0 || int(f) >= len(s.byFormat) {
		return 0
	}
	return s.byFormat[f]
}

// ByFormat returns the per-format counts keyed by format name.
func (s Stats) ByFormat() map[string]int {
	m := make(map[string]int, len(Formats))
	for _, f := range Formats {
		m[f.String()] = s.byFormat[f]
	}
	return m
}
