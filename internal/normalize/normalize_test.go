package normalize

import (
	"reflect"
	"testing"
)

// ----------------------------------------------------------------------------
// Clean Tests
// ----------------------------------------------------------------------------

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input Cell
		want  string
	}{
		{name: "absent cell", input: Absent(), want: ""},
		{name: "empty string", input: Text(""), want: ""},
		{name: "only whitespace", input: Text(" \t\u00a0 "), want: ""},
		{name: "currency with no-break space", input: Text("$ 1\u00a0234,50 "), want: "1 234,50"},
		{name: "narrow no-break space and tabs", input: Text("\t12\u202f000\t"), want: "12 000"},
		{name: "double space collapsed", input: Text("Net  revenue"), want: "Net revenue"},
		{name: "currency inside parentheses", input: Text("($1,234.56)"), want: "(1,234.56)"},
		{name: "plain text untouched", input: Text("Revenue"), want: "Revenue"},
		{name: "separators untouched", input: Text("1.234,50"), want: "1.234,50"},
		{name: "only currency symbol", input: Text("$"), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input.String, got, tt.want)
			}
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"$ 1\u00a0234,50 ",
		"  (99.5)\t",
		"a \u202f b",
		"$$1,000",
		"",
	}

	for _, in := range inputs {
		once := Clean(Text(in))
		twice := Clean(Text(once))
		if once != twice {
			t.Errorf("Clean not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

// ----------------------------------------------------------------------------
// Classify Tests
// ----------------------------------------------------------------------------

func TestClassify(t *testing.T) {
	tests := []struct {
		token string
		want  Format
	}{
		{"(99.5)", Parenthesized},
		{"(abc)", Parenthesized},
		{"()", Parenthesized},
		{"(", Opaque},
		{"1,234.50", AmericanGrouped},
		{"1,234,567.89", AmericanGrouped},
		{"1.234,50", EuropeanGrouped},
		{"1.234.567,89", EuropeanGrouped},
		{"123.45", DotDecimalOnly},
		{".5", DotDecimalOnly},
		{"1 234.5", DotDecimalOnly},
		{"1.5e3", DotDecimalOnly},
		{"abc.def", Opaque},
		{"12.03.2020", Opaque},
		{"1234,50", Opaque},
		{"1234", Opaque},
		{"N/A", Opaque},
		{"", Opaque},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := Classify(tt.token); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Canonicalize Tests
// ----------------------------------------------------------------------------

func TestString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// Grouped numbers
		{name: "american grouped", input: "1,234.50", want: "1234,50"},
		{name: "european grouped", input: "1.234,50", want: "1234,50"},
		{name: "american millions", input: "1,234,567.89", want: "1234567,89"},
		{name: "european millions", input: "1.234.567,89", want: "1234567,89"},
		{name: "american negative", input: "-1,234.50", want: "-1234,50"},
		{name: "american currency", input: "$1,234.56", want: "1234,56"},
		{name: "european drops interior space", input: "1 234.567,50", want: "1234567,50"},

		// Dot decimal
		{name: "dot decimal", input: "123.45", want: "123,45"},
		{name: "dot decimal with currency", input: "$99.5", want: "99,5"},
		{name: "bare thousands is read as decimal", input: "1.234", want: "1,234"},
		{name: "dot decimal keeps trailing zeros", input: "10.50", want: "10,50"},
		{name: "dot decimal keeps interior space", input: "1 234.5", want: "1 234,5"},

		// Accounting negatives
		{name: "parenthesized dot decimal", input: "(99.5)", want: "-99,5"},
		{name: "parenthesized european", input: "(1.234,56)", want: "-1234,56"},
		{name: "parenthesized american", input: "(1,234.56)", want: "-1234,56"},
		{name: "parenthesized with currency", input: "($1,234.56)", want: "-1234,56"},
		{name: "parenthesized with spaces", input: "( 999.99 )", want: "-999,99"},
		{name: "parenthesized comma decimal", input: "(99,5)", want: "-99,5"},
		{name: "parenthesized integer", input: "(100)", want: "-100"},
		{name: "parenthesized drops trailing zeros", input: "(0.50)", want: "-0,5"},
		{name: "parenthesized exponent rendered plainly", input: "(1e3)", want: "-1000"},
		{name: "parenthesized already negative", input: "(-5)", want: "-5"},
		{name: "parenthesized zero", input: "(0)", want: "0"},
		{name: "parenthesized zero with decimals", input: "(0.00)", want: "0"},

		// Passed through
		{name: "parenthesized text", input: "(abc)", want: "(abc)"},
		{name: "empty parentheses", input: "()", want: "()"},
		{name: "dotted text", input: "abc.def", want: "abc.def"},
		{name: "date", input: "12.03.2020", want: "12.03.2020"},
		{name: "already canonical", input: "1234,50", want: "1234,50"},
		{name: "text with both separators", input: "Smith, J.", want: "Smith, J."},
		{name: "malformed european", input: "1,2.3,4", want: "1,2.3,4"},
		{name: "not available", input: "N/A", want: "N/A"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := String(tt.input); got != tt.want {
				t.Errorf("String(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValue_Absent(t *testing.T) {
	if got := Value(Absent()); got != "" {
		t.Errorf("Value(Absent()) = %q, want empty", got)
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{
		"1,234.50", "1.234,50", "(1.234,56)", "$99.5", "123.45",
		"(abc)", "abc.def", "N/A", "1234,50", "-99,5", "12.03.2020", "",
	}

	for _, in := range inputs {
		once := String(in)
		twice := String(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestCanonicalize_ParenthesizedNegates(t *testing.T) {
	tests := []struct {
		inner string
		want  string
	}{
		{"1", "-1"},
		{"12.5", "-12,5"},
		{"0.125", "-0,125"},
		{"1234567.891", "-1234567,891"},
		{"0", "0"},
		{"0.00", "0"},
		{"1 234.5", "-1234,5"},
	}

	for _, tt := range tests {
		if got := Canonicalize("("+tt.inner+")", Parenthesized); got != tt.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", "("+tt.inner+")", got, tt.want)
		}
	}
}

// ----------------------------------------------------------------------------
// Normalize / Row Tests
// ----------------------------------------------------------------------------

func TestNormalize_Recovered(t *testing.T) {
	tests := []struct {
		input         string
		wantFormat    Format
		wantRecovered bool
	}{
		{"(abc)", Parenthesized, true},
		{"Smith, J.", AmericanGrouped, true},
		{"(99.5)", Parenthesized, false},
		{"1.234,50", EuropeanGrouped, false},
		{"N/A", Opaque, false},
	}

	for _, tt := range tests {
		r := Normalize(Text(tt.input))
		if r.Format != tt.wantFormat {
			t.Errorf("Normalize(%q).Format = %v, want %v", tt.input, r.Format, tt.wantFormat)
		}
		if r.Recovered != tt.wantRecovered {
			t.Errorf("Normalize(%q).Recovered = %v, want %v", tt.input, r.Recovered, tt.wantRecovered)
		}
	}
}

func TestRow_EndToEnd(t *testing.T) {
	got := Row(Cells("Revenue", "(1.234,56)", "$99.5", "N/A"))
	want := []string{"Revenue", "-1234,56", "99,5", "N/A"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Row() = %q, want %q", got, want)
	}
}

func TestRows_Stats(t *testing.T) {
	var stats Stats
	rows := [][]Cell{
		{Text("Revenue"), Text("(1.234,56)"), Text("$99.5")},
		{Text("Cost"), Absent(), Text("(n/a)")},
	}

	got := Rows(rows, &stats)
	want := [][]string{
		{"Revenue", "-1234,56", "99,5"},
		{"Cost", "", "(n/a)"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Rows() = %q, want %q", got, want)
	}

	if stats.Cells != 6 {
		t.Errorf("Cells = %d, want 6", stats.Cells)
	}
	if stats.Empty != 1 {
		t.Errorf("Empty = %d, want 1", stats.Empty)
	}
	if stats.Rewritten != 2 {
		t.Errorf("Rewritten = %d, want 2", stats.Rewritten)
	}
	if stats.Recovered != 1 {
		t.Errorf("Recovered = %d, want 1", stats.Recovered)
	}
	if got := stats.Count(Parenthesized); got != 2 {
		t.Errorf("Count(Parenthesized) = %d, want 2", got)
	}
	if got := stats.ByFormat()["opaque"]; got != 3 {
		t.Errorf("ByFormat()[opaque] = %d, want 3", got)
	}

	var total Stats
	total.Merge(stats)
	total.Merge(stats)
	if total.Cells != 12 || total.Count(DotDecimalOnly) != 2 {
		t.Errorf("Merge: Cells = %d, DotDecimalOnly = %d", total.Cells, total.Count(DotDecimalOnly))
	}

	// Snapshots returned by value are readable without an addressable copy.
	snapshot := func() Stats { return total }
	if got := snapshot().Count(Parenthesized); got != 4 {
		t.Errorf("snapshot Count(Parenthesized) = %d, want 4", got)
	}
	if got := snapshot().ByFormat()["european"]; got != 0 {
		t.Errorf("snapshot ByFormat()[european] = %d, want 0", got)
	}
}
