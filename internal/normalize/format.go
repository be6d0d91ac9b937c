package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Format identifies the numeric grammar a cleaned token is written in.
type Format int

const (
	// Opaque tokens are not rewritten: text, dates, values without separators
	// and numbers already written with a decimal comma.
	Opaque Format = iota
	// Parenthesized is accounting notation for a negative amount: "(99.5)".
	Parenthesized
	// AmericanGrouped uses commas for thousands and a dot for decimals: "1,234.50".
	AmericanGrouped
	// EuropeanGrouped uses dots for thousands and a comma for decimals: "1.234,50".
	EuropeanGrouped
	// DotDecimalOnly has a dot and no comma: "123.45".
	DotDecimalOnly
)

// Formats lists every format in declaration order.
var Formats = []Format{Opaque, Parenthesized, AmericanGrouped, EuropeanGrouped, DotDecimalOnly}

func (f Format) String() string {
	switch f {
	case Parenthesized:
		return "parenthesized"
	case AmericanGrouped:
		return "american"
	case EuropeanGrouped:
		return "european"
	case DotDecimalOnly:
		return "dot_decimal"
	default:
		return "opaque"
	}
}

// IsNumeric reports whether tokens of this format are rewritten.
func (f Format) IsNumeric() bool {
	return f != Opaque
}

// numericRegex validates a dot-decimal number after separators are unified.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// parseReal parses a dot-decimal string. Grammar the regex rejects (inf,
// nan, hex floats) is refused even where strconv would accept it.
func parseReal(s string) (float64, bool) {
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Classify decides which numeric grammar a cleaned token follows.
//
// Rules are applied in order and the first match wins:
//
//  1. "(...)" is Parenthesized.
//  2. A token with both "." and "," is AmericanGrouped when the last dot
//     follows the last comma, EuropeanGrouped otherwise.
//  3. A token with "." and no "," that parses as a real number (spaces
//     removed) is DotDecimalOnly.
//  4. Everything else, including "", is Opaque.
func Classify(token string) Format {
	if len(token) >= 2 && strings.HasPrefix(token, "(") && strings.HasSuffix(token, ")") {
		return Parenthesized
	}

	dot := strings.LastIndexByte(token, '.')
	comma := strings.LastIndexByte(token, ',')

	switch {
	case dot >= 0 && comma >= 0:
		if dot > comma {
			return AmericanGrouped
		}
		return EuropeanGrouped
	case dot >= 0:
		if _, ok := parseReal(stripSpaces(token)); ok {
			return DotDecimalOnly
		}
	}

	return Opaque
}

func stripSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
