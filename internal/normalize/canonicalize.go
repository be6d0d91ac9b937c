package normalize

import (
	"math"
	"strconv"
	"strings"
)

// Canonicalize rewrites a cleaned token of the given format into canonical
// decimal-comma form: digits, one comma as decimal separator, no grouping,
// optional leading minus.
//
// Opaque tokens are returned unchanged. A token that matched a numeric
// pattern but does not hold a real number is also returned unchanged;
// Canonicalize never fails.
func Canonicalize(token string, f Format) string {
	switch f {
	case Parenthesized:
		return canonicalizeParenthesized(token)

	case AmericanGrouped:
		s := stripSpaces(strings.ReplaceAll(token, ",", ""))
		if _, ok := parseReal(s); !ok {
			return token
		}
		return strings.Replace(s, ".", ",", 1)

	case EuropeanGrouped:
		s := stripSpaces(strings.ReplaceAll(token, ".", ""))
		if _, ok := parseReal(strings.Replace(s, ",", ".", 1)); !ok {
			return token
		}
		return s

	case DotDecimalOnly:
		if _, ok := parseReal(stripSpaces(token)); !ok {
			return token
		}
		return strings.ReplaceAll(token, ".", ",")
	}

	return token
}

// canonicalizeParenthesized turns accounting notation into a negative
// number. "(1.234,56)" becomes "-1234,56"; "(n/a)" is kept verbatim.
func canonicalizeParenthesized(token string) string {
	if len(token) < 2 {
		return token
	}
	inner := stripSpaces(token[1 : len(token)-1])

	v, ok := parseReal(toDotDecimal(inner))
	if !ok {
		return token
	}
	if v == 0 {
		return "0"
	}
	return formatDecimalComma(-math.Abs(v))
}

// toDotDecimal unifies separators so the result can be parsed. Grouped
// content follows the same last-separator rule as Classify; a lone comma is
// read as the decimal separator.
func toDotDecimal(s string) string {
	dot := strings.LastIndexByte(s, '.')
	comma := strings.LastIndexByte(s, ',')

	switch {
	case dot >= 0 && comma >= 0 && dot > comma:
		return strings.ReplaceAll(s, ",", "")
	case dot >= 0 && comma >= 0:
		return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
	default:
		return strings.ReplaceAll(s, ",", ".")
	}
}

// formatDecimalComma renders v with the shortest representation that
// round-trips, never in exponent form.
func formatDecimalComma(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1)
}
