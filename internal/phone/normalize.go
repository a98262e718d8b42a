package phone

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// DefaultCountryCode is the national calling code assumed for numbers
// written without one (Malaysia).
const DefaultCountryCode = "60"

// nationalLength is the length of a national number whose leading trunk
// zero was dropped by spreadsheet auto-formatting (e.g. 0123456789 stored
// as the integer 123456789).
const nationalLength = 9

// Number is a canonical phone number: "+" followed by the country code and
// subscriber digits.
type Number string

// String implements fmt.Stringer.
func (n Number) String() string {
	return string(n)
}

// Normalizer canonicalizes phone tokens against a default country code.
// The zero value uses DefaultCountryCode.
type Normalizer struct {
	CountryCode string
}

// NewNormalizer returns a Normalizer for the given country code.
// An empty code falls back to DefaultCountryCode.
func NewNormalizer(countryCode string) Normalizer {
	return Normalizer{CountryCode: countryCode}
}

func (n Normalizer) countryCode() string {
	if n.CountryCode == "" {
		return DefaultCountryCode
	}
	return n.CountryCode
}

// Normalize converts a raw token into a canonical number.
//
// Steps, in order:
//  1. coerce the token to text
//  2. strip whitespace and hyphens
//  3. a leading "0" is replaced by the country code
//  4. otherwise a 9-character value starting with "1" gets the country code prefixed
//  5. "+" is prefixed if missing
//
// No validation is performed; "abc" becomes "+abc".
func (n Normalizer) Normalize(token any) Number {
	s := stripSeparators(Text(token))

	switch {
	case strings.HasPrefix(s, "0"):
		s = n.countryCode() + s[1:]
	case strings.HasPrefix(s, "1") && len(s) == nationalLength:
		s = n.countryCode() + s
	}

	if !strings.HasPrefix(s, "+") {
		s = "+" + s
	}
	return Number(s)
}

// Normalize canonicalizes token with DefaultCountryCode.
func Normalize(token any) Number {
	return Normalizer{}.Normalize(token)
}

// Text coerces a cell value to its textual form.
// Integral floats are printed without a fractional part so that a number
// cell holding 123456789 reads as "123456789", not "1.23456789e+08".
func Text(token any) string {
	switch v := token.(type) {
	case nil:
		return ""
	case string:
		return v
	case Number:
		return string(v)
	case []byte:
		return string(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return formatFloat(v)
	case float32:
		return formatFloat(float64(v))
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, s)
}
