package numeral

import (
	"strings"

	"github.com/coachpo/baseconv/errs"
)

// Number is a signed number string split at the radix point.
// Integer and Fraction hold canonical upper-case digits and are never empty.
type Number struct {
	Negative bool
	Integer  string
	Fraction string
}

// Parse splits s into sign, integer digits and fractional digits.
//
// Accepted forms are [+-]digits[.digits] and [+-].digits, where digits are 0-9 and
// A-Z in either case. A missing integer group defaults to "0", as does a missing
// fractional group. Digits are not checked against any base here.
func Parse(s string) (Number, error) {
	rest := s
	negative := false
	if rest != "" && (rest[0] == '+' || rest[0] == '-') {
		negative = rest[0] == '-'
		rest = rest[1:]
	}

	intPart, fracPart, hasPoint := strings.Cut(rest, ".")
	if !validRun(fracPart) && hasPoint {
		return Number{}, errs.MalformedNumber(s)
	}
	if intPart == "" {
		if !hasPoint {
			return Number{}, errs.MalformedNumber(s)
		}
		intPart = "0"
	} else if !validRun(intPart) {
		return Number{}, errs.MalformedNumber(s)
	}
	if !hasPoint {
		fracPart = "0"
	}

	return Number{
		Negative: negative,
		Integer:  strings.ToUpper(intPart),
		Fraction: strings.ToUpper(fracPart),
	}, nil
}

// validRun reports whether s is a non-empty run of digit symbols.
func validRun(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if _, ok := Value(s[i]); !ok {
			return false
		}
	}
	return true
}
