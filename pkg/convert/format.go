package convert

import "strings"

// Assemble joins the integer and fractional digit strings into a result.
//
// An empty integer part becomes "0". With stripZeros, trailing zeros are
// removed from the fraction, and an empty fraction drops the radix point. The
// minus sign is emitted only for a non-zero magnitude.
func Assemble(integerPart, fractionalPart string, negative, stripZeros bool) string {
	if integerPart == "" {
		integerPart = "0"
	}
	if stripZeros {
		fractionalPart = strings.TrimRight(fractionalPart, "0")
	}

	var b strings.Builder
	b.Grow(len(integerPart) + len(fractionalPart) + 2)
	if negative && !isZero(integerPart, fractionalPart) {
		b.WriteByte('-')
	}
	b.WriteString(integerPart)
	if fractionalPart != "" {
		b.WriteByte('.')
		b.WriteString(fractionalPart)
	}
	return b.String()
}

func isZero(parts ...string) bool {
	for _, p := range parts {
		if strings.Trim(p, "0") != "" {
			return false
		}
	}
	return true
}

func padFraction(digits string, width int) string {
	if len(digits) >= width {
		return digits
	}
	return digits + strings.Repeat("0", width-len(digits))
}
