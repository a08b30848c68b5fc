// Package numeral parses positional number strings and maps digit symbols to values.
package numeral

const (
	// MinBase is the smallest supported radix.
	MinBase = 2
	// MaxBase is the largest supported radix; digits run 0-9 then A-Z.
	MaxBase = 36
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Value maps a digit symbol to its numeric value. Letters are case-insensitive.
// ok is false for anything outside 0-9, A-Z, a-z.
func Value(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10, true
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10, true
	default:
		return 0, false
	}
}

// Digit maps a value in [0, 35] to its canonical upper-case symbol.
// It panics for values outside that range.
func Digit(v int) byte {
	if v < 0 || v >= MaxBase {
		panic("numeral: digit value out of range")
	}
	return alphabet[v]
}

// ValidBase reports whether base is within [MinBase, MaxBase].
func ValidBase(base int) bool {
	return base >= MinBase && base <= MaxBase
}
