package convert

import "github.com/coachpo/baseconv/pkg/numeral"

type roundState int

const (
	awaitingExtraDigit roundState = iota
	propagating
	done
)

// settle folds raw digits from least to most significant, threading a carry.
//
// When more than accuracy digits were produced, the last one is never emitted:
// it only seeds the carry (1 when its value is at least half the base). Any
// digit that reaches base after adding the carry wraps and passes the carry on;
// a carry left after the most significant digit is reported in Fraction.Carry.
func settle(raw []int, base, accuracy int) Fraction {
	state := propagating
	if len(raw) > accuracy {
		state = awaitingExtraDigit
	}
	out := make([]byte, len(raw))
	width := len(raw)
	carry := 0
	i := len(raw) - 1
	for state != done {
		switch state {
		case awaitingExtraDigit:
			if 2*raw[i] >= base {
				carry = 1
			}
			i--
			width--
			state = propagating
		case propagating:
			if i < 0 {
				state = done
				continue
			}
			sum := raw[i] + carry
			carry = 0
			if sum >= base {
				sum -= base
				carry = 1
			}
			out[i] = numeral.Digit(sum)
			i--
		}
	}
	return Fraction{Digits: string(out[:width]), Carry: carry == 1}
}
