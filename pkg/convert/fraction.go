package convert

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/coachpo/baseconv/errs"
	"github.com/coachpo/baseconv/pkg/numeral"
)

// Fraction is a fractional part rendered in a target base. Carry is set when
// rounding overflowed past the most significant digit, so one unit belongs to
// the paired integer part.
type Fraction struct {
	Digits string
	Carry  bool
}

var one = decimal.NewFromInt(1)

// FractionToBase10 converts the digits after a radix point in fromBase to a
// fixed-point base-10 string with exactly accuracy places, rounded half away
// from zero. With accuracy 0 a single place is still printed so the result
// always contains a point. The value may round up to "1.000…".
func FractionToBase10(fromBase int, digits string, accuracy int) (string, error) {
	if !numeral.ValidBase(fromBase) {
		return "", errs.InvalidBase("from", fromBase)
	}
	if err := validatePrecision(accuracy); err != nil {
		return "", err
	}
	v, err := fractionValue(fromBase, digits, accuracy, digits)
	if err != nil {
		return "", err
	}
	places := accuracy
	if places == 0 {
		places = 1
	}
	return v.StringFixed(int32(places)), nil
}

// FractionFromBase10 converts the fractional part of a base-10 number string
// to at most accuracy digits in toBase. Any integer part of value is ignored.
func FractionFromBase10(toBase int, value string, accuracy int) (Fraction, error) {
	if !numeral.ValidBase(toBase) {
		return Fraction{}, errs.InvalidBase("to", toBase)
	}
	if err := validatePrecision(accuracy); err != nil {
		return Fraction{}, err
	}
	num, err := numeral.Parse(value)
	if err != nil {
		return Fraction{}, err
	}
	f, err := exactFraction(num.Fraction, value)
	if err != nil {
		return Fraction{}, err
	}
	return settle(expandFraction(toBase, f, accuracy), toBase, accuracy), nil
}

// fractionValue returns the value of 0.digits in base, i.e. the sum of each
// digit times base^-position, computed exactly as N / base^len(digits) and then
// rounded to accuracy places. The result lies in [0, 1].
func fractionValue(base int, digits string, accuracy int, input string) (decimal.Decimal, error) {
	num, err := integerValue(base, digits, input)
	if err != nil {
		return decimal.Zero, err
	}
	den := new(big.Int).Exp(big.NewInt(int64(base)), big.NewInt(int64(len(digits))), nil)
	return decimal.NewFromBigInt(num, 0).DivRound(decimal.NewFromBigInt(den, 0), int32(accuracy)), nil
}

// exactFraction reads base-10 fractional digits without rounding.
func exactFraction(digits, input string) (decimal.Decimal, error) {
	if digits == "" {
		return decimal.Zero, nil
	}
	for i := 0; i < len(digits); i++ {
		if v, ok := numeral.Value(digits[i]); !ok || v >= 10 {
			return decimal.Zero, errs.InvalidDigit(string(digits[i]), 10, input)
		}
	}
	f, err := decimal.NewFromString("0." + digits)
	if err != nil {
		return decimal.Zero, errs.MalformedNumber(input)
	}
	return f, nil
}

// expandFraction produces up to accuracy+1 digits of value in base. Each
// product and each remainder is rounded to accuracy places; an exact integer
// product ends the expansion early.
func expandFraction(base int, value decimal.Decimal, accuracy int) []int {
	places := int32(accuracy)
	radix := decimal.NewFromInt(int64(base))
	n := value
	out := make([]int, 0, accuracy+1)
	for len(out) <= accuracy {
		n = n.Mul(radix).Round(places)
		whole := n.Truncate(0)
		out = append(out, int(whole.IntPart()))
		if n.Equal(whole) {
			break
		}
		n = n.Sub(whole).Round(places)
	}
	return out
}
