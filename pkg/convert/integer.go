package convert

import (
	"math/big"

	"github.com/coachpo/baseconv/errs"
	"github.com/coachpo/baseconv/pkg/numeral"
)

// IntegerToBase10 interprets digits as a big-endian integer in fromBase and
// returns its base-10 digit string.
func IntegerToBase10(fromBase int, digits string) (string, error) {
	if !numeral.ValidBase(fromBase) {
		return "", errs.InvalidBase("from", fromBase)
	}
	v, err := integerValue(fromBase, digits, digits)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// IntegerFromBase10 converts a base-10 digit string to toBase. Zero renders as "0".
func IntegerFromBase10(toBase int, decimalDigits string) (string, error) {
	if !numeral.ValidBase(toBase) {
		return "", errs.InvalidBase("to", toBase)
	}
	if decimalDigits == "" {
		return "", errs.MalformedNumber(decimalDigits)
	}
	v, err := integerValue(10, decimalDigits, decimalDigits)
	if err != nil {
		return "", err
	}
	return integerDigits(toBase, v), nil
}

// integerValue accumulates digits least significant first, scaling the
// positional weight by base after each one. input is reported on failure.
func integerValue(base int, digits, input string) (*big.Int, error) {
	sum := new(big.Int)
	weight := big.NewInt(1)
	radix := big.NewInt(int64(base))
	term := new(big.Int)
	for i := len(digits) - 1; i >= 0; i-- {
		v, ok := numeral.Value(digits[i])
		if !ok || v >= base {
			return nil, errs.InvalidDigit(string(digits[i]), base, input)
		}
		if v != 0 {
			term.SetInt64(int64(v))
			sum.Add(sum, term.Mul(term, weight))
		}
		weight.Mul(weight, radix)
	}
	return sum, nil
}

// integerDigits renders a non-negative v in base by repeated division.
func integerDigits(base int, v *big.Int) string {
	if v.Sign() == 0 {
		return "0"
	}
	q := new(big.Int).Set(v)
	r := new(big.Int)
	radix := big.NewInt(int64(base))
	out := make([]byte, 0, q.BitLen())
	for q.Sign() > 0 {
		q.QuoRem(q, radix, r)
		out = append(out, numeral.Digit(int(r.Int64())))
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
