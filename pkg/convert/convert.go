// Package convert translates signed number strings between positional bases
// 2 through 36, covering both integer and fractional parts.
//
// Integer parts convert exactly. Fractional parts are rounded half away from
// zero to the requested precision using decimal arithmetic, so every call is
// deterministic. Conversions between two non-decimal bases pass through base 10
// and inherit the rounding of both hops. A rounding carry out of the fraction
// is added to the integer part.
//
// The package holds no state; all functions are safe for concurrent use.
package convert

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/coachpo/baseconv/errs"
	"github.com/coachpo/baseconv/pkg/numeral"
)

// DefaultPrecision is the fractional precision used when none is configured.
const DefaultPrecision = 6

// MaxPrecision is the largest precision the decimal arithmetic can represent.
const MaxPrecision = math.MaxInt32

// Options carries the per-call settings a conversion reads once at entry.
type Options struct {
	// Precision is the maximum number of fractional digits produced.
	Precision int
	// StripZeros removes trailing fractional zeros. When false the fraction
	// is padded with zeros to Precision digits instead.
	StripZeros bool
}

// DefaultOptions returns six digits of precision with zero stripping on.
func DefaultOptions() Options {
	return Options{Precision: DefaultPrecision, StripZeros: true}
}

// Path identifies how a conversion is routed through base 10.
type Path string

const (
	// PathToBase10 converts directly into base 10.
	PathToBase10 Path = "to_base10"
	// PathFromBase10 converts directly out of base 10.
	PathFromBase10 Path = "from_base10"
	// PathViaBase10 converts into base 10 and then out of it.
	PathViaBase10 Path = "via_base10"
)

// Route reports the path Convert takes for a pair of bases.
func Route(fromBase, toBase int) Path {
	switch {
	case toBase == 10:
		return PathToBase10
	case fromBase == 10:
		return PathFromBase10
	default:
		return PathViaBase10
	}
}

// Validate checks both bases independently, then the precision.
func Validate(fromBase, toBase, precision int) error {
	if !numeral.ValidBase(fromBase) {
		return errs.InvalidBase("from", fromBase)
	}
	if !numeral.ValidBase(toBase) {
		return errs.InvalidBase("to", toBase)
	}
	return validatePrecision(precision)
}

func validatePrecision(precision int) error {
	if precision < 0 {
		return errs.InvalidPrecision(precision, "precision must be >= 0")
	}
	if precision > MaxPrecision {
		return errs.InvalidPrecision(precision, fmt.Sprintf("precision must be <= %d", MaxPrecision))
	}
	return nil
}

// Convert converts the number string n from fromBase to toBase.
// No partial result is returned on failure.
func Convert(fromBase, toBase int, n string, opts Options) (string, error) {
	if err := Validate(fromBase, toBase, opts.Precision); err != nil {
		return "", err
	}
	num, err := numeral.Parse(n)
	if err != nil {
		return "", err
	}

	var intPart, fracPart string
	switch Route(fromBase, toBase) {
	case PathToBase10:
		intPart, fracPart, err = toBase10(fromBase, num, opts.Precision, n)
	case PathFromBase10:
		intPart, fracPart, err = fromBase10(toBase, num, opts.Precision, n)
	default:
		intPart, fracPart, err = viaBase10(fromBase, toBase, num, opts.Precision, n)
	}
	if err != nil {
		return "", err
	}

	if !opts.StripZeros {
		fracPart = padFraction(fracPart, opts.Precision)
	}
	return Assemble(intPart, fracPart, num.Negative, opts.StripZeros), nil
}

func toBase10(fromBase int, num numeral.Number, precision int, input string) (string, string, error) {
	v, f, err := decimalValue(fromBase, num, precision, input)
	if err != nil {
		return "", "", err
	}
	if precision == 0 {
		return v.String(), "", nil
	}
	fixed := f.StringFixed(int32(precision))
	return v.String(), fixed[2:], nil
}

func fromBase10(toBase int, num numeral.Number, precision int, input string) (string, string, error) {
	v, err := integerValue(10, num.Integer, input)
	if err != nil {
		return "", "", err
	}
	f, err := exactFraction(num.Fraction, input)
	if err != nil {
		return "", "", err
	}
	return render(toBase, v, f, precision)
}

func viaBase10(fromBase, toBase int, num numeral.Number, precision int, input string) (string, string, error) {
	v, f, err := decimalValue(fromBase, num, precision, input)
	if err != nil {
		return "", "", err
	}
	return render(toBase, v, f, precision)
}

// decimalValue reads num in fromBase as an exact integer plus a fraction
// rounded to precision places, moving a fraction that rounded to 1 into the
// integer.
func decimalValue(fromBase int, num numeral.Number, precision int, input string) (*big.Int, decimal.Decimal, error) {
	v, err := integerValue(fromBase, num.Integer, input)
	if err != nil {
		return nil, decimal.Zero, err
	}
	f, err := fractionValue(fromBase, num.Fraction, precision, input)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if f.GreaterThanOrEqual(one) {
		v.Add(v, big.NewInt(1))
		f = f.Sub(one)
	}
	return v, f, nil
}

func render(toBase int, v *big.Int, f decimal.Decimal, precision int) (string, string, error) {
	frac := settle(expandFraction(toBase, f, precision), toBase, precision)
	if frac.Carry {
		v.Add(v, big.NewInt(1))
	}
	return integerDigits(toBase, v), frac.Digits, nil
}
