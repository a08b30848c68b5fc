package convert

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/coachpo/baseconv/errs"
)

// ConvertValue converts a Go value holding a number. Strings are passed
// through unchanged; integers, floats, *big.Int and decimal.Decimal are
// rendered in base-10 notation first and then read as digits in fromBase.
// Other values fail with an unsupported_number error.
func ConvertValue(fromBase, toBase int, n any, opts Options) (string, error) {
	s, err := FormatValue(n)
	if err != nil {
		return "", err
	}
	return Convert(fromBase, toBase, s, opts)
}

// FormatValue renders n as a number string without exponent notation.
func FormatValue(n any) (string, error) {
	switch v := n.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return formatFloat(float64(v), 32)
	case float64:
		return formatFloat(v, 64)
	case *big.Int:
		if v == nil {
			return "", errs.UnsupportedNumber("<nil>", "nil *big.Int")
		}
		return v.String(), nil
	case decimal.Decimal:
		return v.String(), nil
	default:
		return "", errs.UnsupportedNumber(fmt.Sprintf("%v", n), fmt.Sprintf("values of type %T are not supported", n))
	}
}

func formatFloat(v float64, bitSize int) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", errs.UnsupportedNumber(strconv.FormatFloat(v, 'g', -1, bitSize), "not a finite number")
	}
	return strconv.FormatFloat(v, 'f', -1, bitSize), nil
}
