package convert

import (
	"math"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/coachpo/baseconv/errs"
)

func TestConvertValue(t *testing.T) {
	cases := []struct {
		name     string
		from, to int
		in       any
		want     string
	}{
		{"int", 10, 16, 255, "FF"},
		{"int64", 10, 2, int64(-5), "-101"},
		{"uint8", 10, 2, uint8(10), "1010"},
		{"float64", 10, 2, 0.5, "0.1"},
		{"float32", 10, 2, float32(2.25), "10.01"},
		{"big int", 10, 16, new(big.Int).Lsh(big.NewInt(1), 80), "100000000000000000000"},
		{"decimal", 10, 2, decimal.RequireFromString("2.5"), "10.1"},
		{"int read in source base", 16, 10, 10, "16"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ConvertValue(tc.from, tc.to, tc.in, DefaultOptions())
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestConvertValueUnsupported(t *testing.T) {
	var nilBig *big.Int
	for _, in := range []any{math.NaN(), math.Inf(1), struct{}{}, []byte("10"), nil, nilBig} {
		_, err := ConvertValue(10, 2, in, DefaultOptions())
		require.True(t, errs.HasCode(err, errs.CodeUnsupportedNumber), "input %#v: %v", in, err)
	}
}
