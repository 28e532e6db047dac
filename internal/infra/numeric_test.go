package infra

import (
	"math"
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 10_000, math.MaxInt64, math.MinInt64 + 1}
	for _, v := range values {
		got, err := NumericToInt64(Int64ToNumeric(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestNumericToInt64(t *testing.T) {
	t.Run("NULL refused", func(t *testing.T) {
		_, err := NumericToInt64(pgtype.Numeric{Valid: false})
		assert.Error(t, err)
	})

	t.Run("positive exponent expands", func(t *testing.T) {
		// 5 * 10^3
		got, err := NumericToInt64(pgtype.Numeric{Int: big.NewInt(5), Exp: 3, Valid: true})
		require.NoError(t, err)
		assert.Equal(t, int64(5_000), got)
	})

	t.Run("fractional digits truncate", func(t *testing.T) {
		// 12345 * 10^-2 = 123.45
		got, err := NumericToInt64(pgtype.Numeric{Int: big.NewInt(12_345), Exp: -2, Valid: true})
		require.NoError(t, err)
		assert.Equal(t, int64(123), got)
	})

	t.Run("overflow refused", func(t *testing.T) {
		huge := new(big.Int).Mul(big.NewInt(math.MaxInt64), big.NewInt(10))
		_, err := NumericToInt64(pgtype.Numeric{Int: huge, Exp: 0, Valid: true})
		assert.Error(t, err)
	})
}
