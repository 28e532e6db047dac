package settlement

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplify(t *testing.T) {
	t.Run("two-party game yields one transfer", func(t *testing.T) {
		winner, loser := uuid.New(), uuid.New()
		transfers := Simplify([]Balance{
			{UserID: winner, Amount: 50},
			{UserID: loser, Amount: -50},
		})

		require.Len(t, transfers, 1)
		assert.Equal(t, loser, transfers[0].PayerID)
		assert.Equal(t, winner, transfers[0].ReceiverID)
		assert.Equal(t, 50.0, transfers[0].Amount)
	})

	t.Run("one debtor pays creditors largest first", func(t *testing.T) {
		c1, c2, d := uuid.New(), uuid.New(), uuid.New()
		transfers := Simplify([]Balance{
			{UserID: c1, Amount: 30},
			{UserID: c2, Amount: 20},
			{UserID: d, Amount: -50},
		})

		require.Len(t, transfers, 2)
		assert.Equal(t, d, transfers[0].PayerID)
		assert.Equal(t, c1, transfers[0].ReceiverID)
		assert.Equal(t, 30.0, transfers[0].Amount)
		assert.Equal(t, d, transfers[1].PayerID)
		assert.Equal(t, c2, transfers[1].ReceiverID)
		assert.Equal(t, 20.0, transfers[1].Amount)
	})

	t.Run("equal magnitudes keep input order", func(t *testing.T) {
		c1, c2, d1, d2 := uuid.New(), uuid.New(), uuid.New(), uuid.New()
		transfers := Simplify([]Balance{
			{UserID: c1, Amount: 25},
			{UserID: c2, Amount: 25},
			{UserID: d1, Amount: -25},
			{UserID: d2, Amount: -25},
		})

		require.Len(t, transfers, 2)
		assert.Equal(t, d1, transfers[0].PayerID)
		assert.Equal(t, c1, transfers[0].ReceiverID)
		assert.Equal(t, d2, transfers[1].PayerID)
		assert.Equal(t, c2, transfers[1].ReceiverID)
	})

	t.Run("sub-epsilon balances produce no transfers", func(t *testing.T) {
		transfers := Simplify([]Balance{
			{UserID: uuid.New(), Amount: 0.005},
			{UserID: uuid.New(), Amount: -0.005},
			{UserID: uuid.New(), Amount: 0},
		})
		assert.Empty(t, transfers)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Simplify(nil))
	})

	t.Run("negative slack settles short", func(t *testing.T) {
		// 10 lost at the table: debtors owe 60, creditors claim 50.
		c, d1, d2 := uuid.New(), uuid.New(), uuid.New()
		transfers := Simplify([]Balance{
			{UserID: c, Amount: 50},
			{UserID: d1, Amount: -40},
			{UserID: d2, Amount: -20},
		})

		var paid float64
		for _, tr := range transfers {
			paid += tr.Amount
		}
		assert.InDelta(t, 50, paid, Epsilon)
	})
}

func TestSimplifyProperties(t *testing.T) {
	cases := map[string][]float64{
		"balanced three-way": {70.5, -30.25, -40.25},
		"many small debtors": {100, -10, -10, -10, -10, -10, -10, -10, -10, -10, -10},
		"two winners":        {33.34, 66.66, -50, -50},
		"cent amounts":       {0.03, 0.02, -0.05},
	}

	for name, amounts := range cases {
		t.Run(name, func(t *testing.T) {
			balances := make([]Balance, len(amounts))
			debtors, creditors := 0, 0
			for i, a := range amounts {
				balances[i] = Balance{UserID: uuid.New(), Amount: a}
				if a < -Epsilon {
					debtors++
				} else if a > Epsilon {
					creditors++
				}
			}

			transfers := Simplify(balances)

			assert.LessOrEqual(t, len(transfers), debtors+creditors-1)

			// Every transfer is positive and each party nets out to its
			// original balance within the tolerance.
			net := map[uuid.UUID]float64{}
			for _, tr := range transfers {
				assert.Greater(t, tr.Amount, 0.0)
				assert.NotEqual(t, tr.PayerID, tr.ReceiverID)
				net[tr.PayerID] -= tr.Amount
				net[tr.ReceiverID] += tr.Amount
			}
			for _, b := range balances {
				assert.InDelta(t, b.Amount, net[b.UserID], Epsilon+1e-9,
					"player %s should net to its balance", b.UserID)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.33, Round2(1.0/3.0))
	assert.Equal(t, 2.0, Round2(1.999))
	assert.Equal(t, -2.5, Round2(-2.5))
	assert.Equal(t, 0.0, math.Abs(Round2(0)))
}
