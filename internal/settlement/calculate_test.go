package settlement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/homegame/chipledger/internal/domain"
	"github.com/homegame/chipledger/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closedGame(profits map[uuid.UUID]int64, order []uuid.UUID) *domain.GameSession {
	g := &domain.GameSession{
		ID:       uuid.New(),
		ClubID:   uuid.New(),
		IsActive: false,
	}
	for _, userID := range order {
		net := profits[userID]
		buyIn := int64(10_000)
		cashOut := buyIn + net
		g.Players = append(g.Players, domain.PlayerSession{
			UserID:             userID,
			TotalApprovedBuyIn: buyIn,
			CashOut:            &cashOut,
			NetProfit:          net,
			IsCashedOut:        true,
		})
	}
	return g
}

func TestCalculate(t *testing.T) {
	t.Run("heads-up game settles in one transfer", func(t *testing.T) {
		winner, loser := uuid.New(), uuid.New()
		g := closedGame(map[uuid.UUID]int64{
			winner: 5_000,
			loser:  -5_000,
		}, []uuid.UUID{winner, loser})

		transfers, err := Calculate(g, 100)
		require.NoError(t, err)
		require.Len(t, transfers, 1)
		assert.Equal(t, loser, transfers[0].PayerID)
		assert.Equal(t, winner, transfers[0].ReceiverID)
		assert.Equal(t, 50.0, transfers[0].Amount)
		assert.Equal(t, transfers, g.SettlementTransfers)
	})

	t.Run("active session refused", func(t *testing.T) {
		g := closedGame(nil, nil)
		g.IsActive = true
		_, err := Calculate(g, 100)
		assertSettlementCode(t, err, "SESSION_STILL_ACTIVE")
	})

	t.Run("missing cash-outs refused", func(t *testing.T) {
		userID := uuid.New()
		g := closedGame(map[uuid.UUID]int64{userID: 0}, []uuid.UUID{userID})
		g.Players[0].CashOut = nil

		_, err := Calculate(g, 100)
		assertSettlementCode(t, err, "INCOMPLETE_CASHOUT")
	})

	t.Run("positive slack refused", func(t *testing.T) {
		winner := uuid.New()
		g := closedGame(map[uuid.UUID]int64{winner: 5_000}, []uuid.UUID{winner})

		_, err := Calculate(g, 100)
		assertSettlementCode(t, err, "UNBALANCED_SETTLEMENT")
		assert.Empty(t, g.SettlementTransfers)
	})

	t.Run("negative slack settles short", func(t *testing.T) {
		winner, loser := uuid.New(), uuid.New()
		g := closedGame(map[uuid.UUID]int64{
			winner: 3_000,
			loser:  -5_000,
		}, []uuid.UUID{winner, loser})

		transfers, err := Calculate(g, 100)
		require.NoError(t, err)
		require.Len(t, transfers, 1)
		assert.Equal(t, 30.0, transfers[0].Amount)
	})

	t.Run("recomputation replaces the transfer set", func(t *testing.T) {
		winner, loser := uuid.New(), uuid.New()
		g := closedGame(map[uuid.UUID]int64{
			winner: 5_000,
			loser:  -5_000,
		}, []uuid.UUID{winner, loser})

		first, err := Calculate(g, 100)
		require.NoError(t, err)
		second, err := Calculate(g, 100)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Len(t, g.SettlementTransfers, 1)

		// A post-closure correction shifts the winner's result and drops the
		// stale set; recomputation must produce the corrected transfer.
		_, err = session.CashOutPlayer(g, winner, 13_000)
		require.NoError(t, err)
		assert.Empty(t, g.SettlementTransfers)

		third, err := Calculate(g, 100)
		require.NoError(t, err)
		require.Len(t, third, 1)
		assert.Equal(t, 30.0, third[0].Amount)
		assert.Equal(t, third, g.SettlementTransfers)
	})

	t.Run("settles a session closed through the session lifecycle", func(t *testing.T) {
		winner, loser := uuid.New(), uuid.New()
		g, err := session.New(uuid.New(), []session.InitialStake{
			{UserID: winner, Amount: 10_000},
			{UserID: loser, Amount: 10_000},
		})
		require.NoError(t, err)
		_, err = session.EndGame(g, map[uuid.UUID]int64{winner: 15_000, loser: 5_000})
		require.NoError(t, err)

		transfers, err := Calculate(g, 100)
		require.NoError(t, err)
		require.Len(t, transfers, 1)
		assert.Equal(t, loser, transfers[0].PayerID)
		assert.Equal(t, winner, transfers[0].ReceiverID)
		assert.Equal(t, 50.0, transfers[0].Amount)
	})
}

func assertSettlementCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*domain.AppError)
	require.True(t, ok, "expected *domain.AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
