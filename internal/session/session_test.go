package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/homegame/chipledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T, amounts ...int64) (*domain.GameSession, []uuid.UUID) {
	t.Helper()
	stakes := make([]InitialStake, len(amounts))
	ids := make([]uuid.UUID, len(amounts))
	for i, a := range amounts {
		ids[i] = uuid.New()
		stakes[i] = InitialStake{UserID: ids[i], Amount: a}
	}
	g, err := New(uuid.New(), stakes)
	require.NoError(t, err)
	return g, ids
}

func TestNew(t *testing.T) {
	t.Run("creates active session with initial approved entries", func(t *testing.T) {
		g, ids := newTestGame(t, 10_000, 5_000)

		assert.True(t, g.IsActive)
		assert.Empty(t, g.SettlementTransfers)
		require.Len(t, g.Players, 2)

		p := g.Player(ids[0])
		require.NotNil(t, p)
		assert.Equal(t, int64(10_000), p.TotalApprovedBuyIn)
		require.Len(t, p.BuyInRequests, 1)
		assert.True(t, p.BuyInRequests[0].IsInitial)
		assert.Equal(t, domain.BuyInApproved, p.BuyInRequests[0].Status)
		assert.Equal(t, domain.BuyInByAdmin, p.BuyInRequests[0].AddedBy)

		assert.Equal(t, int64(15_000), g.TotalChipsInPot())
	})

	t.Run("zero-amount initial entry is allowed", func(t *testing.T) {
		g, ids := newTestGame(t, 0)
		p := g.Player(ids[0])
		require.Len(t, p.BuyInRequests, 1)
		assert.Equal(t, int64(0), p.TotalApprovedBuyIn)
		assert.NoError(t, CheckIntegrity(g))
	})

	t.Run("duplicate players rejected", func(t *testing.T) {
		userID := uuid.New()
		_, err := New(uuid.New(), []InitialStake{
			{UserID: userID, Amount: 100},
			{UserID: userID, Amount: 200},
		})
		require.Error(t, err)
		assertCode(t, err, "PLAYER_ALREADY_IN_SESSION")
	})

	t.Run("negative initial stake rejected", func(t *testing.T) {
		_, err := New(uuid.New(), []InitialStake{{UserID: uuid.New(), Amount: -1}})
		assertCode(t, err, "VALIDATION_ERROR")
	})
}

func TestAddPlayer(t *testing.T) {
	t.Run("joins with initial buy-in", func(t *testing.T) {
		g, _ := newTestGame(t, 1_000)
		userID := uuid.New()

		p, err := AddPlayer(g, userID, 2_000)
		require.NoError(t, err)
		assert.Equal(t, int64(2_000), p.TotalApprovedBuyIn)
		require.Len(t, p.BuyInRequests, 1)
		assert.True(t, p.BuyInRequests[0].IsInitial)
		assert.Equal(t, int64(3_000), g.TotalChipsInPot())
	})

	t.Run("zero buy-in joins without ledger entry", func(t *testing.T) {
		g, _ := newTestGame(t, 1_000)
		p, err := AddPlayer(g, uuid.New(), 0)
		require.NoError(t, err)
		assert.Empty(t, p.BuyInRequests)
		assert.Equal(t, int64(0), p.TotalApprovedBuyIn)
	})

	t.Run("already in session", func(t *testing.T) {
		g, ids := newTestGame(t, 1_000)
		_, err := AddPlayer(g, ids[0], 500)
		assertCode(t, err, "PLAYER_ALREADY_IN_SESSION")
	})

	t.Run("closed session", func(t *testing.T) {
		g, _ := newTestGame(t, 1_000)
		g.IsActive = false
		_, err := AddPlayer(g, uuid.New(), 500)
		assertCode(t, err, "SESSION_NOT_ACTIVE")
	})
}

func TestRemovePlayer(t *testing.T) {
	t.Run("removes player and history", func(t *testing.T) {
		g, ids := newTestGame(t, 1_000, 2_000)
		require.NoError(t, RemovePlayer(g, ids[0]))
		assert.Nil(t, g.Player(ids[0]))
		assert.Equal(t, int64(2_000), g.TotalChipsInPot())
	})

	t.Run("unknown player", func(t *testing.T) {
		g, _ := newTestGame(t, 1_000)
		err := RemovePlayer(g, uuid.New())
		assertCode(t, err, "PLAYER_NOT_IN_SESSION")
	})

	t.Run("closed session", func(t *testing.T) {
		g, ids := newTestGame(t, 1_000)
		g.IsActive = false
		err := RemovePlayer(g, ids[0])
		assertCode(t, err, "SESSION_NOT_ACTIVE")
	})
}

func TestCheckIntegrity(t *testing.T) {
	t.Run("clean session passes", func(t *testing.T) {
		g, _ := newTestGame(t, 1_000, 2_000)
		assert.NoError(t, CheckIntegrity(g))
	})

	t.Run("detects drifted approved total", func(t *testing.T) {
		g, ids := newTestGame(t, 1_000)
		g.Player(ids[0]).TotalApprovedBuyIn = 999
		assertCode(t, CheckIntegrity(g), "INVARIANT_VIOLATION")
	})

	t.Run("detects transfers on active session", func(t *testing.T) {
		g, ids := newTestGame(t, 1_000)
		g.SettlementTransfers = []domain.Transfer{{PayerID: ids[0], ReceiverID: uuid.New(), Amount: 1}}
		assertCode(t, CheckIntegrity(g), "INVARIANT_VIOLATION")
	})
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*domain.AppError)
	require.True(t, ok, "expected *domain.AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
