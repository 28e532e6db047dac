package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/homegame/chipledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestBuyIn(t *testing.T) {
	t.Run("pending entry does not touch approved total", func(t *testing.T) {
		g, ids := newTestGame(t, 1_000)
		req, err := RequestBuyIn(g, ids[0], 500)
		require.NoError(t, err)

		assert.Equal(t, domain.BuyInPending, req.Status)
		assert.Equal(t, domain.BuyInByUser, req.AddedBy)
		assert.False(t, req.IsInitial)
		assert.Equal(t, int64(1_000), g.Player(ids[0]).TotalApprovedBuyIn)
		assert.Equal(t, int64(1_000), g.TotalChipsInPot())
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		g, ids := newTestGame(t, 1_000)
		_, err := RequestBuyIn(g, ids[0], 0)
		assertCode(t, err, "VALIDATION_ERROR")
		_, err = RequestBuyIn(g, ids[0], -50)
		assertCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("unknown player", func(t *testing.T) {
		g, _ := newTestGame(t, 1_000)
		_, err := RequestBuyIn(g, uuid.New(), 500)
		assertCode(t, err, "PLAYER_NOT_IN_SESSION")
	})

	t.Run("closed session", func(t *testing.T) {
		g, ids := newTestGame(t, 1_000)
		g.IsActive = false
		_, err := RequestBuyIn(g, ids[0], 500)
		assertCode(t, err, "SESSION_NOT_ACTIVE")
	})
}

func TestApproveBuyIn(t *testing.T) {
	t.Run("approval increments total atomically with status", func(t *testing.T) {
		g, ids := newTestGame(t, 1_000)
		req, err := RequestBuyIn(g, ids[0], 500)
		require.NoError(t, err)

		resolved, applied, err := ApproveBuyIn(g, ids[0], req.ID)
		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, domain.BuyInApproved, resolved.Status)
		assert.Equal(t, int64(1_500), g.Player(ids[0]).TotalApprovedBuyIn)
		assert.NoError(t, CheckIntegrity(g))
	})

	t.Run("second approval is a no-op", func(t *testing.T) {
		g, ids := newTestGame(t, 1_000)
		req, _ := RequestBuyIn(g, ids[0], 500)
		_, _, err := ApproveBuyIn(g, ids[0], req.ID)
		require.NoError(t, err)

		_, applied, err := ApproveBuyIn(g, ids[0], req.ID)
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, int64(1_500), g.Player(ids[0]).TotalApprovedBuyIn)
	})

	t.Run("approving a rejected request is a no-op", func(t *testing.T) {
		g, ids := newTestGame(t, 1_000)
		req, _ := RequestBuyIn(g, ids[0], 500)
		_, _, err := RejectBuyIn(g, ids[0], req.ID)
		require.NoError(t, err)

		resolved, applied, err := ApproveBuyIn(g, ids[0], req.ID)
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, domain.BuyInRejected, resolved.Status)
		assert.Equal(t, int64(1_000), g.Player(ids[0]).TotalApprovedBuyIn)
	})

	t.Run("unknown request", func(t *testing.T) {
		g, ids := newTestGame(t, 1_000)
		_, _, err := ApproveBuyIn(g, ids[0], uuid.New())
		assertCode(t, err, "NOT_FOUND")
	})
}

func TestRejectBuyIn(t *testing.T) {
	g, ids := newTestGame(t, 1_000)
	req, _ := RequestBuyIn(g, ids[0], 500)

	resolved, applied, err := RejectBuyIn(g, ids[0], req.ID)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, domain.BuyInRejected, resolved.Status)
	assert.Equal(t, int64(1_000), g.Player(ids[0]).TotalApprovedBuyIn)

	_, applied, err = RejectBuyIn(g, ids[0], req.ID)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestAdminAddBuyIn(t *testing.T) {
	t.Run("entry lands approved immediately", func(t *testing.T) {
		g, ids := newTestGame(t, 1_000)
		req, err := AdminAddBuyIn(g, ids[0], 2_000)
		require.NoError(t, err)

		assert.Equal(t, domain.BuyInApproved, req.Status)
		assert.Equal(t, domain.BuyInByAdmin, req.AddedBy)
		assert.Equal(t, int64(3_000), g.Player(ids[0]).TotalApprovedBuyIn)
		assert.NoError(t, CheckIntegrity(g))
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		g, ids := newTestGame(t, 1_000)
		_, err := AdminAddBuyIn(g, ids[0], 0)
		assertCode(t, err, "VALIDATION_ERROR")
	})
}

func TestCancelBuyIn(t *testing.T) {
	t.Run("cancelling an approved entry decrements the total", func(t *testing.T) {
		g, ids := newTestGame(t, 1_000)
		req, _ := AdminAddBuyIn(g, ids[0], 500)

		require.NoError(t, CancelBuyIn(g, ids[0], req.ID))
		p := g.Player(ids[0])
		assert.Equal(t, int64(1_000), p.TotalApprovedBuyIn)
		assert.Nil(t, p.FindBuyIn(req.ID))
		assert.NoError(t, CheckIntegrity(g))
	})

	t.Run("cancelling a pending entry leaves the total alone", func(t *testing.T) {
		g, ids := newTestGame(t, 1_000)
		req, _ := RequestBuyIn(g, ids[0], 500)

		require.NoError(t, CancelBuyIn(g, ids[0], req.ID))
		assert.Equal(t, int64(1_000), g.Player(ids[0]).TotalApprovedBuyIn)
	})

	t.Run("initial entries cannot be cancelled", func(t *testing.T) {
		g, ids := newTestGame(t, 1_000)
		initial := g.Player(ids[0]).BuyInRequests[0].ID
		err := CancelBuyIn(g, ids[0], initial)
		assertCode(t, err, "VALIDATION_ERROR")
		assert.Equal(t, int64(1_000), g.Player(ids[0]).TotalApprovedBuyIn)
	})

	t.Run("unknown request", func(t *testing.T) {
		g, ids := newTestGame(t, 1_000)
		err := CancelBuyIn(g, ids[0], uuid.New())
		assertCode(t, err, "NOT_FOUND")
	})
}

// The approved total must equal the sum of approved entries after any
// request/approve/reject/cancel sequence.
func TestBuyInLedgerInvariant(t *testing.T) {
	g, ids := newTestGame(t, 10_000)
	userID := ids[0]

	r1, err := RequestBuyIn(g, userID, 5_000)
	require.NoError(t, err)
	r2, err := RequestBuyIn(g, userID, 3_000)
	require.NoError(t, err)
	r3, err := AdminAddBuyIn(g, userID, 7_000)
	require.NoError(t, err)

	_, _, err = ApproveBuyIn(g, userID, r1.ID)
	require.NoError(t, err)
	_, _, err = RejectBuyIn(g, userID, r2.ID)
	require.NoError(t, err)
	require.NoError(t, CancelBuyIn(g, userID, r3.ID))
	_, _, err = ApproveBuyIn(g, userID, r1.ID) // repeat, must not double-count
	require.NoError(t, err)

	p := g.Player(userID)
	assert.Equal(t, int64(15_000), p.TotalApprovedBuyIn)
	assert.Equal(t, p.ApprovedTotal(), p.TotalApprovedBuyIn)
	assert.NoError(t, CheckIntegrity(g))
}
