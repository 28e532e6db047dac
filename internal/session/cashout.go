package session

import (
	"github.com/google/uuid"
	"github.com/homegame/chipledger/internal/domain"
)

// CashOutPlayer records how many chips a player leaves the table with. It may
// be re-invoked on an already-cashed-out player to correct a mistake, and a
// correction is allowed even after the session has closed; the remaining-pot
// calculation excludes that player's own stale value so the correction is
// judged against the true remainder. A post-closure correction invalidates
// the settlement transfer set, which must be recomputed.
func CashOutPlayer(g *domain.GameSession, userID uuid.UUID, amount int64) (*domain.PlayerSession, error) {
	p := g.Player(userID)
	if p == nil {
		return nil, domain.ErrPlayerNotInSession(userID.String())
	}
	if !g.IsActive && !p.IsCashedOut {
		return nil, domain.ErrSessionNotActive(g.ID.String())
	}
	if err := domain.ValidateNonNegativeChips(amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	remaining := RemainingChips(g, userID)
	if amount > remaining {
		return nil, domain.ErrExceedsPot(amount, remaining)
	}

	cashOut := amount
	p.CashOut = &cashOut
	p.NetProfit = amount - p.TotalApprovedBuyIn
	p.IsCashedOut = true
	if !g.IsActive {
		g.SettlementTransfers = nil
	}
	return p, nil
}

// EndGameResult reports the chip reconciliation of a closed session.
type EndGameResult struct {
	PotChips         int64
	TotalCashedOut   int64
	UnaccountedChips int64 // chips lost or unsold; logged, never fatal
}

// EndGame closes an active session. Players not yet cashed out take their
// value from cashOuts; an absent entry means the player left with zero chips.
// Unknown user ids are rejected. The transition is all-or-nothing: on any
// failure no player is mutated and the session stays active.
func EndGame(g *domain.GameSession, cashOuts map[uuid.UUID]int64) (*EndGameResult, error) {
	if !g.IsActive {
		return nil, domain.ErrSessionNotActive(g.ID.String())
	}

	for userID, amount := range cashOuts {
		if g.Player(userID) == nil {
			return nil, domain.ErrPlayerNotInSession(userID.String())
		}
		if err := domain.ValidateNonNegativeChips(amount); err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
	}

	// Validation pass: compute the final total before touching any player.
	pot := g.TotalChipsInPot()
	var total int64
	for i := range g.Players {
		p := &g.Players[i]
		if p.IsCashedOut && p.CashOut != nil {
			total += *p.CashOut
		} else {
			total += cashOuts[p.UserID]
		}
	}
	if total > pot {
		return nil, domain.ErrPotOverdrawn(total, pot)
	}

	for i := range g.Players {
		p := &g.Players[i]
		if p.IsCashedOut && p.CashOut != nil {
			// Recompute for consistency: a cancelled buy-in after the
			// cash-out changes the net without changing the chip count.
			p.NetProfit = *p.CashOut - p.TotalApprovedBuyIn
			continue
		}
		amount := cashOuts[p.UserID]
		cashOut := amount
		p.CashOut = &cashOut
		p.NetProfit = amount - p.TotalApprovedBuyIn
		p.IsCashedOut = true
	}
	g.IsActive = false

	return &EndGameResult{
		PotChips:         pot,
		TotalCashedOut:   total,
		UnaccountedChips: pot - total,
	}, nil
}
