package session

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/homegame/chipledger/internal/domain"
)

// RemainingChips is the pot minus chips already cashed out by other players.
// excludeUser's own recorded cash-out is ignored so a correction can be
// validated against the true remainder.
func RemainingChips(g *domain.GameSession, excludeUser uuid.UUID) int64 {
	remaining := g.TotalChipsInPot()
	for i := range g.Players {
		p := &g.Players[i]
		if p.UserID == excludeUser {
			continue
		}
		if p.IsCashedOut && p.CashOut != nil {
			remaining -= *p.CashOut
		}
	}
	return remaining
}

// CheckIntegrity verifies the aggregate's chip accounting: every player's
// approved total matches their ledger, no total is negative, and recorded
// cash-outs do not exceed the pot.
func CheckIntegrity(g *domain.GameSession) error {
	for i := range g.Players {
		p := &g.Players[i]
		if p.TotalApprovedBuyIn < 0 {
			return domain.ErrInvariantViolation(
				fmt.Sprintf("player %s has negative approved buy-in %d", p.UserID, p.TotalApprovedBuyIn))
		}
		if derived := p.ApprovedTotal(); derived != p.TotalApprovedBuyIn {
			return domain.ErrInvariantViolation(
				fmt.Sprintf("player %s approved total %d does not match ledger sum %d",
					p.UserID, p.TotalApprovedBuyIn, derived))
		}
	}
	if cashed, pot := g.TotalCashedOut(), g.TotalChipsInPot(); cashed > pot {
		return domain.ErrInvariantViolation(
			fmt.Sprintf("recorded cash-outs %d exceed the pot %d", cashed, pot))
	}
	if g.IsActive && len(g.SettlementTransfers) > 0 {
		return domain.ErrInvariantViolation("active session carries settlement transfers")
	}
	return nil
}
