package settlement

import (
	"github.com/homegame/chipledger/internal/domain"
)

// Calculate computes the settlement transfers for a closed session and
// replaces the session's transfer set with the result. Recomputation after a
// cash-out correction is an expected workflow: the whole set is overwritten,
// never merged.
func Calculate(g *domain.GameSession, chipsPerUnit int64) ([]domain.Transfer, error) {
	if g.IsActive {
		return nil, domain.ErrSessionStillActive(g.ID.String())
	}

	var missing []string
	for i := range g.Players {
		if g.Players[i].CashOut == nil {
			missing = append(missing, g.Players[i].UserID.String())
		}
	}
	if len(missing) > 0 {
		return nil, domain.ErrIncompleteCashOut(missing)
	}

	balances := make([]Balance, 0, len(g.Players))
	var sum float64
	for i := range g.Players {
		p := &g.Players[i]
		amount := ChipsToUnits(p.NetProfit, chipsPerUnit)
		balances = append(balances, Balance{UserID: p.UserID, Amount: amount})
		sum += amount
	}

	// Positive slack means more was cashed out than bought in, which is a
	// data-entry error. Negative slack (unaccounted chips) is accepted and
	// settles short.
	if sum > Epsilon {
		return nil, domain.ErrUnbalancedSettlement(sum)
	}

	transfers := Simplify(balances)
	g.SettlementTransfers = transfers
	return transfers, nil
}
