package settlement

import (
	"sort"

	"github.com/google/uuid"
	"github.com/homegame/chipledger/internal/domain"
)

// Balance is one player's net currency position after a session closes.
// Negative means the player owes money (debtor), positive means they are
// owed (creditor).
type Balance struct {
	UserID uuid.UUID
	Amount float64
}

// Simplify converts net balances into pairwise transfers by greedy
// largest-pair matching: repeatedly settle the most-negative debtor against
// the largest creditor. The result is deterministic for a given input order
// (stable sorts preserve input order for equal magnitudes) and contains at
// most debtors+creditors-1 transfers.
//
// The caller asserts the zero-sum precondition. Negative slack (less cashed
// out than bought in) is tolerated here: when creditors run out first, the
// remaining debtor balances are simply left unassigned.
func Simplify(balances []Balance) []domain.Transfer {
	var debtors, creditors []Balance
	for _, b := range balances {
		switch {
		case b.Amount < -Epsilon:
			debtors = append(debtors, b)
		case b.Amount > Epsilon:
			creditors = append(creditors, b)
		}
	}

	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].Amount < debtors[j].Amount // most negative first
	})
	sort.SliceStable(creditors, func(i, j int) bool {
		return creditors[i].Amount > creditors[j].Amount // largest first
	})

	transfers := []domain.Transfer{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		d, c := &debtors[i], &creditors[j]
		if -d.Amount <= Epsilon {
			i++
			continue
		}
		if c.Amount <= Epsilon {
			j++
			continue
		}

		amount := Round2(min(-d.Amount, c.Amount))
		if amount > 0 {
			transfers = append(transfers, domain.Transfer{
				PayerID:    d.UserID,
				ReceiverID: c.UserID,
				Amount:     amount,
			})
		}
		d.Amount += amount
		c.Amount -= amount
	}

	return transfers
}
