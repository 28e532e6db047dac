// Package session implements the game session state machine: the buy-in
// ledger, the cash-out recorder and the pot-integrity checks. All operations
// mutate a *domain.GameSession in memory and perform no I/O; persistence and
// event emission belong to the service layer.
package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/homegame/chipledger/internal/domain"
)

// InitialStake is one (player, chips) pair supplied at session creation.
// An explicit ordered slice rather than a map: order is preserved, duplicates
// and unknown players are rejected instead of silently ignored.
type InitialStake struct {
	UserID uuid.UUID `json:"userId"`
	Amount int64     `json:"amount"` // chips, may be zero
}

// New creates an active session for a club with the given initial players.
// Every player receives an initial approved buy-in entry, zero-amount entries
// included, so the ledger stays the single source of truth for stakes.
func New(clubID uuid.UUID, stakes []InitialStake) (*domain.GameSession, error) {
	g := &domain.GameSession{
		ID:        uuid.New(),
		ClubID:    clubID,
		IsActive:  true,
		CreatedAt: time.Now(),
	}

	for _, s := range stakes {
		if err := domain.ValidateNonNegativeChips(s.Amount); err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
		if g.Player(s.UserID) != nil {
			return nil, domain.ErrPlayerAlreadyInSession(s.UserID.String())
		}
		g.Players = append(g.Players, domain.PlayerSession{
			UserID:             s.UserID,
			TotalApprovedBuyIn: s.Amount,
			BuyInRequests: []domain.BuyInRequest{{
				ID:        uuid.New(),
				Amount:    s.Amount,
				Status:    domain.BuyInApproved,
				Timestamp: g.CreatedAt,
				IsInitial: true,
				AddedBy:   domain.BuyInByAdmin,
			}},
		})
	}

	return g, nil
}

// AddPlayer joins a player to an active session with an initial buy-in.
func AddPlayer(g *domain.GameSession, userID uuid.UUID, initialBuyIn int64) (*domain.PlayerSession, error) {
	if !g.IsActive {
		return nil, domain.ErrSessionNotActive(g.ID.String())
	}
	if g.Player(userID) != nil {
		return nil, domain.ErrPlayerAlreadyInSession(userID.String())
	}
	if err := domain.ValidateNonNegativeChips(initialBuyIn); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	p := domain.PlayerSession{UserID: userID}
	if initialBuyIn > 0 {
		p.BuyInRequests = []domain.BuyInRequest{{
			ID:        uuid.New(),
			Amount:    initialBuyIn,
			Status:    domain.BuyInApproved,
			Timestamp: time.Now(),
			IsInitial: true,
			AddedBy:   domain.BuyInByAdmin,
		}}
		p.TotalApprovedBuyIn = initialBuyIn
	}
	g.Players = append(g.Players, p)
	return g.Player(userID), nil
}

// RemovePlayer deletes a player and their entire buy-in history from an
// active session. This is an operator correction tool, not a cash-out.
func RemovePlayer(g *domain.GameSession, userID uuid.UUID) error {
	if !g.IsActive {
		return domain.ErrSessionNotActive(g.ID.String())
	}
	for i := range g.Players {
		if g.Players[i].UserID == userID {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			return nil
		}
	}
	return domain.ErrPlayerNotInSession(userID.String())
}
