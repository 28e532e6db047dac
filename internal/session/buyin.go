package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/homegame/chipledger/internal/domain"
)

// RequestBuyIn appends a pending buy-in entry for a player in an active
// session. The approved total is untouched until the request is resolved.
func RequestBuyIn(g *domain.GameSession, userID uuid.UUID, amount int64) (*domain.BuyInRequest, error) {
	if !g.IsActive {
		return nil, domain.ErrSessionNotActive(g.ID.String())
	}
	p := g.Player(userID)
	if p == nil {
		return nil, domain.ErrPlayerNotInSession(userID.String())
	}
	if err := domain.ValidatePositiveChips(amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	p.BuyInRequests = append(p.BuyInRequests, domain.BuyInRequest{
		ID:        uuid.New(),
		Amount:    amount,
		Status:    domain.BuyInPending,
		Timestamp: time.Now(),
		AddedBy:   domain.BuyInByUser,
	})
	return &p.BuyInRequests[len(p.BuyInRequests)-1], nil
}

// ApproveBuyIn resolves a pending request to approved and increments the
// player's approved total in the same mutation. Approving an already-resolved
// request is a benign no-op; the second return value reports whether the
// ledger changed.
func ApproveBuyIn(g *domain.GameSession, userID, requestID uuid.UUID) (*domain.BuyInRequest, bool, error) {
	req, p, err := findRequest(g, userID, requestID)
	if err != nil {
		return nil, false, err
	}
	if req.Status != domain.BuyInPending {
		return req, false, nil
	}
	req.Status = domain.BuyInApproved
	p.TotalApprovedBuyIn += req.Amount
	return req, true, nil
}

// RejectBuyIn resolves a pending request to rejected. No ledger-total effect.
// Idempotent on already-resolved requests.
func RejectBuyIn(g *domain.GameSession, userID, requestID uuid.UUID) (*domain.BuyInRequest, bool, error) {
	req, _, err := findRequest(g, userID, requestID)
	if err != nil {
		return nil, false, err
	}
	if req.Status != domain.BuyInPending {
		return req, false, nil
	}
	req.Status = domain.BuyInRejected
	return req, true, nil
}

// AdminAddBuyIn inserts an already-approved entry, bypassing the pending
// state. Used for operator-recorded cash buy-ins that need no approval.
func AdminAddBuyIn(g *domain.GameSession, userID uuid.UUID, amount int64) (*domain.BuyInRequest, error) {
	if !g.IsActive {
		return nil, domain.ErrSessionNotActive(g.ID.String())
	}
	p := g.Player(userID)
	if p == nil {
		return nil, domain.ErrPlayerNotInSession(userID.String())
	}
	if err := domain.ValidatePositiveChips(amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	p.BuyInRequests = append(p.BuyInRequests, domain.BuyInRequest{
		ID:        uuid.New(),
		Amount:    amount,
		Status:    domain.BuyInApproved,
		Timestamp: time.Now(),
		AddedBy:   domain.BuyInByAdmin,
	})
	p.TotalApprovedBuyIn += amount
	return &p.BuyInRequests[len(p.BuyInRequests)-1], nil
}

// CancelBuyIn removes a non-initial entry from the log. If the entry was
// approved the player's total is decremented by the same amount. The approved
// total must never go negative; that state is unreachable under correct
// bookkeeping and treated as corruption.
func CancelBuyIn(g *domain.GameSession, userID, requestID uuid.UUID) error {
	if !g.IsActive {
		return domain.ErrSessionNotActive(g.ID.String())
	}
	p := g.Player(userID)
	if p == nil {
		return domain.ErrPlayerNotInSession(userID.String())
	}

	for i := range p.BuyInRequests {
		req := &p.BuyInRequests[i]
		if req.ID != requestID {
			continue
		}
		if req.IsInitial {
			return domain.ErrValidation("initial buy-in entries cannot be cancelled")
		}
		if req.Status == domain.BuyInApproved {
			if p.TotalApprovedBuyIn-req.Amount < 0 {
				return domain.ErrInvariantViolation("cancelling this buy-in would drive the approved total negative")
			}
			p.TotalApprovedBuyIn -= req.Amount
		}
		p.BuyInRequests = append(p.BuyInRequests[:i], p.BuyInRequests[i+1:]...)
		return nil
	}
	return domain.ErrNotFound("buy-in request", requestID.String())
}

func findRequest(g *domain.GameSession, userID, requestID uuid.UUID) (*domain.BuyInRequest, *domain.PlayerSession, error) {
	if !g.IsActive {
		return nil, nil, domain.ErrSessionNotActive(g.ID.String())
	}
	p := g.Player(userID)
	if p == nil {
		return nil, nil, domain.ErrPlayerNotInSession(userID.String())
	}
	req := p.FindBuyIn(requestID)
	if req == nil {
		return nil, nil, domain.ErrNotFound("buy-in request", requestID.String())
	}
	return req, p, nil
}
