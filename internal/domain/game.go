package domain

import (
	"time"

	"github.com/google/uuid"
)

// BuyInStatus is the resolution state of a buy-in request.
// Pending is the only mutable state; approved and rejected are terminal.
type BuyInStatus string

const (
	BuyInPending  BuyInStatus = "pending"
	BuyInApproved BuyInStatus = "approved"
	BuyInRejected BuyInStatus = "rejected"
)

// BuyInSource records who created a buy-in entry. Provenance only, it does
// not affect processing.
type BuyInSource string

const (
	BuyInByAdmin BuyInSource = "admin"
	BuyInByUser  BuyInSource = "user"
)

// BuyInRequest is one entry in a player's buy-in log.
type BuyInRequest struct {
	ID        uuid.UUID   `json:"id"`
	Amount    int64       `json:"amount"` // chips
	Status    BuyInStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	IsInitial bool        `json:"isInitial"`
	AddedBy   BuyInSource `json:"addedBy"`
}

// PlayerSession is one player's state within a game session. Owned exclusively
// by its GameSession.
type PlayerSession struct {
	UserID             uuid.UUID      `json:"userId"`
	TotalApprovedBuyIn int64          `json:"totalApprovedBuyIn"` // chips, sum of approved entries
	BuyInRequests      []BuyInRequest `json:"buyInRequests"`
	CashOut            *int64         `json:"cashOut,omitempty"` // chips, nil until recorded
	NetProfit          int64          `json:"netProfit"`         // chips, cashOut - totalApprovedBuyIn
	IsCashedOut        bool           `json:"isCashedOut"`
}

// FindBuyIn returns the buy-in entry with the given id, or nil.
func (p *PlayerSession) FindBuyIn(requestID uuid.UUID) *BuyInRequest {
	for i := range p.BuyInRequests {
		if p.BuyInRequests[i].ID == requestID {
			return &p.BuyInRequests[i]
		}
	}
	return nil
}

// ApprovedTotal recomputes the sum of approved entries from the log.
// TotalApprovedBuyIn is maintained incrementally; this is the authoritative
// derivation used by invariant checks and tests.
func (p *PlayerSession) ApprovedTotal() int64 {
	var total int64
	for _, r := range p.BuyInRequests {
		if r.Status == BuyInApproved {
			total += r.Amount
		}
	}
	return total
}

// Transfer is one settlement instruction: payer sends amount to receiver.
// Amounts are currency units rounded to 2 decimals. The JSON shape is
// consumed by other systems; do not rename keys.
type Transfer struct {
	PayerID    uuid.UUID `json:"payerId"`
	ReceiverID uuid.UUID `json:"receiverId"`
	Amount     float64   `json:"amountInCurrencyUnits"`
}

// GameSession is the aggregate root for one live poker session.
type GameSession struct {
	ID                  uuid.UUID       `json:"id"`
	ClubID              uuid.UUID       `json:"clubId"`
	IsActive            bool            `json:"isActive"`
	Players             []PlayerSession `json:"players"`
	SettlementTransfers []Transfer      `json:"settlementTransfers"`
	CreatedAt           time.Time       `json:"createdAt"`

	// Version is the optimistic-concurrency token. Bumped on every persisted
	// mutation; a save against a stale version fails with ConcurrencyConflict.
	Version int64 `json:"-"`
}

// Player returns the session entry for the given user, or nil.
func (g *GameSession) Player(userID uuid.UUID) *PlayerSession {
	for i := range g.Players {
		if g.Players[i].UserID == userID {
			return &g.Players[i]
		}
	}
	return nil
}

// TotalChipsInPot is the sum of approved buy-ins across all players.
func (g *GameSession) TotalChipsInPot() int64 {
	var total int64
	for i := range g.Players {
		total += g.Players[i].TotalApprovedBuyIn
	}
	return total
}

// TotalCashedOut is the sum of recorded cash-outs.
func (g *GameSession) TotalCashedOut() int64 {
	var total int64
	for i := range g.Players {
		if g.Players[i].IsCashedOut && g.Players[i].CashOut != nil {
			total += *g.Players[i].CashOut
		}
	}
	return total
}

// Club is the tenant record. ActiveSessionID enforces the one-active-session
// invariant at creation time.
type Club struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	ChipsPerUnit    int64      `json:"chipsPerUnit"` // chips per currency unit
	ActiveSessionID *uuid.UUID `json:"activeSessionId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// DefaultChipsPerUnit is the exchange rate used when a club has none set.
const DefaultChipsPerUnit int64 = 100

// Rate returns the club's exchange rate, falling back to the default.
func (c *Club) Rate() int64 {
	if c == nil || c.ChipsPerUnit <= 0 {
		return DefaultChipsPerUnit
	}
	return c.ChipsPerUnit
}

// User is a club member resolvable to a display name. The core treats the id
// as an opaque key; names are for reporting only.
type User struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AdminUser holds operator credentials.
type AdminUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
