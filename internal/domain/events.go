package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

func draft(aggType AggregateType, aggID string, evtType EventType, payload interface{}) OutboxDraft {
	body, _ := json.Marshal(payload)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: aggType,
		AggregateID:   aggID,
		EventType:     evtType,
		PartitionKey:  aggID,
		Headers:       json.RawMessage(`{}`),
		Payload:       body,
		OccurredAt:    time.Now(),
	}
}

// NewGameCreatedEvent announces a new session for a club.
func NewGameCreatedEvent(g *GameSession) OutboxDraft {
	return draft(AggregateGame, g.ID.String(), EventGameCreated, map[string]interface{}{
		"game_id":      g.ID.String(),
		"club_id":      g.ClubID.String(),
		"player_count": len(g.Players),
		"pot_chips":    g.TotalChipsInPot(),
	})
}

// NewBuyInRequestedEvent carries what the notifier needs: player, amount, time.
func NewBuyInRequestedEvent(gameID uuid.UUID, userID uuid.UUID, playerName string, amount int64, at time.Time) OutboxDraft {
	return draft(AggregateGame, gameID.String(), EventBuyInRequested, map[string]interface{}{
		"game_id":      gameID.String(),
		"user_id":      userID.String(),
		"player_name":  playerName,
		"amount":       amount,
		"requested_at": at,
	})
}

// NewBuyInResolvedEvent announces an approval or rejection.
func NewBuyInResolvedEvent(gameID, userID, requestID uuid.UUID, approved bool, amount int64) OutboxDraft {
	evtType := EventBuyInApproved
	if !approved {
		evtType = EventBuyInRejected
	}
	return draft(AggregateGame, gameID.String(), evtType, map[string]interface{}{
		"game_id":    gameID.String(),
		"user_id":    userID.String(),
		"request_id": requestID.String(),
		"amount":     amount,
	})
}

// NewJoinRequestedEvent announces a player joining a session.
func NewJoinRequestedEvent(gameID, userID uuid.UUID, playerName string, initialBuyIn int64, at time.Time) OutboxDraft {
	return draft(AggregateGame, gameID.String(), EventJoinRequested, map[string]interface{}{
		"game_id":        gameID.String(),
		"user_id":        userID.String(),
		"player_name":    playerName,
		"initial_buy_in": initialBuyIn,
		"requested_at":   at,
	})
}

// NewPlayerCashedOutEvent announces a mid-session cash-out.
func NewPlayerCashedOutEvent(gameID, userID uuid.UUID, amount, netProfit int64) OutboxDraft {
	return draft(AggregateGame, gameID.String(), EventPlayerCashedOut, map[string]interface{}{
		"game_id":    gameID.String(),
		"user_id":    userID.String(),
		"amount":     amount,
		"net_profit": netProfit,
	})
}

// NewGameEndedEvent announces session closure with the chip reconciliation.
func NewGameEndedEvent(g *GameSession, potChips, cashedOutChips int64) OutboxDraft {
	return draft(AggregateGame, g.ID.String(), EventGameEnded, map[string]interface{}{
		"game_id":          g.ID.String(),
		"club_id":          g.ClubID.String(),
		"pot_chips":        potChips,
		"cashed_out_chips": cashedOutChips,
		"unaccounted":      potChips - cashedOutChips,
	})
}

// NewSettlementComputedEvent carries the full transfer list.
func NewSettlementComputedEvent(g *GameSession) OutboxDraft {
	return draft(AggregateGame, g.ID.String(), EventSettlementComputed, map[string]interface{}{
		"game_id":   g.ID.String(),
		"club_id":   g.ClubID.String(),
		"transfers": g.SettlementTransfers,
	})
}
