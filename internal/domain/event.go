package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventGameCreated        EventType = "club.game.created"
	EventGameEnded          EventType = "club.game.ended"
	EventBuyInRequested     EventType = "club.buyin.requested"
	EventBuyInApproved      EventType = "club.buyin.approved"
	EventBuyInRejected      EventType = "club.buyin.rejected"
	EventJoinRequested      EventType = "club.player.join.requested"
	EventPlayerCashedOut    EventType = "club.player.cashedout"
	EventSettlementComputed EventType = "club.settlement.computed"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const AggregateGame AggregateType = "game"

// OutboxDraft is the payload written to the event_outbox table. Events are
// committed in the same transaction as the business mutation and published
// asynchronously; delivery is best-effort and never blocks the mutation.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     EventType       `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}
