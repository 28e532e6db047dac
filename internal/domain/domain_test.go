package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"op@club.example", "a.b+tag@sub.domain.io"}
	for _, e := range valid {
		assert.NoError(t, ValidateEmail(e), e)
	}
	invalid := []string{"", "noat.example", "a@", "@b.c", "a b@c.d"}
	for _, e := range invalid {
		assert.Error(t, ValidateEmail(e), e)
	}
}

func TestChipValidators(t *testing.T) {
	assert.NoError(t, ValidatePositiveChips(1))
	assert.Error(t, ValidatePositiveChips(0))
	assert.Error(t, ValidatePositiveChips(-1))

	assert.NoError(t, ValidateNonNegativeChips(0))
	assert.NoError(t, ValidateNonNegativeChips(100))
	assert.Error(t, ValidateNonNegativeChips(-1))
}

func TestAppError(t *testing.T) {
	t.Run("wraps its cause", func(t *testing.T) {
		cause := errors.New("dial failed")
		appErr := ErrInternal("saving session", cause)
		assert.ErrorIs(t, appErr, cause)
		assert.Contains(t, appErr.Error(), "saving session")
	})

	t.Run("status codes follow the error class", func(t *testing.T) {
		assert.Equal(t, 404, ErrNotFound("game session", "x").Status)
		assert.Equal(t, 400, ErrValidation("bad").Status)
		assert.Equal(t, 409, ErrConcurrencyConflict("x").Status)
		assert.Equal(t, 400, ErrExceedsPot(10, 5).Status)
		assert.Equal(t, 400, ErrPotOverdrawn(10, 5).Status)
		assert.Equal(t, 409, ErrIncompleteCashOut([]string{"a"}).Status)
		assert.Equal(t, 500, ErrInvariantViolation("drift").Status)
	})
}

func TestClubRate(t *testing.T) {
	assert.Equal(t, DefaultChipsPerUnit, (*Club)(nil).Rate())
	assert.Equal(t, DefaultChipsPerUnit, (&Club{}).Rate())
	assert.Equal(t, int64(20), (&Club{ChipsPerUnit: 20}).Rate())
}

func TestApprovedTotal(t *testing.T) {
	p := PlayerSession{
		BuyInRequests: []BuyInRequest{
			{ID: uuid.New(), Amount: 100, Status: BuyInApproved},
			{ID: uuid.New(), Amount: 50, Status: BuyInPending},
			{ID: uuid.New(), Amount: 25, Status: BuyInRejected},
			{ID: uuid.New(), Amount: 200, Status: BuyInApproved},
		},
	}
	assert.Equal(t, int64(300), p.ApprovedTotal())
}

func TestOutboxDrafts(t *testing.T) {
	g := &GameSession{ID: uuid.New(), ClubID: uuid.New(), IsActive: true}

	d := NewGameCreatedEvent(g)
	assert.Equal(t, EventGameCreated, d.EventType)
	assert.Equal(t, AggregateGame, d.AggregateType)
	assert.Equal(t, g.ID.String(), d.AggregateID)
	require.NotEmpty(t, d.Payload)
	assert.Contains(t, string(d.Payload), g.ID.String())
}
