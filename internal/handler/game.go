package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/homegame/chipledger/internal/auth"
	"github.com/homegame/chipledger/internal/domain"
	"github.com/homegame/chipledger/internal/identity"
	"github.com/homegame/chipledger/internal/service"
	"github.com/homegame/chipledger/internal/session"
)

// GameHandler exposes the operator commands on game sessions.
type GameHandler struct {
	games    *service.GameService
	resolver *identity.Resolver
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(games *service.GameService, resolver *identity.Resolver) *GameHandler {
	return &GameHandler{games: games, resolver: resolver}
}

type createGameInput struct {
	ClubID uuid.UUID              `json:"clubId"`
	Stakes []session.InitialStake `json:"stakes"`
}

// CreateGame handles POST /games.
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var input createGameInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if input.ClubID == uuid.Nil {
		RespondError(w, domain.ErrValidation("clubId is required"))
		return
	}

	g, err := h.games.CreateGame(r.Context(), input.ClubID, input.Stakes)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, g)
}

// GetGame handles GET /games/{gameID}.
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathUUID(r, "gameID")
	if err != nil {
		RespondError(w, err)
		return
	}

	g, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, g)
}

// GetActiveGame handles GET /games/active?club=<uuid>.
func (h *GameHandler) GetActiveGame(w http.ResponseWriter, r *http.Request) {
	clubID, err := uuid.Parse(r.URL.Query().Get("club"))
	if err != nil {
		RespondError(w, domain.ErrValidation("club query parameter must be a valid uuid"))
		return
	}

	g, err := h.games.GetActiveGame(r.Context(), clubID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, g)
}

type addPlayerInput struct {
	UserID       uuid.UUID `json:"userId"`
	InitialBuyIn int64     `json:"initialBuyIn"`
}

// AddPlayer handles POST /games/{gameID}/players.
func (h *GameHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathUUID(r, "gameID")
	if err != nil {
		RespondError(w, err)
		return
	}
	var input addPlayerInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if input.UserID == uuid.Nil {
		RespondError(w, domain.ErrValidation("userId is required"))
		return
	}

	g, err := h.games.AddPlayer(r.Context(), gameID, input.UserID, input.InitialBuyIn)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, g)
}

// RemovePlayer handles DELETE /games/{gameID}/players/{userID}.
func (h *GameHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	gameID, userID, err := pathGameAndUser(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	g, err := h.games.RemovePlayer(r.Context(), gameID, userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, g)
}

type buyInInput struct {
	Amount int64 `json:"amount"`
}

// RequestBuyIn handles POST /games/{gameID}/players/{userID}/buyins.
// Players may only request for themselves; operators for anyone.
func (h *GameHandler) RequestBuyIn(w http.ResponseWriter, r *http.Request) {
	gameID, userID, err := pathGameAndUser(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil &&
		claims.Realm == auth.RealmPlayer && claims.Subject != userID.String() {
		RespondError(w, domain.ErrForbidden("players may only request their own buy-ins"))
		return
	}

	var input buyInInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	g, err := h.games.RequestBuyIn(r.Context(), gameID, userID, input.Amount)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, g)
}

// ApproveBuyIn handles POST /games/{gameID}/players/{userID}/buyins/{requestID}/approve.
func (h *GameHandler) ApproveBuyIn(w http.ResponseWriter, r *http.Request) {
	h.resolveBuyIn(w, r, true)
}

// RejectBuyIn handles POST /games/{gameID}/players/{userID}/buyins/{requestID}/reject.
func (h *GameHandler) RejectBuyIn(w http.ResponseWriter, r *http.Request) {
	h.resolveBuyIn(w, r, false)
}

func (h *GameHandler) resolveBuyIn(w http.ResponseWriter, r *http.Request, approve bool) {
	gameID, userID, err := pathGameAndUser(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	requestID, err := pathUUID(r, "requestID")
	if err != nil {
		RespondError(w, err)
		return
	}

	var g *domain.GameSession
	if approve {
		g, err = h.games.ApproveBuyIn(r.Context(), gameID, userID, requestID)
	} else {
		g, err = h.games.RejectBuyIn(r.Context(), gameID, userID, requestID)
	}
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, g)
}

type adminBuyInInput struct {
	UserID uuid.UUID `json:"userId"`
	Amount int64     `json:"amount"`
}

// AdminAddBuyIn handles POST /games/{gameID}/buyins/admin.
func (h *GameHandler) AdminAddBuyIn(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathUUID(r, "gameID")
	if err != nil {
		RespondError(w, err)
		return
	}
	var input adminBuyInInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	g, err := h.games.AdminAddBuyIn(r.Context(), gameID, input.UserID, input.Amount)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, g)
}

// CancelBuyIn handles DELETE /games/{gameID}/players/{userID}/buyins/{requestID}.
func (h *GameHandler) CancelBuyIn(w http.ResponseWriter, r *http.Request) {
	gameID, userID, err := pathGameAndUser(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	requestID, err := pathUUID(r, "requestID")
	if err != nil {
		RespondError(w, err)
		return
	}

	g, err := h.games.CancelBuyIn(r.Context(), gameID, userID, requestID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, g)
}

type cashOutInput struct {
	Amount int64 `json:"amount"`
}

// CashOutPlayer handles POST /games/{gameID}/players/{userID}/cashout.
func (h *GameHandler) CashOutPlayer(w http.ResponseWriter, r *http.Request) {
	gameID, userID, err := pathGameAndUser(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var input cashOutInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	g, err := h.games.CashOutPlayer(r.Context(), gameID, userID, input.Amount)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, g)
}

type endGameInput struct {
	CashOuts map[string]int64 `json:"cashOuts"`
}

// EndGame handles POST /games/{gameID}/end. Keys of cashOuts must be valid
// player uuids; unknown or malformed keys are rejected.
func (h *GameHandler) EndGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathUUID(r, "gameID")
	if err != nil {
		RespondError(w, err)
		return
	}
	var input endGameInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	cashOuts := make(map[uuid.UUID]int64, len(input.CashOuts))
	for key, amount := range input.CashOuts {
		id, err := uuid.Parse(key)
		if err != nil {
			RespondError(w, domain.ErrValidation("cashOuts key is not a valid uuid: "+key))
			return
		}
		cashOuts[id] = amount
	}

	g, err := h.games.EndGame(r.Context(), gameID, cashOuts)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, g)
}

// CalculateSettlement handles POST /games/{gameID}/settlement.
func (h *GameHandler) CalculateSettlement(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathUUID(r, "gameID")
	if err != nil {
		RespondError(w, err)
		return
	}

	g, err := h.games.CalculateSettlement(r.Context(), gameID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, g)
}

type transferView struct {
	domain.Transfer
	PayerName    string `json:"payerName"`
	ReceiverName string `json:"receiverName"`
}

// GetSettlement handles GET /games/{gameID}/settlement, returning transfers
// with resolved display names.
func (h *GameHandler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathUUID(r, "gameID")
	if err != nil {
		RespondError(w, err)
		return
	}

	g, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		RespondError(w, err)
		return
	}

	ids := make([]uuid.UUID, 0, len(g.SettlementTransfers)*2)
	for _, t := range g.SettlementTransfers {
		ids = append(ids, t.PayerID, t.ReceiverID)
	}
	names := h.resolver.DisplayNames(r.Context(), ids)

	views := make([]transferView, 0, len(g.SettlementTransfers))
	for _, t := range g.SettlementTransfers {
		views = append(views, transferView{
			Transfer:     t,
			PayerName:    names[t.PayerID],
			ReceiverName: names[t.ReceiverID],
		})
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"gameId":    g.ID,
		"isActive":  g.IsActive,
		"transfers": views,
	})
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, domain.ErrValidation(param + " must be a valid uuid")
	}
	return id, nil
}

func pathGameAndUser(r *http.Request) (gameID, userID uuid.UUID, err error) {
	if gameID, err = pathUUID(r, "gameID"); err != nil {
		return
	}
	userID, err = pathUUID(r, "userID")
	return
}
