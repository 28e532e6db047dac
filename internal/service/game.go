package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/homegame/chipledger/internal/domain"
	"github.com/homegame/chipledger/internal/identity"
	"github.com/homegame/chipledger/internal/repository"
	"github.com/homegame/chipledger/internal/session"
	"github.com/homegame/chipledger/internal/settlement"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GameService implements the operator commands on game session aggregates.
// Each command runs load → mutate → save-with-version-check → outbox inside
// one transaction. A version conflict is retried once against a fresh load
// before being surfaced to the caller.
type GameService struct {
	pool     *pgxpool.Pool
	games    repository.GameRepository
	clubs    repository.ClubRepository
	outbox   repository.OutboxRepository
	resolver *identity.Resolver
	logger   *slog.Logger
}

// NewGameService creates a GameService.
func NewGameService(
	pool *pgxpool.Pool,
	games repository.GameRepository,
	clubs repository.ClubRepository,
	outbox repository.OutboxRepository,
	resolver *identity.Resolver,
	logger *slog.Logger,
) *GameService {
	return &GameService{
		pool:     pool,
		games:    games,
		clubs:    clubs,
		outbox:   outbox,
		resolver: resolver,
		logger:   logger,
	}
}

// CreateGame starts a new session for a club with the given initial stakes.
// Any prior active session for the club is deactivated in the same
// transaction, and the club's active-session pointer is swapped to the new
// session. One active session per club, enforced at creation time.
func (s *GameService) CreateGame(ctx context.Context, clubID uuid.UUID, stakes []session.InitialStake) (*domain.GameSession, error) {
	club, err := s.findClub(ctx, clubID)
	if err != nil {
		return nil, err
	}

	g, err := session.New(club.ID, stakes)
	if err != nil {
		return nil, err
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.games.DeactivateActiveForClub(ctx, tx, club.ID, g.ID); err != nil {
			return err
		}
		if err := s.games.Insert(ctx, tx, g); err != nil {
			return err
		}
		if err := s.clubs.SetActiveSession(ctx, tx, club.ID, &g.ID); err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, domain.NewGameCreatedEvent(g))
	})
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	s.logger.Info("game created", "game_id", g.ID, "club_id", club.ID, "players", len(g.Players))
	return g, nil
}

// GetGame loads a session aggregate.
func (s *GameService) GetGame(ctx context.Context, gameID uuid.UUID) (*domain.GameSession, error) {
	g, err := s.games.FindByID(ctx, s.pool, gameID)
	if err != nil {
		return nil, domain.ErrInternal("load game", err)
	}
	if g == nil {
		return nil, domain.ErrNotFound("game session", gameID.String())
	}
	return g, nil
}

// GetActiveGame loads the club's active session, if any.
func (s *GameService) GetActiveGame(ctx context.Context, clubID uuid.UUID) (*domain.GameSession, error) {
	g, err := s.games.FindActiveByClub(ctx, s.pool, clubID)
	if err != nil {
		return nil, domain.ErrInternal("load active game", err)
	}
	if g == nil {
		return nil, domain.ErrNotFound("active game session for club", clubID.String())
	}
	return g, nil
}

// RequestBuyIn appends a pending buy-in request and notifies the operators.
func (s *GameService) RequestBuyIn(ctx context.Context, gameID, userID uuid.UUID, amount int64) (*domain.GameSession, error) {
	return s.mutate(ctx, gameID, func(g *domain.GameSession) ([]domain.OutboxDraft, error) {
		req, err := session.RequestBuyIn(g, userID, amount)
		if err != nil {
			return nil, err
		}
		name := s.resolver.DisplayName(ctx, userID)
		return []domain.OutboxDraft{
			domain.NewBuyInRequestedEvent(g.ID, userID, name, req.Amount, req.Timestamp),
		}, nil
	})
}

// ApproveBuyIn resolves a pending request to approved. Double approval is a
// benign no-op and emits no event.
func (s *GameService) ApproveBuyIn(ctx context.Context, gameID, userID, requestID uuid.UUID) (*domain.GameSession, error) {
	return s.mutate(ctx, gameID, func(g *domain.GameSession) ([]domain.OutboxDraft, error) {
		req, applied, err := session.ApproveBuyIn(g, userID, requestID)
		if err != nil {
			return nil, err
		}
		if !applied {
			return nil, nil
		}
		return []domain.OutboxDraft{
			domain.NewBuyInResolvedEvent(g.ID, userID, requestID, true, req.Amount),
		}, nil
	})
}

// RejectBuyIn resolves a pending request to rejected.
func (s *GameService) RejectBuyIn(ctx context.Context, gameID, userID, requestID uuid.UUID) (*domain.GameSession, error) {
	return s.mutate(ctx, gameID, func(g *domain.GameSession) ([]domain.OutboxDraft, error) {
		req, applied, err := session.RejectBuyIn(g, userID, requestID)
		if err != nil {
			return nil, err
		}
		if !applied {
			return nil, nil
		}
		return []domain.OutboxDraft{
			domain.NewBuyInResolvedEvent(g.ID, userID, requestID, false, req.Amount),
		}, nil
	})
}

// AdminAddBuyIn records an operator-entered cash buy-in, pre-approved.
func (s *GameService) AdminAddBuyIn(ctx context.Context, gameID, userID uuid.UUID, amount int64) (*domain.GameSession, error) {
	return s.mutate(ctx, gameID, func(g *domain.GameSession) ([]domain.OutboxDraft, error) {
		req, err := session.AdminAddBuyIn(g, userID, amount)
		if err != nil {
			return nil, err
		}
		return []domain.OutboxDraft{
			domain.NewBuyInResolvedEvent(g.ID, userID, req.ID, true, req.Amount),
		}, nil
	})
}

// CancelBuyIn voids a non-initial buy-in entry.
func (s *GameService) CancelBuyIn(ctx context.Context, gameID, userID, requestID uuid.UUID) (*domain.GameSession, error) {
	return s.mutate(ctx, gameID, func(g *domain.GameSession) ([]domain.OutboxDraft, error) {
		return nil, session.CancelBuyIn(g, userID, requestID)
	})
}

// AddPlayer joins a player mid-session with an initial buy-in.
func (s *GameService) AddPlayer(ctx context.Context, gameID, userID uuid.UUID, initialBuyIn int64) (*domain.GameSession, error) {
	return s.mutate(ctx, gameID, func(g *domain.GameSession) ([]domain.OutboxDraft, error) {
		if _, err := session.AddPlayer(g, userID, initialBuyIn); err != nil {
			return nil, err
		}
		name := s.resolver.DisplayName(ctx, userID)
		return []domain.OutboxDraft{
			domain.NewJoinRequestedEvent(g.ID, userID, name, initialBuyIn, time.Now()),
		}, nil
	})
}

// RemovePlayer erases a player and their buy-in history from an active
// session. Operator correction tool.
func (s *GameService) RemovePlayer(ctx context.Context, gameID, userID uuid.UUID) (*domain.GameSession, error) {
	return s.mutate(ctx, gameID, func(g *domain.GameSession) ([]domain.OutboxDraft, error) {
		return nil, session.RemovePlayer(g, userID)
	})
}

// CashOutPlayer records (or corrects) a player's table exit.
func (s *GameService) CashOutPlayer(ctx context.Context, gameID, userID uuid.UUID, amount int64) (*domain.GameSession, error) {
	return s.mutate(ctx, gameID, func(g *domain.GameSession) ([]domain.OutboxDraft, error) {
		p, err := session.CashOutPlayer(g, userID, amount)
		if err != nil {
			return nil, err
		}
		return []domain.OutboxDraft{
			domain.NewPlayerCashedOutEvent(g.ID, userID, amount, p.NetProfit),
		}, nil
	})
}

// EndGame closes the session with final chip counts and clears the club's
// active-session pointer. Settlement is a separate step; a settlement failure
// after this commit never reopens the session.
func (s *GameService) EndGame(ctx context.Context, gameID uuid.UUID, cashOuts map[uuid.UUID]int64) (*domain.GameSession, error) {
	var result *session.EndGameResult
	g, err := s.mutate(ctx, gameID, func(g *domain.GameSession) ([]domain.OutboxDraft, error) {
		r, err := session.EndGame(g, cashOuts)
		if err != nil {
			return nil, err
		}
		result = r
		return []domain.OutboxDraft{
			domain.NewGameEndedEvent(g, r.PotChips, r.TotalCashedOut),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if result.UnaccountedChips > 0 {
		s.logger.Warn("game ended with unaccounted chips",
			"game_id", g.ID, "pot", result.PotChips, "cashed_out", result.TotalCashedOut,
			"unaccounted", result.UnaccountedChips)
	}

	if err := s.clubs.SetActiveSession(ctx, s.pool, g.ClubID, nil); err != nil {
		// The closure is authoritative; a stale pointer is corrected on the
		// next CreateGame.
		s.logger.Error("clear active session pointer failed", "club_id", g.ClubID, "error", err)
	}
	return g, nil
}

// CalculateSettlement converts the closed session's net results to currency
// and computes the transfer set. Recomputation replaces the whole set.
func (s *GameService) CalculateSettlement(ctx context.Context, gameID uuid.UUID) (*domain.GameSession, error) {
	g, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	club, err := s.findClub(ctx, g.ClubID)
	if err != nil {
		return nil, err
	}
	rate := club.Rate()

	return s.mutate(ctx, gameID, func(g *domain.GameSession) ([]domain.OutboxDraft, error) {
		if _, err := settlement.Calculate(g, rate); err != nil {
			return nil, err
		}
		return []domain.OutboxDraft{domain.NewSettlementComputedEvent(g)}, nil
	})
}

// mutate is the single write path: load the aggregate, apply fn, verify pot
// integrity, save with the version check and insert any events, all in one
// transaction. One automatic retry on a version conflict.
func (s *GameService) mutate(ctx context.Context, gameID uuid.UUID, fn func(*domain.GameSession) ([]domain.OutboxDraft, error)) (*domain.GameSession, error) {
	const attempts = 2

	var g *domain.GameSession
	for attempt := 1; attempt <= attempts; attempt++ {
		var err error
		g, err = s.applyOnce(ctx, gameID, fn)
		if err == nil {
			return g, nil
		}
		var appErr *domain.AppError
		if errors.As(err, &appErr) && appErr.Code == "CONCURRENCY_CONFLICT" && attempt < attempts {
			s.logger.Warn("version conflict, retrying", "game_id", gameID, "attempt", attempt)
			continue
		}
		return nil, err
	}
	return g, nil
}

func (s *GameService) applyOnce(ctx context.Context, gameID uuid.UUID, fn func(*domain.GameSession) ([]domain.OutboxDraft, error)) (*domain.GameSession, error) {
	var g *domain.GameSession
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		g, err = s.games.FindByID(ctx, tx, gameID)
		if err != nil {
			return domain.ErrInternal("load game", err)
		}
		if g == nil {
			return domain.ErrNotFound("game session", gameID.String())
		}

		events, err := fn(g)
		if err != nil {
			return err
		}
		if err := session.CheckIntegrity(g); err != nil {
			return err
		}
		if err := s.games.Save(ctx, tx, g); err != nil {
			return err
		}
		for _, evt := range events {
			if err := s.outbox.Insert(ctx, tx, evt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GameService) findClub(ctx context.Context, clubID uuid.UUID) (*domain.Club, error) {
	club, err := s.clubs.FindByID(ctx, s.pool, clubID)
	if err != nil {
		return nil, domain.ErrInternal("load club", err)
	}
	if club == nil {
		return nil, domain.ErrNotFound("club", clubID.String())
	}
	return club, nil
}
