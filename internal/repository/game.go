package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/homegame/chipledger/internal/domain"
	"github.com/jackc/pgx/v5"
)

type gameRepo struct{}

// NewGameRepository returns a pgx-backed GameRepository.
func NewGameRepository() GameRepository {
	return &gameRepo{}
}

const gameColumns = `id, club_id, is_active, players, transfers, version, created_at`

func (r *gameRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.GameSession, error) {
	row := db.QueryRow(ctx, `
		SELECT `+gameColumns+`
		FROM game_sessions WHERE id = $1`, id)
	return scanGame(row)
}

func (r *gameRepo) FindActiveByClub(ctx context.Context, db DBTX, clubID uuid.UUID) (*domain.GameSession, error) {
	row := db.QueryRow(ctx, `
		SELECT `+gameColumns+`
		FROM game_sessions WHERE club_id = $1 AND is_active`, clubID)
	return scanGame(row)
}

func (r *gameRepo) Insert(ctx context.Context, db DBTX, g *domain.GameSession) error {
	players, transfers, err := marshalGame(g)
	if err != nil {
		return err
	}

	g.Version = 1
	_, err = db.Exec(ctx, `
		INSERT INTO game_sessions (id, club_id, is_active, players, transfers, version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		g.ID, g.ClubID, g.IsActive, players, transfers, g.Version, g.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert game session: %w", err)
	}
	return nil
}

func (r *gameRepo) Save(ctx context.Context, db DBTX, g *domain.GameSession) error {
	players, transfers, err := marshalGame(g)
	if err != nil {
		return err
	}

	tag, err := db.Exec(ctx, `
		UPDATE game_sessions
		SET is_active = $1, players = $2, transfers = $3, version = version + 1
		WHERE id = $4 AND version = $5`,
		g.IsActive, players, transfers, g.ID, g.Version)
	if err != nil {
		return fmt.Errorf("save game session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict(g.ID.String())
	}
	g.Version++
	return nil
}

func (r *gameRepo) DeactivateActiveForClub(ctx context.Context, tx pgx.Tx, clubID, exceptID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE game_sessions
		SET is_active = false, version = version + 1
		WHERE club_id = $1 AND is_active AND id <> $2`,
		clubID, exceptID)
	if err != nil {
		return fmt.Errorf("deactivate prior sessions: %w", err)
	}
	return nil
}

func marshalGame(g *domain.GameSession) (players, transfers []byte, err error) {
	players, err = json.Marshal(g.Players)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal players: %w", err)
	}
	if g.SettlementTransfers == nil {
		transfers = []byte(`[]`)
	} else if transfers, err = json.Marshal(g.SettlementTransfers); err != nil {
		return nil, nil, fmt.Errorf("marshal transfers: %w", err)
	}
	return players, transfers, nil
}

func scanGame(row pgx.Row) (*domain.GameSession, error) {
	var g domain.GameSession
	var players, transfers []byte
	err := row.Scan(&g.ID, &g.ClubID, &g.IsActive, &players, &transfers, &g.Version, &g.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan game session: %w", err)
	}

	if err := json.Unmarshal(players, &g.Players); err != nil {
		return nil, fmt.Errorf("unmarshal players: %w", err)
	}
	if err := json.Unmarshal(transfers, &g.SettlementTransfers); err != nil {
		return nil, fmt.Errorf("unmarshal transfers: %w", err)
	}
	return &g, nil
}
