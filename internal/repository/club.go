package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/homegame/chipledger/internal/domain"
	"github.com/homegame/chipledger/internal/infra"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type clubRepo struct{}

// NewClubRepository returns a pgx-backed ClubRepository.
func NewClubRepository() ClubRepository {
	return &clubRepo{}
}

func (r *clubRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Club, error) {
	row := db.QueryRow(ctx, `
		SELECT id, name, chips_per_unit, active_session_id, created_at
		FROM clubs WHERE id = $1`, id)

	var c domain.Club
	var rate pgtype.Numeric
	var active *uuid.UUID
	err := row.Scan(&c.ID, &c.Name, &rate, &active, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan club: %w", err)
	}

	c.ChipsPerUnit, err = infra.NumericToInt64(rate)
	if err != nil {
		return nil, fmt.Errorf("convert chips_per_unit: %w", err)
	}
	c.ActiveSessionID = active
	return &c, nil
}

func (r *clubRepo) Create(ctx context.Context, db DBTX, club *domain.Club) error {
	_, err := db.Exec(ctx, `
		INSERT INTO clubs (id, name, chips_per_unit, active_session_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		club.ID, club.Name, infra.Int64ToNumeric(club.Rate()), club.ActiveSessionID, club.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert club: %w", err)
	}
	return nil
}

func (r *clubRepo) SetActiveSession(ctx context.Context, db DBTX, clubID uuid.UUID, sessionID *uuid.UUID) error {
	tag, err := db.Exec(ctx, `
		UPDATE clubs SET active_session_id = $1 WHERE id = $2`, sessionID, clubID)
	if err != nil {
		return fmt.Errorf("set active session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("club", clubID.String())
	}
	return nil
}
