package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/homegame/chipledger/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// GameRepository persists GameSession aggregates as whole documents with an
// optimistic-concurrency version column.
type GameRepository interface {
	// FindByID returns the full aggregate, or nil if absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.GameSession, error)

	// FindActiveByClub returns the club's active session, or nil.
	FindActiveByClub(ctx context.Context, db DBTX, clubID uuid.UUID) (*domain.GameSession, error)

	// Insert creates a new aggregate row at version 1.
	Insert(ctx context.Context, db DBTX, g *domain.GameSession) error

	// Save replaces the whole aggregate if the stored version still matches
	// g.Version, then bumps g.Version. A stale version fails with
	// ConcurrencyConflict and writes nothing.
	Save(ctx context.Context, db DBTX, g *domain.GameSession) error

	// DeactivateActiveForClub flips is_active off on any active session of
	// the club other than exceptID. Part of the one-active-session invariant.
	DeactivateActiveForClub(ctx context.Context, tx pgx.Tx, clubID, exceptID uuid.UUID) error
}

// ClubRepository provides access to clubs.
type ClubRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Club, error)
	Create(ctx context.Context, db DBTX, club *domain.Club) error

	// SetActiveSession updates the club's active-session pointer. Pass nil to
	// clear it.
	SetActiveSession(ctx context.Context, db DBTX, clubID uuid.UUID, sessionID *uuid.UUID) error
}

// UserRepository resolves userId references to club members.
type UserRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.User, error)
	Create(ctx context.Context, db DBTX, user *domain.User) error
}

// AdminUserRepository provides access to operator credentials.
type AdminUserRepository interface {
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.AdminUser, error)
	Create(ctx context.Context, db DBTX, user *domain.AdminUser) error
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the
	// business mutation).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events for the outbox poller.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error)

	// MarkPublished stamps events as published.
	MarkPublished(ctx context.Context, db DBTX, eventIDs []uuid.UUID) error
}
