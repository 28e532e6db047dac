// Package identity resolves opaque user ids to display names for ledger and
// transfer reporting. The core state machine never depends on it.
package identity

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/homegame/chipledger/internal/repository"
)

const cacheTTL = 15 * time.Minute

// Resolver looks up display names with a Redis read-through cache in front of
// the users table. All cache failures are swallowed; an unresolvable id falls
// back to its string form.
type Resolver struct {
	users  repository.UserRepository
	db     repository.DBTX
	cache  *redis.Client
	logger *slog.Logger
}

// NewResolver creates a Resolver. cache may be nil to disable caching.
func NewResolver(users repository.UserRepository, db repository.DBTX, cache *redis.Client, logger *slog.Logger) *Resolver {
	return &Resolver{users: users, db: db, cache: cache, logger: logger}
}

// DisplayName resolves a user id to a display name.
func (r *Resolver) DisplayName(ctx context.Context, userID uuid.UUID) string {
	key := "chipledger:user:name:" + userID.String()

	if r.cache != nil {
		if name, err := r.cache.Get(ctx, key).Result(); err == nil && name != "" {
			return name
		} else if err != nil && err != redis.Nil {
			r.logger.Debug("name cache read failed", "user_id", userID, "error", err)
		}
	}

	user, err := r.users.FindByID(ctx, r.db, userID)
	if err != nil || user == nil {
		if err != nil {
			r.logger.Warn("resolve display name failed", "user_id", userID, "error", err)
		}
		return userID.String()
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, user.DisplayName, cacheTTL).Err(); err != nil {
			r.logger.Debug("name cache write failed", "user_id", userID, "error", err)
		}
	}
	return user.DisplayName
}

// DisplayNames resolves a batch of ids, deduplicating repeated ids so each
// one is looked up at most once.
func (r *Resolver) DisplayNames(ctx context.Context, userIDs []uuid.UUID) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(userIDs))
	for _, id := range userIDs {
		if _, ok := names[id]; ok {
			continue
		}
		names[id] = r.DisplayName(ctx, id)
	}
	return names
}
