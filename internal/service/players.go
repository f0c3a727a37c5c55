// Package service wires player identity resolution and trend computation
// together behind the transport layer.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fortuna/apollo/internal/cache"
	"github.com/fortuna/apollo/internal/ingest/nbastats"
)

const (
	// nameCacheSize bounds the in-process name-to-ID pool.
	nameCacheSize = 512

	// nameTTL keeps resolved identities for a week; player IDs are stable,
	// the TTL only exists so renames and corrections eventually surface.
	nameTTL = 7 * 24 * time.Hour

	playerKeyPrefix = "apollo:player:"
)

// Resolver turns a display name into the upstream player ID.
type Resolver interface {
	ResolvePlayer(ctx context.Context, name, teamHint string) (int64, error)
}

// IdentityRepo persists resolved identities so restarts and upstream outages
// do not force a re-search for every known player.
type IdentityRepo interface {
	Upsert(ctx context.Context, playerID int64, name, normalized string) error
	GetIDByNormalizedName(ctx context.Context, normalized string) (int64, error)
}

// PlayerService resolves player names to IDs through a layered lookup:
// in-process LRU, then Redis, then the upstream search, with the database as
// a fallback when upstream cannot find the player.
type PlayerService struct {
	resolver Resolver
	names    *cache.LRU[string, cache.Envelope[int64]]
	redis    *cache.RedisStore
	repo     IdentityRepo
	log      zerolog.Logger
	now      func() time.Time
}

// NewPlayerService creates a player service. The Redis store and identity
// repo are optional; nil disables that layer.
func NewPlayerService(resolver Resolver, redis *cache.RedisStore, repo IdentityRepo, log zerolog.Logger) *PlayerService {
	return &PlayerService{
		resolver: resolver,
		names:    cache.NewLRU[string, cache.Envelope[int64]](nameCacheSize),
		redis:    redis,
		repo:     repo,
		log:      log.With().Str("component", "players").Logger(),
		now:      time.Now,
	}
}

// Resolve returns the player ID for a display name. Lookups are keyed by the
// normalized form so "Jaylen Brown Jr." and "jaylen brown" share one entry.
func (s *PlayerService) Resolve(ctx context.Context, name, teamHint string) (int64, error) {
	normalized := nbastats.NormalizeName(name)
	if normalized == "" {
		return 0, fmt.Errorf("resolving player: empty name")
	}

	if env, ok := s.names.Get(normalized); ok && !env.Expired(s.now()) {
		return env.Value, nil
	}

	if s.redis != nil {
		id, ok, err := cache.GetJSON[int64](ctx, s.redis, playerKeyPrefix+normalized)
		if err != nil {
			s.log.Warn().Err(err).Str("player", normalized).Msg("redis identity lookup failed")
		} else if ok {
			s.names.Set(normalized, cache.Wrap(id, nameTTL))
			return id, nil
		}
	}

	id, err := s.resolver.ResolvePlayer(ctx, name, teamHint)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		if s.repo != nil {
			if stored, repoErr := s.repo.GetIDByNormalizedName(ctx, normalized); repoErr == nil {
				s.log.Debug().Str("player", normalized).Msg("resolved from identity store after upstream miss")
				s.names.Set(normalized, cache.Wrap(stored, nameTTL))
				return stored, nil
			}
		}
		return 0, fmt.Errorf("resolving player %q: %w", name, err)
	}

	s.remember(ctx, id, name, normalized)
	return id, nil
}

// remember writes a fresh identity through every configured layer. Failures
// are logged, never surfaced: the resolution itself already succeeded.
func (s *PlayerService) remember(ctx context.Context, id int64, name, normalized string) {
	s.names.Set(normalized, cache.Wrap(id, nameTTL))

	if s.redis != nil {
		if err := cache.SetJSON(ctx, s.redis, playerKeyPrefix+normalized, id, nameTTL); err != nil {
			s.log.Warn().Err(err).Str("player", normalized).Msg("caching identity in redis failed")
		}
	}
	if s.repo != nil {
		if err := s.repo.Upsert(ctx, id, name, normalized); err != nil {
			s.log.Warn().Err(err).Str("player", normalized).Msg("persisting identity failed")
		}
	}
}
