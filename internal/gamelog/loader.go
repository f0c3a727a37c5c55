// Package gamelog loads and merges per-player game logs across the two most
// recent seasons and both game types, coalescing concurrent fetches and
// caching both the per-window and merged results in bounded LRU pools.
package gamelog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/fortuna/apollo/internal/cache"
	"github.com/fortuna/apollo/internal/coalesce"
	"github.com/fortuna/apollo/internal/model"
	"github.com/fortuna/apollo/internal/season"
)

const (
	// seasonPoolSize bounds the (player, season, game type) window cache.
	seasonPoolSize = 100
	// mergedPoolSize bounds the merged "all" log cache.
	mergedPoolSize = 50

	defaultListTTL = 30 * time.Minute
)

// Provider is the upstream game-log source.
type Provider interface {
	FetchSeasonLog(ctx context.Context, playerID int64, seasonYear int, gameType model.GameType) ([]model.GameLogEntry, error)
}

// WindowKey identifies one cached (player, season year, game type) window.
type WindowKey struct {
	PlayerID   int64
	SeasonYear int
	GameType   model.GameType
}

func (k WindowKey) String() string {
	return fmt.Sprintf("%d:%d:%s", k.PlayerID, k.SeasonYear, k.GameType)
}

// Loader produces merged, deduplicated, newest-first game logs.
type Loader struct {
	provider Provider
	seasons  *cache.LRU[WindowKey, cache.Envelope[[]model.GameLogEntry]]
	merged   *cache.LRU[string, cache.Envelope[[]model.GameLogEntry]]
	flights  coalesce.Group[[]model.GameLogEntry]
	cal      season.Calendar
	listTTL  time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// NewLoader constructs a loader with fresh cache pools. Caches are explicit
// per-loader state, not process globals, so tests get isolated instances.
func NewLoader(provider Provider, cal season.Calendar, log zerolog.Logger) *Loader {
	return &Loader{
		provider: provider,
		seasons:  cache.NewLRU[WindowKey, cache.Envelope[[]model.GameLogEntry]](seasonPoolSize),
		merged:   cache.NewLRU[string, cache.Envelope[[]model.GameLogEntry]](mergedPoolSize),
		cal:      cal,
		listTTL:  defaultListTTL,
		log:      log.With().Str("component", "gamelog").Logger(),
		now:      time.Now,
	}
}

// Load returns the merged game log for a player: current and previous
// season, regular season and playoffs, deduplicated and sorted newest
// first. A window that fails after retries is skipped so one bad fetch does
// not blank the whole log; the load only fails when nothing was fetched.
func (l *Loader) Load(ctx context.Context, playerID int64) ([]model.GameLogEntry, error) {
	now := l.now()
	currentYear := l.cal.Year(now)

	mergedKey := fmt.Sprintf("%d:%d:all", playerID, currentYear)
	if env, ok := l.merged.Get(mergedKey); ok && !env.Expired(now) {
		return env.Value, nil
	}

	var combined []model.GameLogEntry
	var lastErr error
	for _, year := range []int{currentYear, currentYear - 1} {
		for _, gameType := range []model.GameType{model.GameTypeRegular, model.GameTypePlayoffs} {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			key := WindowKey{PlayerID: playerID, SeasonYear: year, GameType: gameType}
			rows, err := l.window(ctx, key)
			if err != nil {
				lastErr = err
				l.log.Warn().Err(err).Stringer("window", key).Msg("season window unavailable")
				continue
			}
			combined = append(combined, rows...)
		}
	}

	if len(combined) == 0 && lastErr != nil {
		return nil, lastErr
	}

	mergedLog := Merge(combined)
	l.merged.Set(mergedKey, cache.Wrap(mergedLog, l.listTTL))
	return mergedLog, nil
}

// window serves one (player, season, game type) window from cache, joining
// any in-flight fetch for the same key instead of duplicating it.
func (l *Loader) window(ctx context.Context, key WindowKey) ([]model.GameLogEntry, error) {
	if env, ok := l.seasons.Get(key); ok && !env.Expired(l.now()) {
		return env.Value, nil
	}

	return l.flights.Do(key.String(), func() ([]model.GameLogEntry, error) {
		// The fetch outlives any single caller: one consumer abandoning its
		// request must not cancel the flight other waiters share.
		fctx := context.WithoutCancel(ctx)

		rows, err := l.provider.FetchSeasonLog(fctx, key.PlayerID, key.SeasonYear, key.GameType)
		if err != nil {
			return nil, err
		}
		l.seasons.Set(key, cache.Wrap(rows, l.listTTL))
		return rows, nil
	})
}

// Merge deduplicates entries by game ID (first occurrence wins), drops rows
// lacking both a date and a team, and sorts the rest newest first. Merging
// the same page twice yields each game exactly once.
func Merge(entries []model.GameLogEntry) []model.GameLogEntry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]model.GameLogEntry, 0, len(entries))
	for _, e := range entries {
		if e.GameDate.IsZero() && e.PlayerTeam == "" {
			continue
		}
		if e.GameID != "" {
			if _, dup := seen[e.GameID]; dup {
				continue
			}
			seen[e.GameID] = struct{}{}
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GameDate.After(out[j].GameDate)
	})
	return out
}
