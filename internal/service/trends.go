package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fortuna/apollo/internal/cache"
	"github.com/fortuna/apollo/internal/model"
	"github.com/fortuna/apollo/internal/season"
	"github.com/fortuna/apollo/internal/teams"
	"github.com/fortuna/apollo/internal/trends"
)

const (
	trendKeyPrefix = "apollo:trend:"
	reportTTL      = 30 * time.Minute
)

// LogLoader supplies the merged two-season game log for a player.
type LogLoader interface {
	Load(ctx context.Context, playerID int64) ([]model.GameLogEntry, error)
}

// SnapshotRepo persists computed reports for later inspection.
type SnapshotRepo interface {
	SaveSnapshot(ctx context.Context, report model.TrendReport) error
}

// TrendPublisher announces fresh reports to downstream consumers.
type TrendPublisher interface {
	PublishTrend(ctx context.Context, report model.TrendReport) error
}

// TrendRequest is one prop-trend question: a player, a statistic, and
// optionally the matchup and the betting line.
type TrendRequest struct {
	Player   string
	Stat     model.StatType
	Opponent string
	TeamHint string
	Line     *float64
}

// TrendService answers trend requests. Upstream failures degrade to an empty
// report rather than an error: a missing player or a dead stats feed is an
// absence of data, not a caller mistake.
type TrendService struct {
	players    *PlayerService
	loader     LogLoader
	aggregator *trends.Aggregator
	cal        season.Calendar
	redis      *cache.RedisStore
	snapshots  SnapshotRepo
	publisher  TrendPublisher
	log        zerolog.Logger
	now        func() time.Time
}

// NewTrendService creates a trend service. Redis, the snapshot repo and the
// publisher are optional; nil disables that layer.
func NewTrendService(players *PlayerService, loader LogLoader, cal season.Calendar, redis *cache.RedisStore, snapshots SnapshotRepo, publisher TrendPublisher, log zerolog.Logger) *TrendService {
	return &TrendService{
		players:    players,
		loader:     loader,
		aggregator: trends.NewAggregator(cal),
		cal:        cal,
		redis:      redis,
		snapshots:  snapshots,
		publisher:  publisher,
		log:        log.With().Str("component", "trends").Logger(),
		now:        time.Now,
	}
}

// RequestStats computes the trend report for one request. A malformed stat
// type is an error; anything that merely prevents gathering data (unknown
// player, upstream outage) yields an empty report so callers can render
// "no data" instead of failing. Context cancellation always propagates.
func (s *TrendService) RequestStats(ctx context.Context, req TrendRequest) (model.TrendReport, error) {
	empty := model.TrendReport{Player: req.Player, Stat: req.Stat, Opponent: req.Opponent, Line: req.Line}
	if _, err := trends.SelectorFor(req.Stat); err != nil {
		return empty, err
	}

	playerID, err := s.players.Resolve(ctx, req.Player, req.TeamHint)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return empty, ctxErr
		}
		s.log.Warn().Err(err).Str("player", req.Player).Msg("player unresolved, serving empty report")
		return empty, nil
	}

	key := s.reportKey(playerID, req)
	if s.redis != nil {
		cached, ok, err := cache.GetJSON[model.TrendReport](ctx, s.redis, key)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("redis report lookup failed")
		} else if ok {
			return cached, nil
		}
	}

	log, err := s.loader.Load(ctx, playerID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return empty, ctxErr
		}
		s.log.Warn().Err(err).Int64("player_id", playerID).Msg("game log unavailable, serving empty report")
		return empty, nil
	}

	report, err := s.aggregator.Compute(log, trends.Request{
		Stat:       req.Stat,
		Opponent:   req.Opponent,
		TeamHint:   req.TeamHint,
		Line:       req.Line,
		SeasonYear: s.cal.Year(s.now()),
	})
	if err != nil {
		return empty, fmt.Errorf("computing trend: %w", err)
	}
	report.Player = req.Player
	report.PlayerID = playerID

	s.store(ctx, key, report)
	return report, nil
}

// store spreads a fresh report to the cache, the snapshot table and the
// stream. All three are best effort.
func (s *TrendService) store(ctx context.Context, key string, report model.TrendReport) {
	if s.redis != nil {
		if err := cache.SetJSON(ctx, s.redis, key, report, reportTTL); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("caching report failed")
		}
	}
	if s.snapshots != nil {
		if err := s.snapshots.SaveSnapshot(ctx, report); err != nil {
			s.log.Warn().Err(err).Msg("saving trend snapshot failed")
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishTrend(ctx, report); err != nil {
			s.log.Warn().Err(err).Msg("publishing trend failed")
		}
	}
}

func (s *TrendService) reportKey(playerID int64, req TrendRequest) string {
	line := "none"
	if req.Line != nil {
		line = fmt.Sprintf("%g", *req.Line)
	}
	return fmt.Sprintf("%s%d:%s:%s:%s", trendKeyPrefix, playerID, req.Stat, teams.Normalize(req.Opponent), line)
}
