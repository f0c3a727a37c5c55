package trends

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/apollo/internal/model"
	"github.com/fortuna/apollo/internal/season"
)

func day(n int) time.Time {
	// Descending n gives a newest-first log rooted in Jan 2026.
	return time.Date(2026, time.January, n, 0, 0, 0, 0, time.UTC)
}

func game(date time.Time, team, home, away string, minutes, points float64) model.GameLogEntry {
	return model.GameLogEntry{
		GameDate:   date,
		PlayerTeam: team,
		HomeTeam:   home,
		AwayTeam:   away,
		Minutes:    minutes,
		Points:     points,
	}
}

func ptr(v float64) *float64 { return &v }

func newTestAggregator() *Aggregator {
	return NewAggregator(season.Default())
}

func TestComputeStreakStopsAtFirstMiss(t *testing.T) {
	// Newest first: 10, 8, 2, 9 against a line of 5 is a streak of 2.
	log := []model.GameLogEntry{
		game(day(10), "MIL", "MIL", "BOS", 34, 10),
		game(day(8), "MIL", "CHI", "MIL", 34, 8),
		game(day(6), "MIL", "MIL", "NYK", 34, 2),
		game(day(4), "MIL", "MIA", "MIL", 34, 9),
	}

	rep, err := newTestAggregator().Compute(log, Request{
		Stat: model.StatPoints, Line: ptr(5), SeasonYear: 2025,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Streak)
}

func TestComputeExcludesGamesNotPlayed(t *testing.T) {
	log := []model.GameLogEntry{
		game(day(10), "MIL", "MIL", "BOS", 34, 30),
		game(day(8), "MIL", "CHI", "MIL", 0, 0), // DNP
		game(day(6), "MIL", "MIL", "NYK", 34, 20),
	}

	rep, err := newTestAggregator().Compute(log, Request{Stat: model.StatPoints, SeasonYear: 2025})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.GamesSampled)
	require.NotNil(t, rep.Last5Avg)
	assert.InDelta(t, 25.0, *rep.Last5Avg, 1e-9, "DNP rows must not drag the average toward zero")
}

func TestComputeWithoutLineOmitsHitRatesAndStreak(t *testing.T) {
	log := []model.GameLogEntry{
		game(day(10), "MIL", "MIL", "BOS", 34, 30),
		game(day(8), "MIL", "CHI", "MIL", 34, 20),
	}

	rep, err := newTestAggregator().Compute(log, Request{Stat: model.StatPoints, SeasonYear: 2025})
	require.NoError(t, err)

	assert.NotNil(t, rep.Last5Avg)
	assert.Nil(t, rep.Last5HitRate)
	assert.Nil(t, rep.Last10HitRate)
	assert.Nil(t, rep.SeasonHitRate)
	assert.Nil(t, rep.H2HHitRate)
	assert.Zero(t, rep.Streak)
}

func TestComputeTreatsNonFiniteLineAsAbsent(t *testing.T) {
	log := []model.GameLogEntry{
		game(day(10), "MIL", "MIL", "BOS", 34, 30),
	}

	rep, err := newTestAggregator().Compute(log, Request{
		Stat: model.StatPoints, Line: ptr(math.NaN()), SeasonYear: 2025,
	})
	require.NoError(t, err)
	assert.Nil(t, rep.Line)
	assert.Nil(t, rep.Last5HitRate)
}

func TestComputeHitRatesKeepSampleSize(t *testing.T) {
	log := []model.GameLogEntry{
		game(day(10), "MIL", "MIL", "BOS", 34, 30),
		game(day(8), "MIL", "CHI", "MIL", 34, 10),
		game(day(6), "MIL", "MIL", "NYK", 34, 25),
	}

	rep, err := newTestAggregator().Compute(log, Request{
		Stat: model.StatPoints, Line: ptr(20.5), SeasonYear: 2025,
	})
	require.NoError(t, err)
	require.NotNil(t, rep.Last5HitRate)
	assert.Equal(t, model.HitRate{Hits: 2, Total: 3}, *rep.Last5HitRate)
}

func TestComputeHeadToHeadSurvivesMidSeasonTrade(t *testing.T) {
	// Traded from LAL to BOS mid-season. Both earlier games against BOS were
	// played as a Laker; the opponent must come from each row, not from the
	// current roster, so the BOS head-to-head still counts both.
	log := []model.GameLogEntry{
		game(day(20), "BOS", "BOS", "MIA", 34, 18), // after the trade
		game(day(15), "LAL", "BOS", "LAL", 34, 25),
		game(day(10), "LAL", "LAL", "BOS", 34, 31),
		game(day(5), "LAL", "LAL", "DEN", 34, 12),
	}

	rep, err := newTestAggregator().Compute(log, Request{
		Stat: model.StatPoints, Opponent: "BOS", TeamHint: "BOS", SeasonYear: 2025,
	})
	require.NoError(t, err)
	require.NotNil(t, rep.H2HAvg)
	assert.InDelta(t, 28.0, *rep.H2HAvg, 1e-9)
}

func TestComputeHeadToHeadCapsAtSixMeetings(t *testing.T) {
	var log []model.GameLogEntry
	for i := 0; i < 8; i++ {
		log = append(log, game(day(28-2*i), "MIL", "MIL", "BOS", 34, float64(10+i)))
	}

	rep, err := newTestAggregator().Compute(log, Request{
		Stat: model.StatPoints, Opponent: "BOS", TeamHint: "MIL", Line: ptr(0), SeasonYear: 2025,
	})
	require.NoError(t, err)
	require.NotNil(t, rep.H2HHitRate)
	assert.Equal(t, 6, rep.H2HHitRate.Total)
	require.NotNil(t, rep.H2HAvg)
	// Six most recent meetings: 10..15.
	assert.InDelta(t, 12.5, *rep.H2HAvg, 1e-9)
}

func TestComputeReconcilesSwappedMatchupHints(t *testing.T) {
	// Caller reversed the matchup: the log shows the player suits up for MIL,
	// yet "MIL" arrived as the opponent. The hints are swapped so the
	// head-to-head window is against BOS, not empty.
	log := []model.GameLogEntry{
		game(day(10), "MIL", "MIL", "BOS", 34, 30),
		game(day(8), "MIL", "BOS", "MIL", 34, 20),
		game(day(6), "MIL", "MIL", "NYK", 34, 40),
	}

	rep, err := newTestAggregator().Compute(log, Request{
		Stat: model.StatPoints, Opponent: "MIL", TeamHint: "BOS", SeasonYear: 2025,
	})
	require.NoError(t, err)
	assert.Equal(t, "BOS", rep.Opponent)
	require.NotNil(t, rep.H2HAvg)
	assert.InDelta(t, 25.0, *rep.H2HAvg, 1e-9)
}

func TestComputeSeasonWindowHonorsRollover(t *testing.T) {
	// A late-September game belongs to the previous season year; October
	// starts the new one.
	sep := time.Date(2025, time.September, 28, 0, 0, 0, 0, time.UTC)
	oct := time.Date(2025, time.October, 25, 0, 0, 0, 0, time.UTC)
	log := []model.GameLogEntry{
		game(oct, "MIL", "MIL", "BOS", 34, 40),
		game(sep, "MIL", "MIL", "BOS", 34, 10),
	}

	rep, err := newTestAggregator().Compute(log, Request{Stat: model.StatPoints, SeasonYear: 2025})
	require.NoError(t, err)
	require.NotNil(t, rep.SeasonAvg)
	assert.InDelta(t, 40.0, *rep.SeasonAvg, 1e-9)
	require.NotNil(t, rep.Last5Avg)
	assert.InDelta(t, 25.0, *rep.Last5Avg, 1e-9, "recency windows span seasons")
}

func TestComputeCompositeStatSumsComponents(t *testing.T) {
	e := game(day(10), "MIL", "MIL", "BOS", 34, 20)
	e.Rebounds = 10
	e.Assists = 5

	rep, err := newTestAggregator().Compute([]model.GameLogEntry{e}, Request{
		Stat: model.StatPRA, Line: ptr(30.5), SeasonYear: 2025,
	})
	require.NoError(t, err)
	require.NotNil(t, rep.Last5Avg)
	assert.InDelta(t, 35.0, *rep.Last5Avg, 1e-9)
	assert.Equal(t, 1, rep.Streak)
}

func TestComputeEmptyLogReportsAbsence(t *testing.T) {
	rep, err := newTestAggregator().Compute(nil, Request{
		Stat: model.StatPoints, Line: ptr(20), SeasonYear: 2025,
	})
	require.NoError(t, err)
	assert.Zero(t, rep.GamesSampled)
	assert.Nil(t, rep.Last5Avg)
	assert.Nil(t, rep.Last10Avg)
	assert.Nil(t, rep.SeasonAvg)
	assert.Nil(t, rep.H2HAvg)
	assert.Nil(t, rep.Last5HitRate)
	assert.Zero(t, rep.Streak)
}

func TestComputeRejectsUnknownStat(t *testing.T) {
	_, err := newTestAggregator().Compute(nil, Request{Stat: "dunks", SeasonYear: 2025})
	require.Error(t, err)
}
