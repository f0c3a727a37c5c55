package model

import "time"

// GameType distinguishes regular season game logs from playoff logs.
type GameType string

const (
	GameTypeRegular  GameType = "regular"
	GameTypePlayoffs GameType = "playoffs"
)

// StatType identifies the statistic a trend is computed over. Composite
// types (PRA, PR, PA, RA) are derived from their component fields per game,
// never read from the upstream row directly.
type StatType string

const (
	StatPoints    StatType = "points"
	StatRebounds  StatType = "rebounds"
	StatAssists   StatType = "assists"
	StatThrees    StatType = "threes"
	StatSteals    StatType = "steals"
	StatBlocks    StatType = "blocks"
	StatTurnovers StatType = "turnovers"
	StatPRA       StatType = "pra"
	StatPR        StatType = "pr"
	StatPA        StatType = "pa"
	StatRA        StatType = "ra"
)

// GameLogEntry is one player's performance in one game. Entries are built
// once by the upstream parser and never mutated afterwards.
type GameLogEntry struct {
	GameID     string    `json:"game_id"`
	GameDate   time.Time `json:"game_date"`
	PlayerTeam string    `json:"player_team"`
	HomeTeam   string    `json:"home_team"`
	AwayTeam   string    `json:"away_team"`

	// Minutes is decimal minutes played. Zero means the player did not play
	// and the row is excluded from every windowed computation.
	Minutes float64 `json:"minutes"`

	Points    float64 `json:"points"`
	Rebounds  float64 `json:"rebounds"`
	Assists   float64 `json:"assists"`
	Threes    float64 `json:"threes"`
	Steals    float64 `json:"steals"`
	Blocks    float64 `json:"blocks"`
	Turnovers float64 `json:"turnovers"`
}

// Played reports whether the row counts toward windowed statistics.
func (e GameLogEntry) Played() bool {
	return e.Minutes > 0
}

// HitRate is a (hits, total) pair. It is never collapsed to a bare
// percentage so consumers can re-derive confidence from the sample size.
type HitRate struct {
	Hits  int `json:"hits"`
	Total int `json:"total"`
}

// Fraction returns hits/total, or 0 for an empty sample.
func (h HitRate) Fraction() float64 {
	if h.Total == 0 {
		return 0
	}
	return float64(h.Hits) / float64(h.Total)
}

// TrendReport is the output of one trend computation. Pointer fields are nil
// when no qualifying games exist or, for hit rates, when no line was
// supplied - absent is never reported as zero.
type TrendReport struct {
	Player   string   `json:"player"`
	PlayerID int64    `json:"player_id,omitempty"`
	Stat     StatType `json:"stat"`
	Opponent string   `json:"opponent,omitempty"`
	Line     *float64 `json:"line,omitempty"`

	Last5Avg  *float64 `json:"last5_avg,omitempty"`
	Last10Avg *float64 `json:"last10_avg,omitempty"`
	H2HAvg    *float64 `json:"h2h_avg,omitempty"`
	SeasonAvg *float64 `json:"season_avg,omitempty"`

	Last5HitRate  *HitRate `json:"last5_hit_rate,omitempty"`
	Last10HitRate *HitRate `json:"last10_hit_rate,omitempty"`
	H2HHitRate    *HitRate `json:"h2h_hit_rate,omitempty"`
	SeasonHitRate *HitRate `json:"season_hit_rate,omitempty"`

	// Streak counts consecutive most-recent games whose value exceeded the
	// line. Only meaningful when a line was supplied.
	Streak int `json:"streak"`

	// GamesSampled is the number of played games the report was computed
	// from, across both seasons.
	GamesSampled int `json:"games_sampled"`
}
