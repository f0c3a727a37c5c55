package nbastats

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fortuna/apollo/internal/model"
)

// statAliases maps each canonical field to the source field names seen
// across upstream feed versions, in preference order. First present wins.
var statAliases = map[string][]string{
	"gameId":    {"gameId", "game_id", "GAME_ID"},
	"gameDate":  {"gameDate", "game_date", "GAME_DATE", "date"},
	"team":      {"team", "teamAbbreviation", "TEAM_ABBREVIATION"},
	"home":      {"homeTeam", "home", "HOME_TEAM"},
	"away":      {"awayTeam", "away", "AWAY_TEAM"},
	"minutes":   {"min", "minutes", "minutesPlayed", "MIN"},
	"points":    {"pts", "points", "PTS"},
	"rebounds":  {"reb", "rebounds", "totReb", "REB"},
	"assists":   {"ast", "assists", "AST"},
	"threes":    {"fg3m", "threesMade", "FG3M"},
	"steals":    {"stl", "steals", "STL"},
	"blocks":    {"blk", "blocks", "BLK"},
	"turnovers": {"tov", "turnovers", "TO", "TOV"},
}

// dateLayouts are tried in order when parsing game dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"Jan 2, 2006",
	"01/02/2006",
}

// ParseRows converts raw upstream rows into game-log entries. Rows that
// cannot produce a usable entry are dropped, not fatal to the batch.
func ParseRows(rows []map[string]any, log zerolog.Logger) []model.GameLogEntry {
	entries := make([]model.GameLogEntry, 0, len(rows))
	for _, row := range rows {
		entry, ok := parseRow(row)
		if !ok {
			log.Debug().Interface("row", row).Msg("dropping malformed game-log row")
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func parseRow(row map[string]any) (model.GameLogEntry, bool) {
	if len(row) == 0 {
		return model.GameLogEntry{}, false
	}

	entry := model.GameLogEntry{
		GameID:     strField(row, "gameId"),
		GameDate:   parseDate(row),
		PlayerTeam: strField(row, "team"),
		HomeTeam:   strField(row, "home"),
		AwayTeam:   strField(row, "away"),
		Minutes:    parseMinutes(lookup(row, "minutes")),
		Points:     numField(row, "points"),
		Rebounds:   numField(row, "rebounds"),
		Assists:    numField(row, "assists"),
		Threes:     numField(row, "threes"),
		Steals:     numField(row, "steals"),
		Blocks:     numField(row, "blocks"),
		Turnovers:  numField(row, "turnovers"),
	}

	if entry.GameID == "" {
		entry.GameID = deriveGameID(entry)
	}
	if entry.GameID == "" {
		return model.GameLogEntry{}, false
	}
	return entry, true
}

// lookup resolves a canonical field through the alias table.
func lookup(row map[string]any, canonical string) any {
	for _, alias := range statAliases[canonical] {
		if v, ok := row[alias]; ok && v != nil {
			return v
		}
	}
	return nil
}

func strField(row map[string]any, canonical string) string {
	switch v := lookup(row, canonical).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func numField(row map[string]any, canonical string) float64 {
	return toNumber(lookup(row, canonical))
}

func toNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func parseDate(row map[string]any) time.Time {
	s, _ := lookup(row, "gameDate").(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseMinutes accepts "34:12", "34", and plain numbers. The clock form is
// converted to decimal minutes.
func parseMinutes(v any) float64 {
	s, ok := v.(string)
	if !ok {
		return toNumber(v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if mins, secs, found := strings.Cut(s, ":"); found {
		m, err1 := strconv.ParseFloat(mins, 64)
		sec, err2 := strconv.ParseFloat(secs, 64)
		if err1 != nil || err2 != nil {
			return 0
		}
		return m + sec/60
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// deriveGameID builds a stable fallback identifier from teams and date for
// feeds that omit the game ID.
func deriveGameID(e model.GameLogEntry) string {
	if e.HomeTeam == "" || e.AwayTeam == "" || e.GameDate.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s@%s-%s", e.AwayTeam, e.HomeTeam, e.GameDate.Format("20060102"))
}
