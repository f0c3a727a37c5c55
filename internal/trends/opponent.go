package trends

import (
	"github.com/fortuna/apollo/internal/model"
	"github.com/fortuna/apollo/internal/teams"
)

// Opponent derives the team the player actually faced in one game row. The
// player's team is read from the row itself, not from their current team,
// so a mid-season trade does not corrupt head-to-head history. When the row
// does not carry the player's team, the caller-supplied hint is compared
// against home/away instead.
func Opponent(e model.GameLogEntry, teamHint string) (string, bool) {
	team := teams.Normalize(e.PlayerTeam)
	if team == "" {
		team = teams.Normalize(teamHint)
	}
	if team == "" {
		return "", false
	}

	home := teams.Normalize(e.HomeTeam)
	away := teams.Normalize(e.AwayTeam)
	switch team {
	case home:
		if away != "" {
			return away, true
		}
	case away:
		if home != "" {
			return home, true
		}
	}
	return "", false
}

// ReconcileHints corrects a swapped (team, opponent) pair before windowing.
// Callers sometimes pass the matchup reversed; when the requested opponent
// is the team the player actually suits up for in the log, the two hints
// are exchanged.
func ReconcileHints(log []model.GameLogEntry, teamHint, opponent string) (team, opp string) {
	team = teams.Normalize(teamHint)
	opp = teams.Normalize(opponent)
	if opp == "" {
		return team, opp
	}

	actual := rowTeam(log)
	if actual != "" && actual == opp && team != actual {
		return opp, team
	}
	return team, opp
}

// rowTeam returns the player's team as recorded in the most recent row that
// carries one.
func rowTeam(log []model.GameLogEntry) string {
	for _, e := range log {
		if t := teams.Normalize(e.PlayerTeam); t != "" {
			return t
		}
	}
	return ""
}
