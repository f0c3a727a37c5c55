// Package teams holds the static NBA team tables shared across Fortuna
// services: abbreviation <-> numeric ID mappings and normalization of the
// abbreviation variants that different upstreams emit.
package teams

import "strings"

// abbrToID maps canonical team abbreviations to stats provider team IDs.
var abbrToID = map[string]int64{
	"ATL": 1610612737, "BOS": 1610612738, "BKN": 1610612751, "CHA": 1610612766, "CHI": 1610612741,
	"CLE": 1610612739, "DAL": 1610612742, "DEN": 1610612743, "DET": 1610612765, "GSW": 1610612744,
	"HOU": 1610612745, "IND": 1610612754, "LAC": 1610612746, "LAL": 1610612747, "MEM": 1610612763,
	"MIA": 1610612748, "MIL": 1610612749, "MIN": 1610612750, "NOP": 1610612740, "NYK": 1610612752,
	"OKC": 1610612760, "ORL": 1610612753, "PHI": 1610612755, "PHX": 1610612756, "POR": 1610612757,
	"SAC": 1610612758, "SAS": 1610612759, "TOR": 1610612761, "UTA": 1610612762, "WAS": 1610612764,
}

var idToAbbr = func() map[int64]string {
	m := make(map[int64]string, len(abbrToID))
	for abbr, id := range abbrToID {
		m[id] = abbr
	}
	return m
}()

// variants maps the alternate codes seen across upstream feeds (basketball
// reference style, broadcast style, city shorthand) to canonical form.
var variants = map[string]string{
	"BRK":  "BKN",
	"CHO":  "CHA",
	"GS":   "GSW",
	"NO":   "NOP",
	"NOR":  "NOP",
	"NY":   "NYK",
	"PHO":  "PHX",
	"SA":   "SAS",
	"UTAH": "UTA",
	"WSH":  "WAS",
}

// ID returns the stats provider team ID for an abbreviation.
func ID(abbr string) (int64, bool) {
	id, ok := abbrToID[Normalize(abbr)]
	return id, ok
}

// Abbr returns the canonical abbreviation for a stats provider team ID.
func Abbr(id int64) (string, bool) {
	abbr, ok := idToAbbr[id]
	return abbr, ok
}

// Known reports whether the code resolves to a canonical team.
func Known(abbr string) bool {
	_, ok := abbrToID[Normalize(abbr)]
	return ok
}

// Normalize upper-cases and trims a team code and folds known variants onto
// the canonical abbreviation. Unknown codes are returned upper-cased so
// matching still works when two sources agree on a non-canonical code.
func Normalize(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if canonical, ok := variants[c]; ok {
		return canonical
	}
	return c
}
