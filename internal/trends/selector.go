// Package trends computes rolling-window prop statistics over a merged game
// log: last-5/last-10/head-to-head/season averages, hit rates against a
// line, and the current streak.
package trends

import (
	"fmt"

	"github.com/fortuna/apollo/internal/model"
)

// Selector extracts one statistic's value from a game row. Composite stats
// are summed from their component fields so a feed that never reports "pra"
// directly still produces correct composite trends.
type Selector func(model.GameLogEntry) float64

var selectors = map[model.StatType]Selector{
	model.StatPoints:    func(e model.GameLogEntry) float64 { return e.Points },
	model.StatRebounds:  func(e model.GameLogEntry) float64 { return e.Rebounds },
	model.StatAssists:   func(e model.GameLogEntry) float64 { return e.Assists },
	model.StatThrees:    func(e model.GameLogEntry) float64 { return e.Threes },
	model.StatSteals:    func(e model.GameLogEntry) float64 { return e.Steals },
	model.StatBlocks:    func(e model.GameLogEntry) float64 { return e.Blocks },
	model.StatTurnovers: func(e model.GameLogEntry) float64 { return e.Turnovers },
	model.StatPRA:       func(e model.GameLogEntry) float64 { return e.Points + e.Rebounds + e.Assists },
	model.StatPR:        func(e model.GameLogEntry) float64 { return e.Points + e.Rebounds },
	model.StatPA:        func(e model.GameLogEntry) float64 { return e.Points + e.Assists },
	model.StatRA:        func(e model.GameLogEntry) float64 { return e.Rebounds + e.Assists },
}

// SelectorFor returns the selector for a stat type.
func SelectorFor(stat model.StatType) (Selector, error) {
	sel, ok := selectors[stat]
	if !ok {
		return nil, fmt.Errorf("unknown stat type %q", stat)
	}
	return sel, nil
}
