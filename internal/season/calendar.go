// Package season implements the league-year calendar. The NBA season rolls
// over in October: a game played in September 2026 still belongs to season
// year 2025. The rollover month is configuration, not a constant, so other
// leagues can reuse the same windowing code.
package season

import (
	"fmt"
	"time"
)

// Calendar classifies calendar dates into season years.
type Calendar struct {
	Rollover time.Month
}

// Default returns the NBA calendar (October rollover).
func Default() Calendar {
	return Calendar{Rollover: time.October}
}

// Year returns the season year a date belongs to: Y if the date falls on or
// after the rollover month of year Y and before the rollover month of Y+1.
func (c Calendar) Year(t time.Time) int {
	rollover := c.Rollover
	if rollover == 0 {
		rollover = time.October
	}
	if t.Month() >= rollover {
		return t.Year()
	}
	return t.Year() - 1
}

// Label formats a season year the way the stats provider expects, e.g.
// 2025 -> "2025-26".
func (c Calendar) Label(year int) string {
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}
