package trends

import (
	"math"

	"github.com/fortuna/apollo/internal/model"
	"github.com/fortuna/apollo/internal/season"
)

// h2hMaxGames caps the head-to-head window at the most recent meetings.
const h2hMaxGames = 6

// Request carries the inputs for one trend computation over a merged log.
type Request struct {
	Stat       model.StatType
	Opponent   string
	TeamHint   string
	Line       *float64
	SeasonYear int
}

// Aggregator windows a merged, newest-first game log into a trend report.
type Aggregator struct {
	cal season.Calendar
}

// NewAggregator creates an aggregator using the given season calendar.
func NewAggregator(cal season.Calendar) *Aggregator {
	return &Aggregator{cal: cal}
}

// Compute filters out games the player did not play, resolves the requested
// statistic per row, and produces the windowed averages, hit rates and
// streak. The log must be sorted newest first. Absent windows stay nil.
func (a *Aggregator) Compute(log []model.GameLogEntry, req Request) (model.TrendReport, error) {
	sel, err := SelectorFor(req.Stat)
	if err != nil {
		return model.TrendReport{}, err
	}

	team, opp := ReconcileHints(log, req.TeamHint, req.Opponent)

	line := req.Line
	if line != nil && (math.IsNaN(*line) || math.IsInf(*line, 0)) {
		line = nil
	}

	played := make([]model.GameLogEntry, 0, len(log))
	values := make([]float64, 0, len(log))
	for _, e := range log {
		if !e.Played() {
			continue
		}
		played = append(played, e)
		values = append(values, sel(e))
	}

	report := model.TrendReport{
		Stat:         req.Stat,
		Opponent:     opp,
		Line:         line,
		GamesSampled: len(played),
	}

	last5 := head(values, 5)
	last10 := head(values, 10)
	report.Last5Avg = average(last5)
	report.Last10Avg = average(last10)

	var seasonVals []float64
	for i, e := range played {
		if a.cal.Year(e.GameDate) == req.SeasonYear {
			seasonVals = append(seasonVals, values[i])
		}
	}
	report.SeasonAvg = average(seasonVals)

	var h2hVals []float64
	if opp != "" {
		for i, e := range played {
			if len(h2hVals) == h2hMaxGames {
				break
			}
			if faced, ok := Opponent(e, team); ok && faced == opp {
				h2hVals = append(h2hVals, values[i])
			}
		}
	}
	report.H2HAvg = average(h2hVals)

	if line != nil {
		report.Last5HitRate = hitRate(last5, *line)
		report.Last10HitRate = hitRate(last10, *line)
		report.SeasonHitRate = hitRate(seasonVals, *line)
		report.H2HHitRate = hitRate(h2hVals, *line)
		report.Streak = streak(values, *line)
	}

	return report, nil
}

func head(vals []float64, n int) []float64 {
	if len(vals) < n {
		return vals
	}
	return vals[:n]
}

// average returns nil, not zero, for an empty window.
func average(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	avg := sum / float64(len(vals))
	return &avg
}

func hitRate(vals []float64, line float64) *model.HitRate {
	if len(vals) == 0 {
		return nil
	}
	hr := &model.HitRate{Total: len(vals)}
	for _, v := range vals {
		if v > line {
			hr.Hits++
		}
	}
	return hr
}

// streak counts consecutive values from the newest that exceed the line,
// stopping at the first that does not. Zero is a valid streak.
func streak(vals []float64, line float64) int {
	n := 0
	for _, v := range vals {
		if v <= line {
			break
		}
		n++
	}
	return n
}
