// Command probe answers one prop-trend question from the terminal, bypassing
// the HTTP surface. Useful for eyeballing upstream behavior and reports.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fortuna/apollo/internal/config"
	"github.com/fortuna/apollo/internal/gamelog"
	"github.com/fortuna/apollo/internal/ingest/nbastats"
	"github.com/fortuna/apollo/internal/logger"
	"github.com/fortuna/apollo/internal/model"
	"github.com/fortuna/apollo/internal/season"
	"github.com/fortuna/apollo/internal/service"
)

func main() {
	var (
		player   = flag.String("player", "", "Player display name (required)")
		stat     = flag.String("stat", "points", "Stat type (points, rebounds, assists, threes, steals, blocks, turnovers, pra, pr, pa, ra)")
		opponent = flag.String("opponent", "", "Opponent team abbreviation")
		team     = flag.String("team", "", "Player's team abbreviation hint")
		line     = flag.Float64("line", 0, "Betting line; omit for averages only")
		timeout  = flag.Duration("timeout", 60*time.Second, "Overall request timeout")
	)
	flag.Parse()

	if *player == "" {
		fmt.Fprintln(os.Stderr, "usage: probe -player \"Damian Lillard\" [-stat points] [-opponent BOS] [-team MIL] [-line 24.5]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, "dev", "apollo-probe")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	cal := season.Calendar{Rollover: time.Month(cfg.SeasonRolloverMonth)}
	client := nbastats.NewClient(cfg.StatsBaseURL, cal, log)
	loader := gamelog.NewLoader(client, cal, log)
	players := service.NewPlayerService(client, nil, nil, log)
	trends := service.NewTrendService(players, loader, cal, nil, nil, nil, log)

	req := service.TrendRequest{
		Player:   *player,
		Stat:     model.StatType(*stat),
		Opponent: *opponent,
		TeamHint: *team,
	}
	if isFlagSet("line") {
		req.Line = line
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report, err := trends.RequestStats(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Msg("trend request failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatal().Err(err).Msg("encoding report")
	}
}

// isFlagSet distinguishes "-line 0" from an omitted flag.
func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
