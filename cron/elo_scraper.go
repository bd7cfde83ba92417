package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"github.com/nilsimda/tennis-elo/components"
	"github.com/nilsimda/tennis-elo/config"
	"github.com/nilsimda/tennis-elo/elo"
	"github.com/nilsimda/tennis-elo/models"
	"github.com/nilsimda/tennis-elo/ratings"
)

// Scrapes every circuit, prints a summary of each table and optionally
// prices one matchup. Useful to check that the ratings pages still parse.
func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the yaml config file")
	top := flag.Int("top", 5, "players to list per surface")
	circuitFlag := flag.String("circuit", "atp", "circuit for the matchup")
	surfaceFlag := flag.String("surface", "hard", "surface for the matchup")
	p1 := flag.String("p1", "", "first player of the matchup")
	p2 := flag.String("p2", "", "second player of the matchup")
	margin := flag.Int("margin", 0, "bookmaker margin in percent")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	provider := ratings.NewScraper(ratings.Options{
		URLs: map[models.Circuit]string{
			models.ATP: cfg.Ratings.Circuits.ATP,
			models.WTA: cfg.Ratings.Circuits.WTA,
		},
		Timeout:    cfg.Ratings.Timeout,
		Retries:    cfg.Ratings.Retries,
		RetryDelay: cfg.Ratings.RetryDelay,
		UserAgent:  cfg.Ratings.UserAgent,
		Logger:     logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tables := make(map[models.Circuit]*ratings.Table)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, circuit := range models.Circuits() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table, err := provider.Fetch(ctx, circuit)
			if err != nil {
				logger.Error("Failed to fetch ratings", "circuit", circuit, "error", err)
				return
			}
			mu.Lock()
			tables[circuit] = table
			mu.Unlock()
		}()
	}
	wg.Wait()

	for _, circuit := range models.Circuits() {
		table, ok := tables[circuit]
		if !ok {
			fmt.Printf("\n=== %s: unavailable ===\n", circuit.Title())
			continue
		}
		printSummary(circuit, table, *top)
	}

	if *p1 == "" && *p2 == "" {
		if len(tables) < len(models.Circuits()) {
			os.Exit(1)
		}
		return
	}

	if err := printMatchup(tables, *circuitFlag, *surfaceFlag, *p1, *p2, *margin); err != nil {
		logger.Error("Failed to price matchup", "error", err)
		os.Exit(1)
	}
}

func printSummary(circuit models.Circuit, table *ratings.Table, top int) {
	fmt.Printf("\n=== %s ===\n", circuit.Title())
	fmt.Printf("Players: %d\n", table.Len())
	fmt.Printf("Skipped rows: %d\n", table.Skipped())

	players := table.Players()
	for _, surface := range models.Surfaces() {
		sort.SliceStable(players, func(i, j int) bool {
			return players[i].Rating(surface) > players[j].Rating(surface)
		})
		fmt.Printf("\nTop %s:\n", surface.Title())
		for i, p := range players {
			if i >= top {
				break
			}
			fmt.Printf("  %2d. %-28s %s\n", i+1, p.Name, components.FormatRating(p.Rating(surface)))
		}
	}
}

func printMatchup(tables map[models.Circuit]*ratings.Table, circuitName, surfaceName, name1, name2 string, margin int) error {
	circuit, err := models.ParseCircuit(circuitName)
	if err != nil {
		return err
	}
	surface, err := models.ParseSurface(surfaceName)
	if err != nil {
		return err
	}
	if !models.ValidMargin(margin) {
		return fmt.Errorf("%w: %d", models.ErrInvalidMargin, margin)
	}

	table, ok := tables[circuit]
	if !ok {
		return fmt.Errorf("%s ratings unavailable", circuit)
	}
	p1, err := table.Lookup(name1)
	if err != nil {
		return err
	}
	p2, err := table.Lookup(name2)
	if err != nil {
		return err
	}

	m := elo.NewMatchup(p1, p2, surface, margin)
	fmt.Printf("\n=== %s vs %s (%s, %d%% margin) ===\n", p1.Name, p2.Name, surface.Title(), margin)
	for _, side := range []elo.Side{m.Player1, m.Player2} {
		fmt.Printf("  %-28s Elo %-8s %8s  odds %s\n",
			side.Name,
			components.FormatRating(side.Rating),
			components.FormatPercent(side.Probability),
			components.FormatOdds(side.Odds),
		)
	}
	return nil
}
