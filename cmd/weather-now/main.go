package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ngmaloney/weather-now/internal/config"
	"github.com/ngmaloney/weather-now/internal/history"
	"github.com/ngmaloney/weather-now/internal/lookup"
	"github.com/ngmaloney/weather-now/internal/openmeteo"
	"github.com/ngmaloney/weather-now/internal/tracing"
	"github.com/ngmaloney/weather-now/internal/ui"
)

func main() {
	configFile := flag.String("config", "", "Path to a config file (default: ./config.yaml, ./config/config.yaml or ~/.weather-now/config.yaml)")
	city := flag.String("city", "", "Look up a city once, print the result and exit (e.g., Paris)")
	showRecent := flag.Bool("recent", false, "Print recent searches and exit")
	clearRecent := flag.Bool("clear-recent", false, "Delete recent searches and exit")
	flag.Parse()

	os.Exit(run(*configFile, *city, *showRecent, *clearRecent))
}

func run(configFile, city string, showRecent, clearRecent bool) int {
	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger, closeLog, err := cfg.OpenLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()

	ctx := context.Background()
	shutdown, err := tracing.Setup(ctx, cfg.Tracing, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	var repo *history.Repository
	if cfg.History.Enabled {
		repo, err = history.NewRepository(cfg.History.Path)
		if err != nil {
			// recent searches are optional; lookups still work without them
			logger.Warn("recent searches unavailable", "path", cfg.History.Path, "error", err)
		} else {
			defer repo.Close()
		}
	}

	if showRecent || clearRecent {
		if repo == nil {
			fmt.Fprintln(os.Stderr, "Error: recent searches are disabled or unavailable")
			return 1
		}
		if clearRecent {
			return runClearRecent(ctx, repo, os.Stdout, os.Stderr)
		}
		return runRecent(ctx, repo, cfg.History.Limit, os.Stdout, os.Stderr)
	}

	httpClient := cfg.HTTPClient()
	controller := lookup.NewController(
		openmeteo.NewGeocodingClient(cfg.ClientOptions(cfg.API.GeocodingURL, httpClient)...),
		openmeteo.NewForecastClient(cfg.ClientOptions(cfg.API.ForecastURL, httpClient)...),
		lookup.WithLogger(logger),
	)

	if city != "" {
		return runOnce(ctx, controller, repo, city, os.Stdout, os.Stderr, logger)
	}

	opts := []ui.Option{ui.WithLogger(logger)}
	if repo != nil {
		opts = append(opts, ui.WithHistory(repo, cfg.History.Limit))
	}

	logger.Info("starting weather-now")
	p := tea.NewProgram(ui.NewModel(controller, opts...), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running application: %v\n", err)
		return 1
	}
	return 0
}
