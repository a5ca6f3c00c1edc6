package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ngmaloney/weather-now/internal/history"
	"github.com/ngmaloney/weather-now/internal/lookup"
	"github.com/ngmaloney/weather-now/internal/ui"
)

// runOnce looks up city, prints the result card to out and returns the
// process exit code.
func runOnce(ctx context.Context, controller *lookup.Controller, repo *history.Repository, city string, out, errOut io.Writer, logger *slog.Logger) int {
	updates, unsubscribe := controller.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for s := range updates {
			logger.Debug("lookup state changed", "status", s.Status.String(), "query", s.Query, "message", s.Message)
		}
	}()
	defer func() {
		unsubscribe()
		<-done
	}()

	ticket, ok := controller.Start(city)
	if !ok {
		fmt.Fprintln(errOut, "Please enter a city name")
		return 2
	}
	fmt.Fprintf(errOut, "Looking up %s...\n", ticket.Query)

	state, _ := controller.Resolve(ctx, ticket)

	switch state.Status {
	case lookup.StatusSucceeded:
		fmt.Fprint(out, ui.PlainCard(*state.Location, *state.Weather))
		if repo != nil {
			if err := repo.Record(ctx, *state.Location); err != nil {
				fmt.Fprintf(errOut, "Warning: could not save recent search: %v\n", err)
			}
		}
		return 0
	case lookup.StatusFailed:
		fmt.Fprintln(errOut, state.Message)
	}
	return 1
}

// runRecent prints the recent searches list
func runRecent(ctx context.Context, repo *history.Repository, limit int, out, errOut io.Writer) int {
	entries, err := repo.List(ctx, limit)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No recent searches")
		return 0
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%-32s %8.2f %8.2f  %s\n",
			e.Location.DisplayName(),
			e.Location.Latitude,
			e.Location.Longitude,
			e.SearchedAt.Local().Format("2006-01-02 15:04"))
	}
	return 0
}

// runClearRecent deletes the recent searches list
func runClearRecent(ctx context.Context, repo *history.Repository, out, errOut io.Writer) int {
	if err := repo.Clear(ctx); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, "Recent searches cleared")
	return 0
}
