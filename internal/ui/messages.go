package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ngmaloney/weather-now/internal/history"
	"github.com/ngmaloney/weather-now/internal/lookup"
	"github.com/ngmaloney/weather-now/internal/models"
)

// Message types for async operations

// lookupResolvedMsg is sent when a lookup reaches a terminal state.
// generation is used for stale-result detection.
type lookupResolvedMsg struct {
	generation uint64
	state      lookup.State
	committed  bool
}

// searchRecordedMsg is sent after a resolved location was saved to history
type searchRecordedMsg struct {
	err error
}

// recentLoadedMsg carries the recent searches list
type recentLoadedMsg struct {
	entries []history.Entry
	err     error
}

// resolveLookup runs the started lookup in the background
func resolveLookup(c *lookup.Controller, t lookup.Ticket) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		state, committed := c.Resolve(ctx, t)
		return lookupResolvedMsg{
			generation: t.Generation,
			state:      state,
			committed:  committed,
		}
	}
}

// recordSearch saves a resolved location to the recent searches list
func recordSearch(repo *history.Repository, loc models.Location) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return searchRecordedMsg{err: repo.Record(ctx, loc)}
	}
}

// loadRecent fetches the recent searches list
func loadRecent(repo *history.Repository, limit int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		entries, err := repo.List(ctx, limit)
		return recentLoadedMsg{entries: entries, err: err}
	}
}
