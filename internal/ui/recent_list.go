package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/ngmaloney/weather-now/internal/history"
)

// recentItem wraps a history entry for use in a list
type recentItem struct {
	entry history.Entry
}

// FilterValue implements list.Item
func (r recentItem) FilterValue() string {
	return r.entry.Location.DisplayName()
}

// Title implements list.DefaultItem
func (r recentItem) Title() string {
	return r.entry.Location.DisplayName()
}

// Description implements list.DefaultItem
func (r recentItem) Description() string {
	return fmt.Sprintf("%.2f, %.2f • %s",
		r.entry.Location.Latitude,
		r.entry.Location.Longitude,
		r.entry.SearchedAt.Local().Format("Jan 2, 3:04 PM"))
}

// createRecentList creates a list.Model from history entries
func createRecentList(entries []history.Entry, width, height int) list.Model {
	items := make([]list.Item, len(entries))
	for i, entry := range entries {
		items[i] = recentItem{entry: entry}
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Recent Searches"
	l.SetShowHelp(true)
	l.SetFilteringEnabled(false)

	return l
}
