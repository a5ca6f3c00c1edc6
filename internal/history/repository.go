package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ngmaloney/weather-now/internal/database"
	"github.com/ngmaloney/weather-now/internal/models"
)

// Entry is a previously resolved location
type Entry struct {
	ID         int64
	Location   models.Location
	SearchedAt time.Time
}

// Repository persists recently resolved locations
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository opens the database at dbPath and returns a repository on it
func NewRepository(dbPath string) (*Repository, error) {
	db, err := database.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &Repository{db: db, now: time.Now}, nil
}

// Close releases the underlying database
func (r *Repository) Close() error {
	return r.db.Close()
}

// Record saves loc as the most recent search. A location already in the
// list is moved to the top rather than duplicated.
func (r *Repository) Record(ctx context.Context, loc models.Location) error {
	query := `
		INSERT INTO recent_searches (name, country, latitude, longitude, searched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name, country) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			searched_at = excluded.searched_at
	`

	_, err := r.db.ExecContext(ctx, query,
		loc.Name,
		loc.Country,
		loc.Latitude,
		loc.Longitude,
		r.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("saving recent search: %w", err)
	}

	return nil
}

// List returns up to limit entries, most recent first
func (r *Repository) List(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, country, latitude, longitude, searched_at FROM recent_searches ORDER BY searched_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent searches: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var searchedAt int64
		if err := rows.Scan(&e.ID, &e.Location.Name, &e.Location.Country, &e.Location.Latitude, &e.Location.Longitude, &searchedAt); err != nil {
			return nil, fmt.Errorf("scanning recent search: %w", err)
		}
		e.SearchedAt = time.UnixMilli(searchedAt).UTC()
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Clear removes every entry
func (r *Repository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM recent_searches"); err != nil {
		return fmt.Errorf("clearing recent searches: %w", err)
	}
	return nil
}
