package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// HistoryRepository defines the data access contract for search history.
// Every method takes the owning user id and intersects it with the query.
type HistoryRepository interface {
	ListByUser(ctx context.Context, userID string) ([]Entry, error)

	// ExistsSince reports whether the user already searched this query
	// (case-insensitive) at or after the given instant.
	ExistsSince(ctx context.Context, userID, query string, since time.Time) (bool, error)

	Insert(ctx context.Context, userID, query string, searchedAt time.Time) error

	// DeleteOne removes one of the user's entries. False if none matched.
	DeleteOne(ctx context.Context, userID string, id int64) (bool, error)

	// DeleteAll clears the user's history and returns how many rows went.
	DeleteAll(ctx context.Context, userID string) (int64, error)
}

// historyRepository implements HistoryRepository with MariaDB queries.
type historyRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(db *sql.DB) HistoryRepository {
	return &historyRepository{db: db}
}

// ListByUser returns the user's history, newest first.
func (r *historyRepository) ListByUser(ctx context.Context, userID string) ([]Entry, error) {
	query := `SELECT id, query, searched_at FROM search_history
	          WHERE user_id = ? ORDER BY searched_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing search history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Query, &e.SearchedAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history entries: %w", err)
	}
	return entries, nil
}

// ExistsSince checks for a recent duplicate of the query. The collation on
// the query column is case-insensitive, matching the comparison here.
func (r *historyRepository) ExistsSince(ctx context.Context, userID, query string, since time.Time) (bool, error) {
	var exists bool
	q := `SELECT EXISTS(SELECT 1 FROM search_history
	      WHERE user_id = ? AND query = ? AND searched_at >= ?)`
	if err := r.db.QueryRowContext(ctx, q, userID, query, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking recent history: %w", err)
	}
	return exists, nil
}

// Insert records one search.
func (r *historyRepository) Insert(ctx context.Context, userID, query string, searchedAt time.Time) error {
	q := `INSERT INTO search_history (user_id, query, searched_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, userID, query, searchedAt); err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

// DeleteOne removes one entry owned by the user.
func (r *historyRepository) DeleteOne(ctx context.Context, userID string, id int64) (bool, error) {
	q := `DELETE FROM search_history WHERE user_id = ? AND id = ?`
	result, err := r.db.ExecContext(ctx, q, userID, id)
	if err != nil {
		return false, fmt.Errorf("deleting history entry: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// DeleteAll clears the user's history.
func (r *historyRepository) DeleteAll(ctx context.Context, userID string) (int64, error) {
	q := `DELETE FROM search_history WHERE user_id = ?`
	result, err := r.db.ExecContext(ctx, q, userID)
	if err != nil {
		return 0, fmt.Errorf("clearing search history: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}
