package favorites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/eduseek/eduseek/internal/apperror"
)

// mysqlDuplicateEntry is the MariaDB error number for a unique-key
// violation, the race-proof duplicate signal on (user_id, institute_id).
const mysqlDuplicateEntry = 1062

// FavoriteRepository defines the data access contract for bookmarks.
// Every method takes the owning user id and intersects it with the query.
type FavoriteRepository interface {
	ListByUser(ctx context.Context, userID string) ([]Favorite, error)

	// Add inserts a bookmark. A duplicate (user, institute) pair returns
	// a conflict error.
	Add(ctx context.Context, userID string, instituteID int64) error

	// Remove deletes the user's bookmark. Returns false if none matched.
	Remove(ctx context.Context, userID string, instituteID int64) (bool, error)
}

// favoriteRepository implements FavoriteRepository with MariaDB queries.
type favoriteRepository struct {
	db *sql.DB
}

// NewFavoriteRepository creates a new favorite repository.
func NewFavoriteRepository(db *sql.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// ListByUser returns the user's bookmarks, newest first, joined with the
// institute display fields.
func (r *favoriteRepository) ListByUser(ctx context.Context, userID string) ([]Favorite, error) {
	query := `SELECT f.id, f.institute_id, i.name, i.city, f.created_at
	          FROM favorites f
	          JOIN institutes i ON i.id = f.institute_id
	          WHERE f.user_id = ?
	          ORDER BY f.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	defer rows.Close()

	var favorites []Favorite
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.ID, &f.InstituteID, &f.InstituteName, &f.InstituteCity, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating favorites: %w", err)
	}
	return favorites, nil
}

// Add inserts a bookmark. The unique key on (user_id, institute_id) makes
// the duplicate check race-proof; the driver error is translated to a
// conflict instead of leaking upward.
func (r *favoriteRepository) Add(ctx context.Context, userID string, instituteID int64) error {
	query := `INSERT INTO favorites (user_id, institute_id, created_at) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, userID, instituteID, time.Now().UTC())
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return apperror.NewConflict("institute is already in favorites")
		}
		return fmt.Errorf("inserting favorite: %w", err)
	}
	return nil
}

// Remove deletes the user's bookmark for the institute.
func (r *favoriteRepository) Remove(ctx context.Context, userID string, instituteID int64) (bool, error) {
	query := `DELETE FROM favorites WHERE user_id = ? AND institute_id = ?`
	result, err := r.db.ExecContext(ctx, query, userID, instituteID)
	if err != nil {
		return false, fmt.Errorf("deleting favorite: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}
