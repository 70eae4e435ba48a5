package institutes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eduseek/eduseek/internal/apperror"
)

// InstituteRepository defines the data access contract for the catalog.
type InstituteRepository interface {
	// Search returns one page of institutes matching the filters plus the
	// total match count. Empty filters match everything.
	Search(ctx context.Context, q, city string, offset, limit int) ([]Institute, int, error)

	FindByID(ctx context.Context, id int64) (*Institute, error)

	// Exists is the cheap existence probe used by other plugins before
	// attaching a favorite or fraud report to an institute.
	Exists(ctx context.Context, id int64) (bool, error)
}

// instituteRepository implements InstituteRepository with MariaDB queries.
type instituteRepository struct {
	db *sql.DB
}

// NewInstituteRepository creates a new institute repository.
func NewInstituteRepository(db *sql.DB) InstituteRepository {
	return &instituteRepository{db: db}
}

const instituteColumns = `id, name, city, address, website, email, phone,
	description, created_at, updated_at`

// scanInstitute reads one row in instituteColumns order.
func scanInstitute(scan func(dest ...any) error) (*Institute, error) {
	inst := &Institute{}
	err := scan(
		&inst.ID,
		&inst.Name,
		&inst.City,
		&inst.Address,
		&inst.Website,
		&inst.Email,
		&inst.Phone,
		&inst.Description,
		&inst.CreatedAt,
		&inst.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inst, nil
}

// Search filters by name substring and exact city (both optional) and
// returns the requested page together with the unpaged match count.
func (r *instituteRepository) Search(ctx context.Context, q, city string, offset, limit int) ([]Institute, int, error) {
	where := ` WHERE 1=1`
	var args []any
	if q != "" {
		where += ` AND name LIKE ?`
		args = append(args, "%"+q+"%")
	}
	if city != "" {
		where += ` AND city = ?`
		args = append(args, city)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM institutes` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting institutes: %w", err)
	}

	query := `SELECT ` + instituteColumns + ` FROM institutes` + where +
		` ORDER BY name LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("searching institutes: %w", err)
	}
	defer rows.Close()

	var institutes []Institute
	for rows.Next() {
		inst, err := scanInstitute(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning institute: %w", err)
		}
		institutes = append(institutes, *inst)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating institutes: %w", err)
	}
	return institutes, total, nil
}

// FindByID retrieves one institute.
// Returns apperror.NotFound if no institute exists with this ID.
func (r *instituteRepository) FindByID(ctx context.Context, id int64) (*Institute, error) {
	query := `SELECT ` + instituteColumns + ` FROM institutes WHERE id = ?`
	inst, err := scanInstitute(r.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("institute not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scanning institute: %w", err)
	}
	return inst, nil
}

// Exists reports whether an institute with the given id exists.
func (r *instituteRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM institutes WHERE id = ?)`
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking institute existence: %w", err)
	}
	return exists, nil
}
