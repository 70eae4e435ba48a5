package fraudreports

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ReportRepository defines the data access contract for fraud reports.
type ReportRepository interface {
	// CountSince counts the user's reports created at or after the given
	// instant. The quota check queries live rows, so deleted accounts or
	// clock boundaries never leave a stale counter behind.
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)

	Insert(ctx context.Context, userID string, report *FraudReport) error

	ListByUser(ctx context.Context, userID string) ([]FraudReport, error)

	// ListAll returns one page of all reports joined with the reporter's
	// email, newest first, plus the total count. Admin-only surface.
	ListAll(ctx context.Context, offset, limit int) ([]FraudReport, int, error)
}

// reportRepository implements ReportRepository with MariaDB queries.
type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new fraud report repository.
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

// CountSince counts the user's reports in the window.
func (r *reportRepository) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM fraud_reports WHERE user_id = ? AND created_at >= ?`
	if err := r.db.QueryRowContext(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting fraud reports: %w", err)
	}
	return count, nil
}

// Insert stores one report.
func (r *reportRepository) Insert(ctx context.Context, userID string, report *FraudReport) error {
	query := `INSERT INTO fraud_reports (user_id, institute_id, reason, details, created_at)
	          VALUES (?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		userID, report.InstituteID, report.Reason, report.Details, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting fraud report: %w", err)
	}
	report.ID, _ = result.LastInsertId()
	return nil
}

// ListByUser returns the user's own reports, newest first.
func (r *reportRepository) ListByUser(ctx context.Context, userID string) ([]FraudReport, error) {
	query := `SELECT id, institute_id, reason, details, created_at
	          FROM fraud_reports WHERE user_id = ? ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing fraud reports: %w", err)
	}
	defer rows.Close()

	var reports []FraudReport
	for rows.Next() {
		var rep FraudReport
		if err := rows.Scan(&rep.ID, &rep.InstituteID, &rep.Reason, &rep.Details, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning fraud report: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fraud reports: %w", err)
	}
	return reports, nil
}

// ListAll returns one page of every report with the reporter's email.
func (r *reportRepository) ListAll(ctx context.Context, offset, limit int) ([]FraudReport, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fraud_reports`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting fraud reports: %w", err)
	}

	query := `SELECT fr.id, fr.institute_id, fr.reason, fr.details, u.email, fr.created_at
	          FROM fraud_reports fr
	          JOIN users u ON u.id = fr.user_id
	          ORDER BY fr.created_at DESC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing all fraud reports: %w", err)
	}
	defer rows.Close()

	var reports []FraudReport
	for rows.Next() {
		var rep FraudReport
		if err := rows.Scan(&rep.ID, &rep.InstituteID, &rep.Reason, &rep.Details,
			&rep.ReporterEmail, &rep.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning fraud report: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating fraud reports: %w", err)
	}
	return reports, total, nil
}
