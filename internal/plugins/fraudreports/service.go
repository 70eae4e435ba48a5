package fraudreports

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eduseek/eduseek/internal/apperror"
)

// adminPageSize is the page size for the admin review listing.
const adminPageSize = 50

// InstituteChecker is the existence probe the submit flow needs.
type InstituteChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// ReportPage is one page of the admin listing.
type ReportPage struct {
	Reports    []FraudReport `json:"reports"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
}

// ReportService defines the business logic contract for fraud reports.
type ReportService interface {
	// Submit files a report for the user, enforcing the daily quota.
	Submit(ctx context.Context, userID string, input SubmitRequest) (*FraudReport, error)

	ListOwn(ctx context.Context, userID string) ([]FraudReport, error)

	// ListAll is the admin review surface.
	ListAll(ctx context.Context, page int) (*ReportPage, error)
}

// reportService implements ReportService with a query-based quota.
type reportService struct {
	repo       ReportRepository
	institutes InstituteChecker
	maxPerDay  int
}

// NewReportService creates the fraud report service. A non-positive
// maxPerDay falls back to the default quota.
func NewReportService(repo ReportRepository, institutes InstituteChecker, maxPerDay int) ReportService {
	if maxPerDay <= 0 {
		maxPerDay = maxReportsPerDay
	}
	return &reportService{
		repo:       repo,
		institutes: institutes,
		maxPerDay:  maxPerDay,
	}
}

// utcDayStart truncates an instant to the start of its UTC calendar day.
func utcDayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Submit validates the report, counts the user's submissions for the
// current UTC day, and inserts when under quota. The quota is a live
// count, not a stored counter, so it resets at the UTC midnight boundary
// with no bookkeeping.
func (s *reportService) Submit(ctx context.Context, userID string, input SubmitRequest) (*FraudReport, error) {
	reason := strings.TrimSpace(input.Reason)
	var reasons []string
	if input.InstituteID <= 0 {
		reasons = append(reasons, "institute_id is required")
	}
	if reason == "" {
		reasons = append(reasons, "reason is required")
	}
	if len(reasons) > 0 {
		return nil, apperror.NewValidation("fraud report is invalid", reasons...)
	}

	exists, err := s.institutes.Exists(ctx, input.InstituteID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking institute: %w", err))
	}
	if !exists {
		return nil, apperror.NewNotFound("institute not found")
	}

	now := time.Now().UTC()
	count, err := s.repo.CountSince(ctx, userID, utcDayStart(now))
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("counting fraud reports: %w", err))
	}
	if count >= s.maxPerDay {
		return nil, apperror.NewRateLimited(
			fmt.Sprintf("fraud report limit reached: at most %d reports per day", s.maxPerDay))
	}

	report := &FraudReport{
		InstituteID: input.InstituteID,
		Reason:      reason,
		Details:     input.Details,
		CreatedAt:   now,
	}
	if err := s.repo.Insert(ctx, userID, report); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("inserting fraud report: %w", err))
	}

	slog.Info("fraud report submitted",
		slog.String("user_id", userID),
		slog.Int64("institute_id", report.InstituteID),
	)
	return report, nil
}

// ListOwn returns the user's own reports.
func (s *reportService) ListOwn(ctx context.Context, userID string) ([]FraudReport, error) {
	reports, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing fraud reports: %w", err))
	}
	if reports == nil {
		reports = []FraudReport{}
	}
	return reports, nil
}

// ListAll returns one page of every report for admin review.
func (s *reportService) ListAll(ctx context.Context, page int) (*ReportPage, error) {
	if page < 1 {
		page = 1
	}

	reports, total, err := s.repo.ListAll(ctx, (page-1)*adminPageSize, adminPageSize)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing all fraud reports: %w", err))
	}
	if reports == nil {
		reports = []FraudReport{}
	}
	return &ReportPage{
		Reports:    reports,
		Page:       page,
		PageSize:   adminPageSize,
		Total:      total,
		TotalPages: (total + adminPageSize - 1) / adminPageSize,
	}, nil
}
