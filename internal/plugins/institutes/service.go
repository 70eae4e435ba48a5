package institutes

import (
	"context"
	"fmt"
	"strings"

	"github.com/eduseek/eduseek/internal/apperror"
)

// SearchRecorder receives the query of an authenticated catalog search.
// The history plugin implements it; defining the interface here keeps the
// dependency pointing from wiring code inward instead of plugin-to-plugin.
type SearchRecorder interface {
	RecordSearch(ctx context.Context, userID, query string)
}

// InstituteService defines the business logic contract for the catalog.
type InstituteService interface {
	// Search runs a catalog search. When userID is non-empty the query is
	// recorded in that user's search history.
	Search(ctx context.Context, input SearchQuery, userID string) (*SearchResult, error)

	Get(ctx context.Context, id int64) (*Institute, error)
}

// instituteService implements InstituteService.
type instituteService struct {
	repo     InstituteRepository
	recorder SearchRecorder
}

// NewInstituteService creates the catalog service. recorder may be nil,
// in which case searches are never recorded.
func NewInstituteService(repo InstituteRepository, recorder SearchRecorder) InstituteService {
	return &instituteService{repo: repo, recorder: recorder}
}

// Search returns one page of matches and, for authenticated callers,
// records the query in their search history. Recording is best-effort and
// never fails the search itself.
func (s *instituteService) Search(ctx context.Context, input SearchQuery, userID string) (*SearchResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	q := strings.TrimSpace(input.Query)
	city := strings.TrimSpace(input.City)

	offset := (page - 1) * defaultPageSize
	institutes, total, err := s.repo.Search(ctx, q, city, offset, defaultPageSize)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("searching institutes: %w", err))
	}

	if userID != "" && q != "" && s.recorder != nil {
		s.recorder.RecordSearch(ctx, userID, q)
	}

	totalPages := (total + defaultPageSize - 1) / defaultPageSize
	if institutes == nil {
		institutes = []Institute{}
	}
	return &SearchResult{
		Institutes: institutes,
		Page:       page,
		PageSize:   defaultPageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// Get retrieves one institute by id.
func (s *instituteService) Get(ctx context.Context, id int64) (*Institute, error) {
	inst, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, err
		}
		return nil, apperror.NewInternal(fmt.Errorf("finding institute: %w", err))
	}
	return inst, nil
}
