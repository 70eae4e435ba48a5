package history

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eduseek/eduseek/internal/apperror"
	"github.com/eduseek/eduseek/internal/cache"
)

// cacheKeyPrefix scopes cached history lists per user.
const cacheKeyPrefix = "history"

// HistoryService defines the business logic contract for search history.
// RecordSearch satisfies the institutes plugin's SearchRecorder.
type HistoryService interface {
	List(ctx context.Context, userID string) ([]Entry, error)

	// RecordSearch stores the query unless the same query was already
	// recorded within the rolling dedupe window. Best-effort: it logs
	// failures instead of returning them, because recording must never
	// break the search that triggered it.
	RecordSearch(ctx context.Context, userID, query string)

	DeleteOne(ctx context.Context, userID string, id int64) error
	DeleteAll(ctx context.Context, userID string) error
}

// historyService implements HistoryService with a read-through cache.
type historyService struct {
	repo     HistoryRepository
	cache    *cache.Cache
	cacheTTL time.Duration
}

// NewHistoryService creates the history service.
func NewHistoryService(repo HistoryRepository, c *cache.Cache, cacheTTL time.Duration) HistoryService {
	return &historyService{repo: repo, cache: c, cacheTTL: cacheTTL}
}

// List returns the user's history through the cache.
func (s *historyService) List(ctx context.Context, userID string) ([]Entry, error) {
	entries, err := cache.GetOrLoad(ctx, s.cache, cache.Key(cacheKeyPrefix, userID), s.cacheTTL,
		func(ctx context.Context) ([]Entry, error) {
			return s.repo.ListByUser(ctx, userID)
		})
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing search history: %w", err))
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// RecordSearch stores one search, suppressing duplicates of the same
// query within the rolling 24h window.
func (s *historyService) RecordSearch(ctx context.Context, userID, query string) {
	query = strings.TrimSpace(query)
	if userID == "" || query == "" {
		return
	}

	now := time.Now().UTC()
	recent, err := s.repo.ExistsSince(ctx, userID, query, now.Add(-dedupeWindow))
	if err != nil {
		slog.Warn("history dedupe check failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return
	}
	if recent {
		return
	}

	if err := s.repo.Insert(ctx, userID, query, now); err != nil {
		slog.Warn("failed to record search",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return
	}

	s.invalidate(ctx, userID)
}

// DeleteOne removes one entry owned by the user.
func (s *historyService) DeleteOne(ctx context.Context, userID string, id int64) error {
	deleted, err := s.repo.DeleteOne(ctx, userID, id)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("deleting history entry: %w", err))
	}
	if !deleted {
		return apperror.NewNotFound("history entry not found")
	}

	s.invalidate(ctx, userID)
	return nil
}

// DeleteAll clears the user's history. Clearing an already-empty history
// is a no-op, not an error.
func (s *historyService) DeleteAll(ctx context.Context, userID string) error {
	if _, err := s.repo.DeleteAll(ctx, userID); err != nil {
		return apperror.NewInternal(fmt.Errorf("clearing search history: %w", err))
	}

	s.invalidate(ctx, userID)
	return nil
}

// invalidate drops the user's cached list before the mutation returns.
func (s *historyService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, cache.Key(cacheKeyPrefix, userID)); err != nil {
		slog.Warn("history cache invalidation failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}
}
