package favorites

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eduseek/eduseek/internal/apperror"
	"github.com/eduseek/eduseek/internal/cache"
)

// cacheKeyPrefix scopes cached favorite lists per user.
const cacheKeyPrefix = "favorites"

// InstituteChecker is the slice of the institutes plugin this service
// needs: an existence probe before attaching a bookmark.
type InstituteChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// FavoriteService defines the business logic contract for bookmarks.
type FavoriteService interface {
	List(ctx context.Context, userID string) ([]Favorite, error)
	Add(ctx context.Context, userID string, instituteID int64) error
	Remove(ctx context.Context, userID string, instituteID int64) error
}

// favoriteService implements FavoriteService with a read-through cache.
type favoriteService struct {
	repo       FavoriteRepository
	institutes InstituteChecker
	cache      *cache.Cache
	cacheTTL   time.Duration
}

// NewFavoriteService creates the favorites service.
func NewFavoriteService(repo FavoriteRepository, institutes InstituteChecker,
	c *cache.Cache, cacheTTL time.Duration) FavoriteService {
	return &favoriteService{
		repo:       repo,
		institutes: institutes,
		cache:      c,
		cacheTTL:   cacheTTL,
	}
}

// List returns the user's bookmarks through the cache. A cache failure
// degrades to a direct load; it never fails the request.
func (s *favoriteService) List(ctx context.Context, userID string) ([]Favorite, error) {
	favorites, err := cache.GetOrLoad(ctx, s.cache, cache.Key(cacheKeyPrefix, userID), s.cacheTTL,
		func(ctx context.Context) ([]Favorite, error) {
			return s.repo.ListByUser(ctx, userID)
		})
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing favorites: %w", err))
	}
	if favorites == nil {
		favorites = []Favorite{}
	}
	return favorites, nil
}

// Add bookmarks an institute for the user. The institute must exist, a
// duplicate is a conflict, and the cached list is invalidated before the
// call returns so the next read cannot observe the stale list.
func (s *favoriteService) Add(ctx context.Context, userID string, instituteID int64) error {
	if instituteID <= 0 {
		return apperror.NewValidation("institute_id is required")
	}

	exists, err := s.institutes.Exists(ctx, instituteID)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("checking institute: %w", err))
	}
	if !exists {
		return apperror.NewNotFound("institute not found")
	}

	if err := s.repo.Add(ctx, userID, instituteID); err != nil {
		if apperror.IsKind(err, apperror.KindConflict) {
			return err
		}
		return apperror.NewInternal(fmt.Errorf("adding favorite: %w", err))
	}

	s.invalidate(ctx, userID)
	return nil
}

// Remove deletes the user's bookmark.
func (s *favoriteService) Remove(ctx context.Context, userID string, instituteID int64) error {
	removed, err := s.repo.Remove(ctx, userID, instituteID)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("removing favorite: %w", err))
	}
	if !removed {
		return apperror.NewNotFound("favorite not found")
	}

	s.invalidate(ctx, userID)
	return nil
}

// invalidate drops the user's cached list. The write already committed,
// so a failed invalidation is logged, not surfaced; the entry still
// expires by TTL.
func (s *favoriteService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, cache.Key(cacheKeyPrefix, userID)); err != nil {
		slog.Warn("favorites cache invalidation failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}
}
