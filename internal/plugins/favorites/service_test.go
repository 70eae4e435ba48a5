package favorites

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/eduseek/eduseek/internal/apperror"
	"github.com/eduseek/eduseek/internal/cache"
)

// mockFavoriteRepo implements FavoriteRepository for testing.
type mockFavoriteRepo struct {
	listByUserFn func(ctx context.Context, userID string) ([]Favorite, error)
	addFn        func(ctx context.Context, userID string, instituteID int64) error
	removeFn     func(ctx context.Context, userID string, instituteID int64) (bool, error)
	listCalls    int
}

func (m *mockFavoriteRepo) ListByUser(ctx context.Context, userID string) ([]Favorite, error) {
	m.listCalls++
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFavoriteRepo) Add(ctx context.Context, userID string, instituteID int64) error {
	if m.addFn != nil {
		return m.addFn(ctx, userID, instituteID)
	}
	return nil
}

func (m *mockFavoriteRepo) Remove(ctx context.Context, userID string, instituteID int64) (bool, error) {
	if m.removeFn != nil {
		return m.removeFn(ctx, userID, instituteID)
	}
	return true, nil
}

// mockChecker implements InstituteChecker.
type mockChecker struct {
	existsFn func(ctx context.Context, id int64) (bool, error)
}

func (m *mockChecker) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return true, nil
}

func newTestService(t *testing.T, repo *mockFavoriteRepo, checker *mockChecker) FavoriteService {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewFavoriteService(repo, checker, cache.New(rdb), 10*time.Minute)
}

func TestList_ReadThroughCache(t *testing.T) {
	repo := &mockFavoriteRepo{
		listByUserFn: func(ctx context.Context, userID string) ([]Favorite, error) {
			return []Favorite{{ID: 1, InstituteID: 7, InstituteName: "FPT University"}}, nil
		},
	}

	svc := newTestService(t, repo, &mockChecker{})
	ctx := context.Background()

	first, err := svc.List(ctx, "user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.List(ctx, "user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.listCalls != 1 {
		t.Errorf("expected one repository load, got %d", repo.listCalls)
	}
	if len(first) != 1 || len(second) != 1 || second[0].InstituteName != "FPT University" {
		t.Errorf("unexpected cached result: %+v", second)
	}
}

func TestList_EmptyIsSliceNotNil(t *testing.T) {
	svc := newTestService(t, &mockFavoriteRepo{}, &mockChecker{})
	favorites, err := svc.List(context.Background(), "user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if favorites == nil {
		t.Error("expected empty slice, not nil")
	}
}

func TestAdd_InvalidatesBeforeReturn(t *testing.T) {
	items := []Favorite{}
	repo := &mockFavoriteRepo{
		listByUserFn: func(ctx context.Context, userID string) ([]Favorite, error) {
			return items, nil
		},
		addFn: func(ctx context.Context, userID string, instituteID int64) error {
			items = append(items, Favorite{ID: 1, InstituteID: instituteID})
			return nil
		},
	}

	svc := newTestService(t, repo, &mockChecker{})
	ctx := context.Background()

	// Warm the cache with the empty list.
	if _, err := svc.List(ctx, "user-123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Add(ctx, "user-123", 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The very next read must see the new bookmark, not the cached list.
	after, err := svc.List(ctx, "user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(after) != 1 || after[0].InstituteID != 7 {
		t.Errorf("expected the fresh list after invalidation, got %+v", after)
	}
}

func TestAdd_UnknownInstitute(t *testing.T) {
	checker := &mockChecker{
		existsFn: func(ctx context.Context, id int64) (bool, error) {
			return false, nil
		},
	}

	svc := newTestService(t, &mockFavoriteRepo{}, checker)
	err := svc.Add(context.Background(), "user-123", 99)
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestAdd_DuplicateIsConflict(t *testing.T) {
	repo := &mockFavoriteRepo{
		addFn: func(ctx context.Context, userID string, instituteID int64) error {
			return apperror.NewConflict("institute is already in favorites")
		},
	}

	svc := newTestService(t, repo, &mockChecker{})
	err := svc.Add(context.Background(), "user-123", 7)
	if !apperror.IsKind(err, apperror.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAdd_MissingInstituteID(t *testing.T) {
	svc := newTestService(t, &mockFavoriteRepo{}, &mockChecker{})
	err := svc.Add(context.Background(), "user-123", 0)
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Fatalf("expected validation_error, got %v", err)
	}
}

func TestRemove_NotFound(t *testing.T) {
	repo := &mockFavoriteRepo{
		removeFn: func(ctx context.Context, userID string, instituteID int64) (bool, error) {
			return false, nil
		},
	}

	svc := newTestService(t, repo, &mockChecker{})
	err := svc.Remove(context.Background(), "user-123", 7)
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestRemove_InvalidatesCache(t *testing.T) {
	items := []Favorite{{ID: 1, InstituteID: 7}}
	repo := &mockFavoriteRepo{
		listByUserFn: func(ctx context.Context, userID string) ([]Favorite, error) {
			return items, nil
		},
		removeFn: func(ctx context.Context, userID string, instituteID int64) (bool, error) {
			items = []Favorite{}
			return true, nil
		},
	}

	svc := newTestService(t, repo, &mockChecker{})
	ctx := context.Background()

	if _, err := svc.List(ctx, "user-123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Remove(ctx, "user-123", 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, err := svc.List(ctx, "user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(after) != 0 {
		t.Errorf("expected empty list after removal, got %+v", after)
	}
}
