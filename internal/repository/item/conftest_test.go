package item

import (
	"context"
	"testing"
	"time"

	"github.com/shelfsense/shelfsense/internal/db"
	"github.com/shelfsense/shelfsense/internal/domain"
	"github.com/shelfsense/shelfsense/internal/domain/query"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn        func(ctx context.Context, key string, fields map[string]string) error
	hsetMultiFn   func(ctx context.Context, items []db.HashSetItem) error
	hgetAllFn     func(ctx context.Context, key string) (map[string]string, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	searchListFn  func(
		ctx context.Context, index string, filter []query.Condition, offset, limit int,
	) (*db.SearchResult, error)
	searchSortedFn func(
		ctx context.Context, index string, filter []query.Condition,
		sortBy string, desc bool, offset, limit int,
	) (*db.SearchResult, error)
	searchAggregateFn func(
		ctx context.Context, index string, filter []query.Condition,
		sortBy []db.SortField, limit int,
	) (*db.SearchResult, error)
	searchCountFn func(ctx context.Context, index string, filter []query.Condition) (int, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) SearchList(
	ctx context.Context, index string, filter []query.Condition, offset, limit int,
) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, index, filter, offset, limit)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchSorted(
	ctx context.Context, index string, filter []query.Condition,
	sortBy string, desc bool, offset, limit int,
) (*db.SearchResult, error) {
	if m.searchSortedFn != nil {
		return m.searchSortedFn(ctx, index, filter, sortBy, desc, offset, limit)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchAggregate(
	ctx context.Context, index string, filter []query.Condition,
	sortBy []db.SortField, limit int,
) (*db.SearchResult, error) {
	if m.searchAggregateFn != nil {
		return m.searchAggregateFn(ctx, index, filter, sortBy, limit)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(ctx context.Context, index string, filter []query.Condition) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, index, filter)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms)
	return repo, ms
}

func testItem() domain.Item {
	return domain.Item{
		ItemID:          "ITEM00042",
		ItemName:        "Ergonomic Steel Chair",
		SKU:             "SKU12345678",
		Barcode:         "4006381333931",
		Brand:           "Acme",
		Category:        "Furniture",
		MSRP:            199.99,
		StorePrice:      149.5,
		EcomPrice:       139.95,
		CostPrice:       92.3,
		DiscountPercent: 25.25,
		Promotion:       "Spring Sale",
		PromoStart:      time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		PromoEnd:        time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		QuantityInStock: 37,
		OnlineAvailable: true,
		StoreAvailable:  false,
		CreatedAt:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		LastPurchasedAt: time.Date(2025, 5, 20, 8, 30, 0, 0, time.UTC),
		AverageRating:   4.3,
		NumberOfReviews: 210,
		UnitsSold:       480,
	}
}
