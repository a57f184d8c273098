package item

import (
	"context"
	"errors"
	"testing"

	"github.com/shelfsense/shelfsense/internal/db"
	"github.com/shelfsense/shelfsense/internal/domain"
	"github.com/shelfsense/shelfsense/internal/domain/query"
)

// --- DTO round-trip ---

func TestItemFields_RoundTrip(t *testing.T) {
	want := testItem()

	got := itemFromFields(itemToFields(&want))

	if got.ItemID != want.ItemID || got.ItemName != want.ItemName || got.SKU != want.SKU {
		t.Errorf("identity fields: got %+v", got)
	}
	if got.StorePrice != want.StorePrice || got.DiscountPercent != want.DiscountPercent {
		t.Errorf("pricing fields: got %+v", got)
	}
	if got.OnlineAvailable != want.OnlineAvailable || got.StoreAvailable != want.StoreAvailable {
		t.Errorf("availability flags: got online=%v store=%v", got.OnlineAvailable, got.StoreAvailable)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || !got.LastPurchasedAt.Equal(want.LastPurchasedAt) {
		t.Errorf("timestamps: got created=%v purchased=%v", got.CreatedAt, got.LastPurchasedAt)
	}
	if !got.LastUpdated.IsZero() {
		t.Errorf("zero timestamp should stay zero, got %v", got.LastUpdated)
	}
	if got.UnitsSold != want.UnitsSold || got.AverageRating != want.AverageRating {
		t.Errorf("metrics: got sold=%d rating=%v", got.UnitsSold, got.AverageRating)
	}
}

func TestItemFromFields_UnparsableDegradesToZero(t *testing.T) {
	got := itemFromFields(map[string]string{
		fieldItemID:    "ITEM00001",
		fieldUnitsSold: "not-a-number",
		fieldCreatedAt: "garbage",
	})
	if got.ItemID != "ITEM00001" {
		t.Errorf("id: got %q", got.ItemID)
	}
	if got.UnitsSold != 0 {
		t.Errorf("units sold: got %d, want 0", got.UnitsSold)
	}
	if !got.CreatedAt.IsZero() {
		t.Errorf("created at: got %v, want zero", got.CreatedAt)
	}
}

// --- EnsureIndex ---

func TestEnsureIndex_AlreadyExists(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		if def.Name != indexName {
			t.Errorf("index name: got %s", def.Name)
		}
		return db.ErrIndexExists
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("existing index must not error: %v", err)
	}
}

func TestEnsureIndex_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		return errors.New("conn reset")
	}

	err := repo.EnsureIndex(context.Background())
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

// --- Save / SaveAll ---

func TestSave_KeyAndFields(t *testing.T) {
	repo, ms := newTestRepo(t)
	it := testItem()

	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		if key != "item:ITEM00042" {
			t.Errorf("key: got %s", key)
		}
		if fields[fieldUnitsSold] != "480" {
			t.Errorf("units_sold field: got %s", fields[fieldUnitsSold])
		}
		return nil
	}

	if err := repo.Save(context.Background(), &it); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSaveAll_BatchKeys(t *testing.T) {
	repo, ms := newTestRepo(t)

	var captured []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		captured = items
		return nil
	}

	a, b := testItem(), testItem()
	b.ItemID = "ITEM00043"
	if err := repo.SaveAll(context.Background(), []domain.Item{a, b}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(captured) != 2 {
		t.Fatalf("batch size: got %d", len(captured))
	}
	if captured[0].Key != "item:ITEM00042" || captured[1].Key != "item:ITEM00043" {
		t.Errorf("keys: got %s, %s", captured[0].Key, captured[1].Key)
	}
}

// --- FindByID ---

func TestFindByID_Found(t *testing.T) {
	repo, ms := newTestRepo(t)
	it := testItem()

	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "item:ITEM00042" {
			t.Errorf("key: got %s", key)
		}
		return itemToFields(&it), nil
	}

	got, err := repo.FindByID(context.Background(), "ITEM00042")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ItemName != it.ItemName {
		t.Errorf("name: got %q", got.ItemName)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.FindByID(context.Background(), "ITEM99999")
	if !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

// --- Scans ---

func TestScanAll_PagesThroughIndex(t *testing.T) {
	repo, ms := newTestRepo(t)
	it := testItem()

	var offsets []int
	ms.searchListFn = func(
		_ context.Context, _ string, _ []query.Condition, offset, limit int,
	) (*db.SearchResult, error) {
		offsets = append(offsets, offset)
		if limit != scanPageSize {
			t.Errorf("limit: got %d, want %d", limit, scanPageSize)
		}
		entries := make([]db.SearchEntry, 0, scanPageSize)
		remaining := scanPageSize + 3 - offset
		for i := 0; i < remaining && i < scanPageSize; i++ {
			entries = append(entries, db.SearchEntry{Fields: itemToFields(&it)})
		}
		return &db.SearchResult{Total: scanPageSize + 3, Entries: entries}, nil
	}

	items, err := repo.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != scanPageSize+3 {
		t.Errorf("items: got %d, want %d", len(items), scanPageSize+3)
	}
	if len(offsets) != 2 || offsets[0] != 0 || offsets[1] != scanPageSize {
		t.Errorf("offsets: got %v", offsets)
	}
}

// --- Named queries ---

func TestQueryAvailability_FilterAndSort(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchSortedFn = func(
		_ context.Context, index string, filter []query.Condition,
		sortBy string, desc bool, offset, limit int,
	) (*db.SearchResult, error) {
		if index != indexName {
			t.Errorf("index: got %s", index)
		}
		if len(filter) != 2 {
			t.Fatalf("filter: got %d conditions", len(filter))
		}
		if filter[0].Field != query.FieldOnlineAvailable || *filter[0].Equals != true {
			t.Errorf("online condition: got %+v", filter[0])
		}
		if filter[1].Field != query.FieldStoreAvailable || *filter[1].Equals != false {
			t.Errorf("store condition: got %+v", filter[1])
		}
		if sortBy != fieldStorePrice || !desc {
			t.Errorf("sort: got %s desc=%v", sortBy, desc)
		}
		if offset != 0 || limit != 10 {
			t.Errorf("paging: got offset=%d limit=%d", offset, limit)
		}
		return &db.SearchResult{}, nil
	}

	if _, err := repo.QueryAvailability(context.Background(), true, false, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryTopPerforming_AggregateOrdering(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchAggregateFn = func(
		_ context.Context, _ string, filter []query.Condition,
		sortBy []db.SortField, limit int,
	) (*db.SearchResult, error) {
		if len(filter) != 2 {
			t.Fatalf("filter: got %d conditions", len(filter))
		}
		if *filter[0].GTE != 100 || *filter[1].GTE != 4.0 {
			t.Errorf("bounds: got %v, %v", *filter[0].GTE, *filter[1].GTE)
		}
		if len(sortBy) != 2 || sortBy[0].Name != fieldUnitsSold || !sortBy[0].Desc ||
			sortBy[1].Name != fieldAverageRating || !sortBy[1].Desc {
			t.Errorf("sort: got %+v", sortBy)
		}
		if limit != 5 {
			t.Errorf("limit: got %d", limit)
		}
		return &db.SearchResult{}, nil
	}

	if _, err := repo.QueryTopPerforming(context.Background(), 100, 4.0, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryUnderperforming_AscendingUnpaged(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchAggregateFn = func(
		_ context.Context, _ string, filter []query.Condition,
		sortBy []db.SortField, limit int,
	) (*db.SearchResult, error) {
		if *filter[0].LTE != 50 || *filter[1].LTE != 2.5 {
			t.Errorf("bounds: got %v, %v", *filter[0].LTE, *filter[1].LTE)
		}
		if sortBy[0].Desc || sortBy[1].Desc {
			t.Errorf("expected ascending sort, got %+v", sortBy)
		}
		if limit != maxUnpagedResults {
			t.Errorf("limit: got %d, want %d", limit, maxUnpagedResults)
		}
		return &db.SearchResult{}, nil
	}

	if _, err := repo.QueryUnderperforming(context.Background(), 50, 2.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryLowStockHighSales_StrictBounds(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchSortedFn = func(
		_ context.Context, _ string, filter []query.Condition,
		sortBy string, desc bool, _, _ int,
	) (*db.SearchResult, error) {
		if filter[0].Field != query.FieldQuantityInStock || *filter[0].LT != 20 {
			t.Errorf("stock condition: got %+v", filter[0])
		}
		if filter[1].Field != query.FieldUnitsSold || *filter[1].GT != 200 {
			t.Errorf("sales condition: got %+v", filter[1])
		}
		if sortBy != fieldUnitsSold || !desc {
			t.Errorf("sort: got %s desc=%v", sortBy, desc)
		}
		return &db.SearchResult{}, nil
	}

	if _, err := repo.QueryLowStockHighSales(context.Background(), 20, 200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- Custom query ---

func TestQuery_SortedWhenOrderingRequested(t *testing.T) {
	repo, ms := newTestRepo(t)

	sortedCalled := false
	ms.searchSortedFn = func(
		_ context.Context, _ string, _ []query.Condition,
		sortBy string, desc bool, _, limit int,
	) (*db.SearchResult, error) {
		sortedCalled = true
		if sortBy != "store_price" || !desc || limit != 7 {
			t.Errorf("got sortBy=%s desc=%v limit=%d", sortBy, desc, limit)
		}
		return &db.SearchResult{}, nil
	}

	_, err := repo.Query(context.Background(), query.Compiled{
		SortBy:   query.FieldStorePrice,
		SortDesc: true,
		Limit:    7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sortedCalled {
		t.Fatal("expected SearchSorted to be used")
	}
}

func TestQuery_UnsortedUsesList(t *testing.T) {
	repo, ms := newTestRepo(t)

	listCalled := false
	ms.searchListFn = func(
		_ context.Context, _ string, _ []query.Condition, _, limit int,
	) (*db.SearchResult, error) {
		listCalled = true
		if limit != 10 {
			t.Errorf("limit: got %d", limit)
		}
		return &db.SearchResult{}, nil
	}

	if _, err := repo.Query(context.Background(), query.Compiled{Limit: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !listCalled {
		t.Fatal("expected SearchList to be used")
	}
}

func TestQuery_StoreErrorWrapped(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchListFn = func(
		_ context.Context, _ string, _ []query.Condition, _, _ int,
	) (*db.SearchResult, error) {
		return nil, errors.New("conn reset")
	}

	_, err := repo.Query(context.Background(), query.Compiled{Limit: 10})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
