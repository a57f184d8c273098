// Package item implements the catalog record store on the db layer: bulk
// scans, indexed lookups, and the store-native sorted/filtered queries the
// query dispatcher delegates to.
package item

import (
	"context"
	"errors"
	"fmt"

	"github.com/shelfsense/shelfsense/internal/db"
	"github.com/shelfsense/shelfsense/internal/domain"
	"github.com/shelfsense/shelfsense/internal/domain/query"
)

const (
	keyPrefix = "item:"
	indexName = "idx:items"

	scanPageSize = 500

	// maxUnpagedResults caps deliberately unpaged queries. The aggregate
	// pipeline needs an explicit LIMIT, so "all matches" means up to this
	// many rows.
	maxUnpagedResults = 10000
)

// store is the consumer interface for catalog items (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	SearchList(ctx context.Context, index string, filter []query.Condition, offset, limit int) (*db.SearchResult, error)
	SearchSorted(
		ctx context.Context, index string, filter []query.Condition,
		sortBy string, desc bool, offset, limit int,
	) (*db.SearchResult, error)
	SearchAggregate(
		ctx context.Context, index string, filter []query.Condition,
		sortBy []db.SortField, limit int,
	) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index string, filter []query.Condition) (int, error)
}

// Repo implements the record store contract consumed by the query and
// report services.
type Repo struct {
	store store
}

// New creates an item repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the catalog FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def := &db.IndexDefinition{
		Name:     indexName,
		Prefixes: []string{keyPrefix},
		Fields: []db.IndexField{
			{Name: fieldCategory, Type: db.IndexFieldTag},
			{Name: fieldBrand, Type: db.IndexFieldTag},
			{Name: fieldPromotion, Type: db.IndexFieldTag},
			{Name: fieldOnlineAvailable, Type: db.IndexFieldTag},
			{Name: fieldStoreAvailable, Type: db.IndexFieldTag},
			{Name: fieldUnitsSold, Type: db.IndexFieldNumeric, Sortable: true},
			{Name: fieldAverageRating, Type: db.IndexFieldNumeric, Sortable: true},
			{Name: fieldStorePrice, Type: db.IndexFieldNumeric, Sortable: true},
			{Name: fieldQuantityInStock, Type: db.IndexFieldNumeric, Sortable: true},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return storeErr("create index", err)
	}
	return nil
}

// Save upserts a single item hash.
func (r *Repo) Save(ctx context.Context, it *domain.Item) error {
	if err := r.store.HSet(ctx, keyPrefix+it.ItemID, itemToFields(it)); err != nil {
		return storeErr("save item", err)
	}
	return nil
}

// SaveAll upserts a batch of item hashes in one round-trip.
func (r *Repo) SaveAll(ctx context.Context, items []domain.Item) error {
	batch := make([]db.HashSetItem, len(items))
	for i := range items {
		batch[i] = db.HashSetItem{
			Key:    keyPrefix + items[i].ItemID,
			Fields: itemToFields(&items[i]),
		}
	}
	if err := r.store.HSetMulti(ctx, batch); err != nil {
		return storeErr("save items", err)
	}
	return nil
}

// Count returns the number of indexed items.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, indexName, nil)
	if err != nil {
		return 0, storeErr("count items", err)
	}
	return n, nil
}

// ScanAll returns every item in the catalog, paging through the index.
func (r *Repo) ScanAll(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	for offset := 0; ; offset += scanPageSize {
		res, err := r.store.SearchList(ctx, indexName, nil, offset, scanPageSize)
		if err != nil {
			return nil, storeErr("scan items", err)
		}
		items = append(items, entriesToItems(res)...)
		if offset+scanPageSize >= res.Total || len(res.Entries) == 0 {
			break
		}
	}
	return items, nil
}

// ScanPage returns the first limit items without any ordering guarantee.
func (r *Repo) ScanPage(ctx context.Context, limit int) ([]domain.Item, error) {
	res, err := r.store.SearchList(ctx, indexName, nil, 0, limit)
	if err != nil {
		return nil, storeErr("scan items", err)
	}
	return entriesToItems(res), nil
}

// FindByID returns a single item by identifier.
func (r *Repo) FindByID(ctx context.Context, id string) (domain.Item, error) {
	fields, err := r.store.HGetAll(ctx, keyPrefix+id)
	if err != nil {
		return domain.Item{}, storeErr("get item", err)
	}
	if len(fields) == 0 {
		return domain.Item{}, domain.ErrItemNotFound
	}
	return itemFromFields(fields), nil
}

// FindByCategory returns all items in a category. TAG matching is
// case-insensitive on the store side.
func (r *Repo) FindByCategory(ctx context.Context, category string) ([]domain.Item, error) {
	filter := []query.Condition{{Field: query.FieldCategory, Match: category}}
	res, err := r.store.SearchList(ctx, indexName, filter, 0, maxUnpagedResults)
	if err != nil {
		return nil, storeErr("find by category", err)
	}
	return entriesToItems(res), nil
}

// QueryAvailability returns items with the exact availability flag
// combination, sorted by store price descending, paged to limit.
func (r *Repo) QueryAvailability(ctx context.Context, online, inStore bool, limit int) ([]domain.Item, error) {
	filter := []query.Condition{
		{Field: query.FieldOnlineAvailable, Equals: &online},
		{Field: query.FieldStoreAvailable, Equals: &inStore},
	}
	res, err := r.store.SearchSorted(ctx, indexName, filter, fieldStorePrice, true, 0, limit)
	if err != nil {
		return nil, storeErr("query availability", err)
	}
	return entriesToItems(res), nil
}

// QueryTopPerforming returns items with unitsSold >= minUnits and rating >=
// minRating, sorted descending by units sold then rating, paged to limit.
func (r *Repo) QueryTopPerforming(ctx context.Context, minUnits int, minRating float64, limit int) ([]domain.Item, error) {
	filter := []query.Condition{
		{Field: query.FieldUnitsSold, GTE: f64(float64(minUnits))},
		{Field: query.FieldAverageRating, GTE: f64(minRating)},
	}
	sortBy := []db.SortField{
		{Name: fieldUnitsSold, Desc: true},
		{Name: fieldAverageRating, Desc: true},
	}
	res, err := r.store.SearchAggregate(ctx, indexName, filter, sortBy, limit)
	if err != nil {
		return nil, storeErr("query top performing", err)
	}
	return entriesToItems(res), nil
}

// QueryUnderperforming returns items with unitsSold <= maxUnits and rating
// <= maxRating, ascending by units sold then rating. Unpaged by contract:
// callers apply their own limit downstream.
func (r *Repo) QueryUnderperforming(ctx context.Context, maxUnits int, maxRating float64) ([]domain.Item, error) {
	filter := []query.Condition{
		{Field: query.FieldUnitsSold, LTE: f64(float64(maxUnits))},
		{Field: query.FieldAverageRating, LTE: f64(maxRating)},
	}
	sortBy := []db.SortField{
		{Name: fieldUnitsSold},
		{Name: fieldAverageRating},
	}
	res, err := r.store.SearchAggregate(ctx, indexName, filter, sortBy, maxUnpagedResults)
	if err != nil {
		return nil, storeErr("query underperforming", err)
	}
	return entriesToItems(res), nil
}

// QueryLowStockHighSales returns items with stock strictly below maxStock
// and units sold strictly above minUnits, descending by units sold.
func (r *Repo) QueryLowStockHighSales(ctx context.Context, maxStock, minUnits int) ([]domain.Item, error) {
	filter := []query.Condition{
		{Field: query.FieldQuantityInStock, LT: f64(float64(maxStock))},
		{Field: query.FieldUnitsSold, GT: f64(float64(minUnits))},
	}
	res, err := r.store.SearchSorted(ctx, indexName, filter, fieldUnitsSold, true, 0, maxUnpagedResults)
	if err != nil {
		return nil, storeErr("query low stock high sales", err)
	}
	return entriesToItems(res), nil
}

// Query runs a compiled custom query store-natively: the same condition list
// the in-memory predicate evaluates, translated by the backend.
func (r *Repo) Query(ctx context.Context, q query.Compiled) ([]domain.Item, error) {
	var (
		res *db.SearchResult
		err error
	)
	if q.SortBy != "" {
		res, err = r.store.SearchSorted(ctx, indexName, q.Conditions, string(q.SortBy), q.SortDesc, 0, q.Limit)
	} else {
		res, err = r.store.SearchList(ctx, indexName, q.Conditions, 0, q.Limit)
	}
	if err != nil {
		return nil, storeErr("custom query", err)
	}
	return entriesToItems(res), nil
}

func entriesToItems(res *db.SearchResult) []domain.Item {
	if res == nil {
		return nil
	}
	items := make([]domain.Item, 0, len(res.Entries))
	for _, e := range res.Entries {
		items = append(items, itemFromFields(e.Fields))
	}
	return items
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

func f64(v float64) *float64 { return &v }
