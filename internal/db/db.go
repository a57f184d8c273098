package db

import (
	"context"
	"time"

	"github.com/shelfsense/shelfsense/internal/domain/query"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	HashStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// SortField names one ordering key for an aggregate query.
type SortField struct {
	Name string
	Desc bool
}

// Searcher provides filtered and sorted queries over FT indexes. Filters
// arrive as compiled condition lists; each backend translates them into its
// native query syntax.
type Searcher interface {
	// SearchList runs an unordered paged search.
	SearchList(ctx context.Context, index string, filter []query.Condition, offset, limit int) (*SearchResult, error)
	// SearchSorted runs a paged search ordered by a single sortable field.
	SearchSorted(
		ctx context.Context, index string, filter []query.Condition,
		sortBy string, desc bool, offset, limit int,
	) (*SearchResult, error)
	// SearchAggregate runs a search with multi-key ordering, loading all
	// stored fields per row.
	SearchAggregate(
		ctx context.Context, index string, filter []query.Condition,
		sortBy []SortField, limit int,
	) (*SearchResult, error)
	// SearchCount returns the filter match count.
	SearchCount(ctx context.Context, index string, filter []query.Condition) (int, error)
}

// SearchResult holds a page of search matches.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is one matched record. Key is empty for aggregate rows, which
// identify themselves through their loaded fields.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}

// IndexFieldType is the FT field type.
type IndexFieldType string

// Supported FT field types.
const (
	IndexFieldNumeric IndexFieldType = "NUMERIC"
	IndexFieldTag     IndexFieldType = "TAG"
	IndexFieldText    IndexFieldType = "TEXT"
)

// IndexField describes one indexed attribute.
type IndexField struct {
	Name             string
	Type             IndexFieldType
	Sortable         bool
	TagSeparator     string
	TagCaseSensitive bool
}

// IndexDefinition describes an FT index over hash keys with given prefixes.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}
