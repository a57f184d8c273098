// Package report implements the analytics report generators. Every reporter
// is a pure read: it takes a catalog snapshot (or a query result), computes
// derived values fresh, and renders a formatted text report.
package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shelfsense/shelfsense/internal/domain"
	domquery "github.com/shelfsense/shelfsense/internal/domain/query"
)

const defaultGroupPageSize = 10

// Service generates text reports over the item catalog.
type Service struct {
	repo Repository
	now  func() time.Time
}

// New creates a report service.
func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// groupValue maps a group-by field name to its string accessor. Grouping by
// any other name lands every item in a single invalid-field bucket instead
// of failing the call.
var groupValue = map[string]func(*domain.Item) string{
	"itemId":          func(it *domain.Item) string { return it.ItemID },
	"itemName":        func(it *domain.Item) string { return it.ItemName },
	"sku":             func(it *domain.Item) string { return it.SKU },
	"barcode":         func(it *domain.Item) string { return it.Barcode },
	"brand":           func(it *domain.Item) string { return it.Brand },
	"category":        func(it *domain.Item) string { return it.Category },
	"promotion":       func(it *domain.Item) string { return it.Promotion },
	"onlineAvailable": func(it *domain.Item) string { return strconv.FormatBool(it.OnlineAvailable) },
	"storeAvailable":  func(it *domain.Item) string { return strconv.FormatBool(it.StoreAvailable) },
}

// SummarizeFiltered renders an item-by-item summary of the snapshot subset
// selected by the criteria. Filtering runs in process over a full scan, so
// membership matches what the store-native execution of the same criteria
// would return.
func (s *Service) SummarizeFiltered(ctx context.Context, criteria domquery.Criteria) (string, error) {
	compiled, err := criteria.Compile()
	if err != nil {
		return "", fmt.Errorf("compile criteria: %w", err)
	}

	items, err := s.repo.ScanAll(ctx)
	if err != nil {
		return "", fmt.Errorf("scan items: %w", err)
	}

	return summarizeItems("Filtered Items", compiled.Apply(items)), nil
}

// SummarizeByField groups the top-performing page by the named field and
// renders each group's members.
func (s *Service) SummarizeByField(
	ctx context.Context, groupBy string, minUnitsSold int, minAverageRating float64, limit int,
) (string, error) {
	pageSize := limit
	if pageSize <= 0 {
		pageSize = defaultGroupPageSize
	}

	items, err := s.repo.QueryTopPerforming(ctx, minUnitsSold, minAverageRating, pageSize)
	if err != nil {
		return "", fmt.Errorf("query top performing: %w", err)
	}
	if len(items) == 0 {
		return "No items found to group.", nil
	}

	field := strings.TrimSpace(groupBy)
	get, ok := groupValue[field]
	if !ok {
		invalid := "Invalid field: " + field
		get = func(*domain.Item) string { return invalid }
	}

	// Buckets iterate in first-seen order so a call's output is stable.
	var keys []string
	groups := make(map[string][]domain.Item)
	for i := range items {
		key := get(&items[i])
		if key == "" {
			key = "Unknown"
		}
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], items[i])
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Grouped by '%s':\n", field)
	for _, key := range keys {
		fmt.Fprintf(&sb, "\n== %s ==\n", key)
		for i, it := range groups[key] {
			fmt.Fprintf(&sb, "%d. %q (ID: %s, Sold: %d, Rating: %.1f, Price: $%.2f)\n",
				i+1, it.ItemName, it.ItemID, it.UnitsSold, it.AverageRating, it.StorePrice)
		}
	}
	return sb.String(), nil
}

func summarizeItems(title string, items []domain.Item) string {
	if len(items) == 0 {
		return "No items found for: " + title
	}
	var sb strings.Builder
	sb.WriteString(title + ":\n")
	for i, it := range items {
		fmt.Fprintf(&sb,
			"%d. Item Name: %q, Item ID: %q, SKU: %q, Category: %q, Units Sold: %d, Average Rating: %.1f\n",
			i+1, it.ItemName, it.ItemID, it.SKU, it.Category, it.UnitsSold, it.AverageRating)
	}
	return sb.String()
}
