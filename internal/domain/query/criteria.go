// Package query defines filter criteria for catalog queries and compiles
// them into a declarative constraint list. The same compiled form feeds both
// the in-memory record predicate and the store-native query builder, so the
// two filtering modes cannot diverge on membership.
package query

import (
	"sort"
	"strings"

	"github.com/shelfsense/shelfsense/internal/domain"
)

// DefaultLimit applies when a criteria carries no explicit limit.
const DefaultLimit = 10

// Field names an indexed item attribute, matching the stored hash field.
type Field string

// Filterable and sortable item fields.
const (
	FieldUnitsSold       Field = "units_sold"
	FieldAverageRating   Field = "average_rating"
	FieldQuantityInStock Field = "quantity_in_stock"
	FieldStorePrice      Field = "store_price"
	FieldEcomPrice       Field = "ecom_price"
	FieldMSRP            Field = "msrp"
	FieldCostPrice       Field = "cost_price"
	FieldDiscountPercent Field = "discount_percent"
	FieldNumberOfReviews Field = "number_of_reviews"
	FieldOnlineAvailable Field = "online_available"
	FieldStoreAvailable  Field = "store_available"
	FieldCategory        Field = "category"
	FieldBrand           Field = "brand"
	FieldPromotion       Field = "promotion"
)

// numericValue maps each numeric field to its accessor.
var numericValue = map[Field]func(*domain.Item) float64{
	FieldUnitsSold:       func(it *domain.Item) float64 { return float64(it.UnitsSold) },
	FieldAverageRating:   func(it *domain.Item) float64 { return it.AverageRating },
	FieldQuantityInStock: func(it *domain.Item) float64 { return float64(it.QuantityInStock) },
	FieldStorePrice:      func(it *domain.Item) float64 { return it.StorePrice },
	FieldEcomPrice:       func(it *domain.Item) float64 { return it.EcomPrice },
	FieldMSRP:            func(it *domain.Item) float64 { return it.MSRP },
	FieldCostPrice:       func(it *domain.Item) float64 { return it.CostPrice },
	FieldDiscountPercent: func(it *domain.Item) float64 { return it.DiscountPercent },
	FieldNumberOfReviews: func(it *domain.Item) float64 { return float64(it.NumberOfReviews) },
}

// boolValue maps each availability flag to its accessor.
var boolValue = map[Field]func(*domain.Item) bool{
	FieldOnlineAvailable: func(it *domain.Item) bool { return it.OnlineAvailable },
	FieldStoreAvailable:  func(it *domain.Item) bool { return it.StoreAvailable },
}

// stringValue maps each tag field to its accessor. Tag matching is
// case-insensitive, mirroring the store's TAG field semantics.
var stringValue = map[Field]func(*domain.Item) string{
	FieldCategory:  func(it *domain.Item) string { return it.Category },
	FieldBrand:     func(it *domain.Item) string { return it.Brand },
	FieldPromotion: func(it *domain.Item) string { return it.Promotion },
}

// Criteria is an ephemeral, caller-constructed constraint set. Every field
// is optional; nil means no constraint. Numeric bounds are inclusive.
type Criteria struct {
	OnlineAvailable  *bool    `json:"onlineAvailable,omitempty"`
	StoreAvailable   *bool    `json:"storeAvailable,omitempty"`
	MinUnitsSold     *int     `json:"minUnitsSold,omitempty"`
	MaxUnitsSold     *int     `json:"maxUnitsSold,omitempty"`
	MinAverageRating *float64 `json:"minAverageRating,omitempty"`
	MaxAverageRating *float64 `json:"maxAverageRating,omitempty"`
	MaxStock         *int     `json:"maxStock,omitempty"`
	SortBy           string   `json:"sortBy,omitempty"`
	SortOrder        string   `json:"sortOrder,omitempty"`
	Limit            *int     `json:"limit,omitempty"`
}

// EffectiveLimit returns the requested limit or DefaultLimit.
func (c Criteria) EffectiveLimit() int {
	if c.Limit == nil || *c.Limit <= 0 {
		return DefaultLimit
	}
	return *c.Limit
}

// Condition is a single compiled constraint over one field: a boolean
// equality, an exact tag match, or a numeric range with inclusive or strict
// bounds (open-ended on nil sides).
type Condition struct {
	Field  Field
	Equals *bool
	Match  string
	GT     *float64
	GTE    *float64
	LT     *float64
	LTE    *float64
}

// Compiled is the executable form of a Criteria: the constraint list plus
// resolved ordering and paging.
type Compiled struct {
	Conditions []Condition
	SortBy     Field // empty when no ordering was requested
	SortDesc   bool
	Limit      int
}

// Compile validates the criteria and produces the constraint list. A sort
// key naming a non-sortable field or an unrecognized sort order fails with
// domain.ErrInvalidQuery instead of being silently ignored.
func (c Criteria) Compile() (Compiled, error) {
	q := Compiled{Limit: c.EffectiveLimit()}

	if c.OnlineAvailable != nil {
		q.Conditions = append(q.Conditions, Condition{Field: FieldOnlineAvailable, Equals: c.OnlineAvailable})
	}
	if c.StoreAvailable != nil {
		q.Conditions = append(q.Conditions, Condition{Field: FieldStoreAvailable, Equals: c.StoreAvailable})
	}
	if c.MinUnitsSold != nil {
		q.Conditions = append(q.Conditions, Condition{Field: FieldUnitsSold, GTE: intBound(*c.MinUnitsSold)})
	}
	if c.MaxUnitsSold != nil {
		q.Conditions = append(q.Conditions, Condition{Field: FieldUnitsSold, LTE: intBound(*c.MaxUnitsSold)})
	}
	if c.MinAverageRating != nil {
		q.Conditions = append(q.Conditions, Condition{Field: FieldAverageRating, GTE: c.MinAverageRating})
	}
	if c.MaxAverageRating != nil {
		q.Conditions = append(q.Conditions, Condition{Field: FieldAverageRating, LTE: c.MaxAverageRating})
	}
	if c.MaxStock != nil {
		q.Conditions = append(q.Conditions, Condition{Field: FieldQuantityInStock, LTE: intBound(*c.MaxStock)})
	}

	if c.SortBy != "" {
		f := Field(c.SortBy)
		if _, ok := numericValue[f]; !ok {
			return Compiled{}, domain.NewInvalidQuery("sortBy", "unknown sort field "+c.SortBy)
		}
		q.SortBy = f
	}
	switch strings.ToLower(c.SortOrder) {
	case "", "asc":
	case "desc":
		q.SortDesc = true
	default:
		return Compiled{}, domain.NewInvalidQuery("sortOrder", `must be "asc" or "desc"`)
	}

	return q, nil
}

// Matches reports whether the item satisfies every compiled condition.
// This is the in-memory half of the dual predicate: membership must agree
// with the store-native translation of the same condition list.
func (q Compiled) Matches(it *domain.Item) bool {
	for _, cond := range q.Conditions {
		if !cond.Matches(it) {
			return false
		}
	}
	return true
}

// Apply filters, orders, and truncates a snapshot in memory. It is the
// in-process counterpart of executing the compiled query against the store.
func (q Compiled) Apply(items []domain.Item) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	for i := range items {
		if q.Matches(&items[i]) {
			out = append(out, items[i])
		}
	}
	if q.SortBy != "" {
		get := numericValue[q.SortBy]
		sort.SliceStable(out, func(i, j int) bool {
			if q.SortDesc {
				return get(&out[i]) > get(&out[j])
			}
			return get(&out[i]) < get(&out[j])
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// Matches evaluates a single condition against an item.
func (c Condition) Matches(it *domain.Item) bool {
	if c.Equals != nil {
		get, ok := boolValue[c.Field]
		return ok && get(it) == *c.Equals
	}
	if c.Match != "" {
		get, ok := stringValue[c.Field]
		return ok && strings.EqualFold(get(it), c.Match)
	}
	get, ok := numericValue[c.Field]
	if !ok {
		return false
	}
	v := get(it)
	if c.GT != nil && v <= *c.GT {
		return false
	}
	if c.GTE != nil && v < *c.GTE {
		return false
	}
	if c.LT != nil && v >= *c.LT {
		return false
	}
	if c.LTE != nil && v > *c.LTE {
		return false
	}
	return true
}

func intBound(v int) *float64 {
	f := float64(v)
	return &f
}
