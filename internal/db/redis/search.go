package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/shelfsense/shelfsense/internal/db"
	"github.com/shelfsense/shelfsense/internal/domain/query"
)

// SearchList runs an unordered paged FT.SEARCH returning full hashes.
func (s *Store) SearchList(
	ctx context.Context, index string, filter []query.Condition, offset, limit int,
) (*db.SearchResult, error) {
	args := []string{
		index, buildFilter(filter),
		"LIMIT", strconv.Itoa(offset), strconv.Itoa(limit),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseSearchResult(raw)
}

// SearchSorted runs a paged FT.SEARCH ordered by one sortable field.
func (s *Store) SearchSorted(
	ctx context.Context, index string, filter []query.Condition,
	sortBy string, desc bool, offset, limit int,
) (*db.SearchResult, error) {
	args := []string{
		index, buildFilter(filter),
		"SORTBY", sortBy, sortOrder(desc),
		"LIMIT", strconv.Itoa(offset), strconv.Itoa(limit),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseSearchResult(raw)
}

// SearchAggregate runs FT.AGGREGATE with multi-key ordering. FT.SEARCH only
// sorts by a single field, so tie-broken orderings go through the aggregate
// pipeline with LOAD * to carry every stored field back.
func (s *Store) SearchAggregate(
	ctx context.Context, index string, filter []query.Condition,
	sortBy []db.SortField, limit int,
) (*db.SearchResult, error) {
	args := []string{index, buildFilter(filter), "LOAD", "*"}

	if len(sortBy) > 0 {
		args = append(args, "SORTBY", strconv.Itoa(len(sortBy)*2))
		for _, sf := range sortBy {
			args = append(args, "@"+sf.Name, sortOrder(sf.Desc))
		}
	}

	args = append(args, "LIMIT", "0", strconv.Itoa(limit), "DIALECT", "2")

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	return parseAggregateResult(raw)
}

// SearchCount returns the match count via FT.SEARCH with LIMIT 0 0.
func (s *Store) SearchCount(ctx context.Context, index string, filter []query.Condition) (int, error) {
	cmd := s.b().Arbitrary("FT.SEARCH").Args(index, buildFilter(filter), "LIMIT", "0", "0").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

func sortOrder(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}

// --- Result parsing ---

func parseSearchResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, total)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseAggregateResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	entries := make([]db.SearchEntry, 0, len(raw)-1)
	// 1-stride: [total, row1, row2, ...] where each row is a flat field-value array
	for i := 1; i < len(raw); i++ {
		fields, err := raw[i].ToArray()
		if err != nil {
			continue
		}
		entries = append(entries, db.SearchEntry{Fields: parseFieldPairs(fields)})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Filter building ---

// buildFilter translates a compiled condition list into an FT.SEARCH filter
// query string. This is the store-native half of the dual predicate; it must
// select the same membership as query.Compiled.Matches.
func buildFilter(conds []query.Condition) string {
	if len(conds) == 0 {
		return "*"
	}

	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		parts = append(parts, buildCondition(c))
	}
	return strings.Join(parts, " ")
}

func buildCondition(c query.Condition) string {
	if c.Equals != nil {
		return buildTagFilter(string(c.Field), strconv.FormatBool(*c.Equals))
	}
	if c.Match != "" {
		return buildTagFilter(string(c.Field), c.Match)
	}
	return buildNumericFilter(c)
}

func buildTagFilter(key, value string) string {
	escaped := tagEscaper.Replace(value)
	return fmt.Sprintf("@%s:{%s}", key, escaped)
}

func buildNumericFilter(c query.Condition) string {
	minBound := "-inf"
	maxBound := "+inf"

	if c.GT != nil {
		minBound = fmt.Sprintf("(%g", *c.GT)
	} else if c.GTE != nil {
		minBound = fmt.Sprintf("%g", *c.GTE)
	}

	if c.LT != nil {
		maxBound = fmt.Sprintf("(%g", *c.LT)
	} else if c.LTE != nil {
		maxBound = fmt.Sprintf("%g", *c.LTE)
	}

	return fmt.Sprintf("@%s:[%s %s]", string(c.Field), minBound, maxBound)
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)
