package query

import (
	"context"
	"errors"
	"testing"

	"github.com/shelfsense/shelfsense/internal/domain"
	domquery "github.com/shelfsense/shelfsense/internal/domain/query"
)

// --- Mocks ---

type namedCall struct {
	name     string
	minUnits int
	maxUnits int
	minRate  float64
	maxRate  float64
	maxStock int
	online   bool
	inStore  bool
	limit    int
}

type mockRepo struct {
	last     namedCall
	compiled domquery.Compiled
	result   []domain.Item
	err      error
}

func (m *mockRepo) QueryTopPerforming(_ context.Context, minUnits int, minRating float64, limit int) ([]domain.Item, error) {
	m.last = namedCall{name: "top", minUnits: minUnits, minRate: minRating, limit: limit}
	return m.result, m.err
}

func (m *mockRepo) QueryUnderperforming(_ context.Context, maxUnits int, maxRating float64) ([]domain.Item, error) {
	m.last = namedCall{name: "under", maxUnits: maxUnits, maxRate: maxRating}
	return m.result, m.err
}

func (m *mockRepo) QueryLowStockHighSales(_ context.Context, maxStock, minUnits int) ([]domain.Item, error) {
	m.last = namedCall{name: "lowstock", maxStock: maxStock, minUnits: minUnits}
	return m.result, m.err
}

func (m *mockRepo) QueryAvailability(_ context.Context, online, inStore bool, limit int) ([]domain.Item, error) {
	m.last = namedCall{name: "avail", online: online, inStore: inStore, limit: limit}
	return m.result, m.err
}

func (m *mockRepo) Query(_ context.Context, q domquery.Compiled) ([]domain.Item, error) {
	m.last = namedCall{name: "custom"}
	m.compiled = q
	return m.result, m.err
}

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

// --- Tests ---

func TestRunNamedQuery_TopPerforming(t *testing.T) {
	repo := &mockRepo{result: []domain.Item{{ItemID: "ITEM00001"}}}
	svc := New(repo)

	params := domquery.Criteria{MinUnitsSold: intp(100), MinAverageRating: floatp(4.0), Limit: intp(5)}
	items, err := svc.RunNamedQuery(context.Background(), domquery.TypeTopPerforming, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	want := namedCall{name: "top", minUnits: 100, minRate: 4.0, limit: 5}
	if repo.last != want {
		t.Errorf("expected call %+v, got %+v", want, repo.last)
	}
}

func TestRunNamedQuery_TopPerforming_DefaultParams(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo)

	if _, err := svc.RunNamedQuery(context.Background(), domquery.TypeTopPerforming, domquery.Criteria{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := namedCall{name: "top", minUnits: 0, minRate: 0, limit: domquery.DefaultLimit}
	if repo.last != want {
		t.Errorf("expected zero thresholds and default limit, got %+v", repo.last)
	}
}

func TestRunNamedQuery_Underperforming_IgnoresLimit(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo)

	params := domquery.Criteria{MaxUnitsSold: intp(10), MaxAverageRating: floatp(2.5), Limit: intp(3)}
	if _, err := svc.RunNamedQuery(context.Background(), domquery.TypeUnderperforming, params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := namedCall{name: "under", maxUnits: 10, maxRate: 2.5}
	if repo.last != want {
		t.Errorf("expected unpaged call %+v, got %+v", want, repo.last)
	}
}

func TestRunNamedQuery_LowStockHighSales(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo)

	params := domquery.Criteria{MaxStock: intp(20), MinUnitsSold: intp(200)}
	if _, err := svc.RunNamedQuery(context.Background(), domquery.TypeLowStockHighSales, params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := namedCall{name: "lowstock", maxStock: 20, minUnits: 200}
	if repo.last != want {
		t.Errorf("expected call %+v, got %+v", want, repo.last)
	}
}

func TestRunNamedQuery_AvailabilityFlags(t *testing.T) {
	cases := []struct {
		queryType string
		online    bool
		inStore   bool
	}{
		{domquery.TypeOnlineOnly, true, false},
		{domquery.TypeStoreOnly, false, true},
		{domquery.TypeOnlineAndStore, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.queryType, func(t *testing.T) {
			repo := &mockRepo{}
			svc := New(repo)

			if _, err := svc.RunNamedQuery(context.Background(), tc.queryType, domquery.Criteria{}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := namedCall{name: "avail", online: tc.online, inStore: tc.inStore, limit: domquery.DefaultLimit}
			if repo.last != want {
				t.Errorf("expected call %+v, got %+v", want, repo.last)
			}
		})
	}
}

func TestRunNamedQuery_UnknownType(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo)

	_, err := svc.RunNamedQuery(context.Background(), "bestSellersEver", domquery.Criteria{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrUnknownQueryType) {
		t.Errorf("expected ErrUnknownQueryType, got %v", err)
	}
	var typed *domain.UnknownQueryTypeError
	if !errors.As(err, &typed) || typed.Key != "bestSellersEver" {
		t.Errorf("expected typed error carrying the key, got %v", err)
	}
	if repo.last.name != "" {
		t.Errorf("repository should not be called for unknown type, got %+v", repo.last)
	}
}

func TestRunNamedQuery_RepoError(t *testing.T) {
	repoErr := errors.New("redis: connection refused")
	repo := &mockRepo{err: repoErr}
	svc := New(repo)

	_, err := svc.RunNamedQuery(context.Background(), domquery.TypeOnlineOnly, domquery.Criteria{})
	if !errors.Is(err, repoErr) {
		t.Errorf("expected repo error passed through, got %v", err)
	}
}

func TestRunCustomQuery_CompilesCriteria(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo)

	params := domquery.Criteria{
		OnlineAvailable: func() *bool { b := true; return &b }(),
		MinUnitsSold:    intp(50),
		SortBy:          "store_price",
		SortOrder:       "desc",
		Limit:           intp(7),
	}
	if _, err := svc.RunCustomQuery(context.Background(), params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.last.name != "custom" {
		t.Fatalf("expected custom query call, got %+v", repo.last)
	}
	got := repo.compiled
	if len(got.Conditions) != 2 {
		t.Errorf("expected 2 conditions, got %d", len(got.Conditions))
	}
	if got.SortBy != domquery.FieldStorePrice || !got.SortDesc {
		t.Errorf("expected store_price desc ordering, got %+v", got)
	}
	if got.Limit != 7 {
		t.Errorf("expected limit 7, got %d", got.Limit)
	}
}

func TestRunCustomQuery_InvalidSort(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo)

	_, err := svc.RunCustomQuery(context.Background(), domquery.Criteria{SortBy: "item_name"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
	if repo.last.name != "" {
		t.Errorf("repository should not be called on compile failure, got %+v", repo.last)
	}
}

func TestSupportedQueries_FixedSet(t *testing.T) {
	svc := New(&mockRepo{})

	metas := svc.SupportedQueries()
	if len(metas) != 6 {
		t.Fatalf("expected 6 supported queries, got %d", len(metas))
	}
	if metas[0].Key != domquery.TypeTopPerforming {
		t.Errorf("expected topPerformingItems first, got %q", metas[0].Key)
	}
	for _, m := range metas {
		if m.DisplayName == "" || m.Description == "" {
			t.Errorf("metadata for %q missing display name or description", m.Key)
		}
	}
}
