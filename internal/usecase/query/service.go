package query

import (
	"context"
	"fmt"

	"github.com/shelfsense/shelfsense/internal/domain"
	domquery "github.com/shelfsense/shelfsense/internal/domain/query"
)

// Service dispatches named catalog queries and executes custom criteria
// queries against the store.
type Service struct {
	repo Repository
}

// New creates a query service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// SupportedQueries returns metadata for every named query the dispatcher
// understands, in a fixed presentation order.
func (s *Service) SupportedQueries() []domquery.Metadata {
	return domquery.SupportedQueries()
}

// RunNamedQuery executes one of the supported named queries. Unset
// parameters fall back to zero values; limits fall back to the default
// page size. Underperforming items are intentionally returned unpaged.
func (s *Service) RunNamedQuery(
	ctx context.Context, queryType string, params domquery.Criteria,
) ([]domain.Item, error) {
	switch queryType {
	case domquery.TypeTopPerforming:
		return s.repo.QueryTopPerforming(
			ctx, intOrZero(params.MinUnitsSold), floatOrZero(params.MinAverageRating), params.EffectiveLimit(),
		)
	case domquery.TypeUnderperforming:
		return s.repo.QueryUnderperforming(
			ctx, intOrZero(params.MaxUnitsSold), floatOrZero(params.MaxAverageRating),
		)
	case domquery.TypeLowStockHighSales:
		return s.repo.QueryLowStockHighSales(
			ctx, intOrZero(params.MaxStock), intOrZero(params.MinUnitsSold),
		)
	case domquery.TypeOnlineOnly:
		return s.repo.QueryAvailability(ctx, true, false, params.EffectiveLimit())
	case domquery.TypeStoreOnly:
		return s.repo.QueryAvailability(ctx, false, true, params.EffectiveLimit())
	case domquery.TypeOnlineAndStore:
		return s.repo.QueryAvailability(ctx, true, true, params.EffectiveLimit())
	default:
		return nil, domain.NewUnknownQueryType(queryType)
	}
}

// RunCustomQuery compiles arbitrary criteria into store conditions and
// executes them.
func (s *Service) RunCustomQuery(
	ctx context.Context, params domquery.Criteria,
) ([]domain.Item, error) {
	compiled, err := params.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile criteria: %w", err)
	}
	return s.repo.Query(ctx, compiled)
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func floatOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
