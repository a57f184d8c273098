package query

import (
	"context"

	"github.com/shelfsense/shelfsense/internal/domain"
	domquery "github.com/shelfsense/shelfsense/internal/domain/query"
)

// Repository defines the storage contract for named and custom queries.
type Repository interface {
	QueryTopPerforming(ctx context.Context, minUnits int, minRating float64, limit int) ([]domain.Item, error)
	QueryUnderperforming(ctx context.Context, maxUnits int, maxRating float64) ([]domain.Item, error)
	QueryLowStockHighSales(ctx context.Context, maxStock, minUnits int) ([]domain.Item, error)
	QueryAvailability(ctx context.Context, online, inStore bool, limit int) ([]domain.Item, error)
	Query(ctx context.Context, q domquery.Compiled) ([]domain.Item, error)
}
