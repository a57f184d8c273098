package report

import (
	"context"

	"github.com/shelfsense/shelfsense/internal/domain"
)

// Repository defines the storage contract for the report generators.
// Reporters only read; nothing here mutates the catalog.
type Repository interface {
	ScanAll(ctx context.Context) ([]domain.Item, error)
	ScanPage(ctx context.Context, limit int) ([]domain.Item, error)
	FindByID(ctx context.Context, id string) (domain.Item, error)
	FindByCategory(ctx context.Context, category string) ([]domain.Item, error)
	QueryAvailability(ctx context.Context, online, inStore bool, limit int) ([]domain.Item, error)
	QueryTopPerforming(ctx context.Context, minUnits int, minRating float64, limit int) ([]domain.Item, error)
}
