package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shelfsense/shelfsense/internal/domain"
)

// demand forecasting always looks back over the trailing month
const forecastLookbackDays = 30

// StockReplenishment recommends reorder quantities for items whose current
// stock covers fewer than minDaysOfStock days of sales. Daily sales are
// approximated as unitsSold spread over the lookback window.
func (s *Service) StockReplenishment(ctx context.Context, minDaysOfStock, salesLookbackDays int) (string, error) {
	if minDaysOfStock <= 0 || salesLookbackDays <= 0 {
		return "Both minDaysOfStock and salesLookbackDays must be greater than zero.", nil
	}

	items, err := s.repo.ScanAll(ctx)
	if err != nil {
		return "", fmt.Errorf("scan items: %w", err)
	}

	var lines []string
	for i := range items {
		it := &items[i]
		dailySales := float64(it.UnitsSold) / float64(salesLookbackDays)
		if dailySales <= 0 {
			continue
		}
		daysOfStockLeft := int(math.Floor(float64(it.QuantityInStock) / dailySales))
		if daysOfStockLeft >= minDaysOfStock {
			continue
		}
		recommended := int(math.Ceil(float64(minDaysOfStock)*dailySales - float64(it.QuantityInStock)))
		if recommended <= 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf(
			"%s (Current stock: %d, Sales/day: %.2f): Recommend ordering %d units to cover %d days of stock.",
			it.ItemName, it.QuantityInStock, dailySales, recommended, minDaysOfStock,
		))
	}

	if len(lines) == 0 {
		return "All items have sufficient stock.", nil
	}
	return fmt.Sprintf("Stock Replenishment Recommendations (%d items):\n%s",
		len(lines), strings.Join(lines, "\n")), nil
}

// InventoryAging lists in-stock items whose last activity is at least
// minDaysInStock days old. Items without any activity timestamp are skipped.
func (s *Service) InventoryAging(ctx context.Context, minDaysInStock int) (string, error) {
	items, err := s.repo.ScanAll(ctx)
	if err != nil {
		return "", fmt.Errorf("scan items: %w", err)
	}

	now := s.now()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Inventory Aging Report (Items in stock >= %d days):\n", minDaysInStock)
	count := 0
	for i := range items {
		it := &items[i]
		if it.QuantityInStock <= 0 {
			continue
		}
		lastActivity := it.LastActivity()
		if lastActivity.IsZero() {
			continue
		}
		daysInStock := int(now.Sub(lastActivity).Hours() / 24)
		if daysInStock < minDaysInStock {
			continue
		}
		fmt.Fprintf(&sb, "%s (Stock: %d, Days in stock: %d, Last purchased: %s)\n",
			it.ItemName, it.QuantityInStock, daysInStock, lastActivity.Format("2006-01-02"))
		count++
	}

	if count == 0 {
		return "No slow-moving items found.", nil
	}
	return sb.String(), nil
}

// DemandForecast projects sales over the next forecastDays for a single
// item, or for every item in a category when the argument does not resolve
// to an item ID.
func (s *Service) DemandForecast(ctx context.Context, itemOrCategory string, forecastDays int) (string, error) {
	if forecastDays <= 0 {
		return "", fmt.Errorf("%w: forecastDays must be greater than zero", domain.ErrValidation)
	}

	var items []domain.Item
	it, err := s.repo.FindByID(ctx, itemOrCategory)
	switch {
	case err == nil:
		items = []domain.Item{it}
	case errors.Is(err, domain.ErrItemNotFound):
		items, err = s.repo.FindByCategory(ctx, itemOrCategory)
		if err != nil {
			return "", fmt.Errorf("find by category: %w", err)
		}
		if len(items) == 0 {
			return "No items found for item ID or category: " + itemOrCategory, nil
		}
	default:
		return "", fmt.Errorf("find by id: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Demand Forecast for '%s' (%d days):\n", itemOrCategory, forecastDays)
	for i := range items {
		avgDailySales := float64(items[i].UnitsSold) / forecastLookbackDays
		forecast := int(math.Round(avgDailySales * float64(forecastDays)))
		fmt.Fprintf(&sb, "%s: Avg sales/day: %.2f, Forecasted sales: %d units\n",
			items[i].ItemName, avgDailySales, forecast)
	}
	return sb.String(), nil
}

// OutOfStockAlert lists items at or below the stock threshold.
func (s *Service) OutOfStockAlert(ctx context.Context, threshold int) (string, error) {
	items, err := s.repo.ScanAll(ctx)
	if err != nil {
		return "", fmt.Errorf("scan items: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Out-of-Stock Alert (Threshold: %d):\n", threshold)
	count := 0
	for i := range items {
		if items[i].QuantityInStock > threshold {
			continue
		}
		fmt.Fprintf(&sb, "%s (Current stock: %d)\n", items[i].ItemName, items[i].QuantityInStock)
		count++
	}

	if count == 0 {
		return "All items are above the stock threshold.", nil
	}
	return sb.String(), nil
}
