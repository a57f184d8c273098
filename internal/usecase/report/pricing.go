package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/shelfsense/shelfsense/internal/domain"
)

// promoSalesShare is the assumed fraction of lifetime sales attributed to a
// promotion window. The catalog carries no per-day sales history, so the
// analysis is a fixed-split heuristic, not a measurement.
const promoSalesShare = 0.6

// TopExpensiveSummaries renders the top-N most expensive items for an
// availability channel: "online", "store", or "both".
func (s *Service) TopExpensiveSummaries(ctx context.Context, count int, availability string) (string, error) {
	var online, inStore bool
	switch strings.ToLower(availability) {
	case "online":
		online = true
	case "store":
		inStore = true
	case "both":
		online, inStore = true, true
	default:
		return "", fmt.Errorf("%w: invalid availability filter: must be online, store, or both", domain.ErrValidation)
	}

	items, err := s.repo.QueryAvailability(ctx, online, inStore, count)
	if err != nil {
		return "", fmt.Errorf("query availability: %w", err)
	}
	if len(items) == 0 {
		return "No items found for availability: " + availability, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Top %d most expensive items (%s):\n", count, availability)
	for i, it := range items {
		fmt.Fprintf(&sb, "%d. %s ($%.2f) - Brand: %s, Category: %s\n",
			i+1, it.ItemName, it.StorePrice, it.Brand, it.Category)
	}
	return sb.String(), nil
}

// OptimizePrices suggests a price change per item: raise for high demand on
// low stock, lower for weak demand on surplus stock, otherwise keep. It
// analyzes at most limit items from an unsorted store page.
func (s *Service) OptimizePrices(
	ctx context.Context, highSalesThreshold, lowStockThreshold int, increasePercent, decreasePercent float64, limit int,
) (string, error) {
	items, err := s.repo.ScanPage(ctx, limit)
	if err != nil {
		return "", fmt.Errorf("scan page: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Price Optimization Suggestions:\n")
	for i := range items {
		it := &items[i]
		var suggestion string
		switch {
		case it.UnitsSold >= highSalesThreshold && it.QuantityInStock <= lowStockThreshold:
			suggestion = fmt.Sprintf("Increase price to $%.2f", it.StorePrice*(1+increasePercent/100))
		case it.UnitsSold < highSalesThreshold && it.QuantityInStock > lowStockThreshold:
			suggestion = fmt.Sprintf("Decrease price to $%.2f", it.StorePrice*(1-decreasePercent/100))
		default:
			suggestion = "Keep current price"
		}
		fmt.Fprintf(&sb, "%s (Current: $%.2f, Sales: %d, Stock: %d): %s\n",
			it.ItemName, it.StorePrice, it.UnitsSold, it.QuantityInStock, suggestion)
	}
	return sb.String(), nil
}

// PromotionImpact compares assumed pre-promotion and in-promotion daily
// sales for every item over the given window, using the fixed promoSalesShare
// split. A zero pre-promotion rate reports as a 100% change.
func (s *Service) PromotionImpact(ctx context.Context, promotion string, days int) (string, error) {
	if days <= 0 {
		return "", fmt.Errorf("%w: days must be greater than zero", domain.ErrValidation)
	}

	items, err := s.repo.ScanAll(ctx)
	if err != nil {
		return "", fmt.Errorf("scan items: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Promotion Impact Analysis for '%s' (Last %d days):\n", promotion, days)
	fmt.Fprintf(&sb, "%-25s %-18s %-18s %-18s\n", "Item", "Prev Daily Sales", "Promo Daily Sales", "Change (%)")
	for i := range items {
		it := &items[i]
		promoSales := int(float64(it.UnitsSold) * promoSalesShare)
		prevSales := it.UnitsSold - promoSales

		prevDaily := float64(prevSales) / float64(days)
		promoDaily := float64(promoSales) / float64(days)
		change := 100.0
		if prevDaily != 0 {
			change = (promoDaily - prevDaily) / prevDaily * 100
		}
		fmt.Fprintf(&sb, "%-25s %-18.2f %-18.2f %-17.1f%%\n", it.ItemName, prevDaily, promoDaily, change)
	}
	return sb.String(), nil
}

// MarginAnalyzer reports profit margins per item or summed by category or
// brand. Margin is (price - cost) / price, with a zero price yielding 0%.
func (s *Service) MarginAnalyzer(ctx context.Context, groupBy string) (string, error) {
	key := strings.ToLower(groupBy)
	if key != "item" && key != "category" && key != "brand" {
		return "Invalid groupBy value. Use 'item', 'category', or 'brand'.", nil
	}

	items, err := s.repo.ScanAll(ctx)
	if err != nil {
		return "", fmt.Errorf("scan items: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Profit Margin Analysis by %s:\n", groupBy)

	if key == "item" {
		fmt.Fprintf(&sb, "%-25s %-12s %-12s %-12s\n", "Item", "Cost", "Price", "Margin (%)")
		for i := range items {
			it := &items[i]
			fmt.Fprintf(&sb, "%-25s $%-11.2f $%-11.2f %-11.2f%%\n",
				it.ItemName, it.CostPrice, it.StorePrice, marginPercent(it.CostPrice, it.StorePrice))
		}
		return sb.String(), nil
	}

	type sums struct{ cost, price float64 }
	var order []string
	groups := make(map[string]*sums)
	for i := range items {
		it := &items[i]
		name := it.Brand
		if key == "category" {
			name = it.Category
		}
		g, seen := groups[name]
		if !seen {
			g = &sums{}
			groups[name] = g
			order = append(order, name)
		}
		g.cost += it.CostPrice
		g.price += it.StorePrice
	}

	fmt.Fprintf(&sb, "%-25s %-12s %-12s %-12s\n", groupBy, "Total Cost", "Total Price", "Margin (%)")
	for _, name := range order {
		g := groups[name]
		fmt.Fprintf(&sb, "%-25s $%-11.2f $%-11.2f %-11.2f%%\n",
			name, g.cost, g.price, marginPercent(g.cost, g.price))
	}
	return sb.String(), nil
}

// CategoryBrandPerformance sums units sold, revenue, and stock per category
// or brand. Revenue is unitsSold times storePrice per item.
func (s *Service) CategoryBrandPerformance(ctx context.Context, groupBy string) (string, error) {
	key := strings.ToLower(groupBy)
	if key != "category" && key != "brand" {
		return "Invalid groupBy value. Use 'category' or 'brand'.", nil
	}

	items, err := s.repo.ScanAll(ctx)
	if err != nil {
		return "", fmt.Errorf("scan items: %w", err)
	}

	type sums struct {
		units   int
		stock   int
		revenue float64
	}
	var order []string
	groups := make(map[string]*sums)
	for i := range items {
		it := &items[i]
		name := it.Brand
		if key == "category" {
			name = it.Category
		}
		g, seen := groups[name]
		if !seen {
			g = &sums{}
			groups[name] = g
			order = append(order, name)
		}
		g.units += it.UnitsSold
		g.stock += it.QuantityInStock
		g.revenue += float64(it.UnitsSold) * it.StorePrice
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Performance Summary by %s:\n", groupBy)
	fmt.Fprintf(&sb, "%-25s %-12s %-12s %-12s\n", groupBy, "Units Sold", "Revenue", "Stock")
	for _, name := range order {
		g := groups[name]
		fmt.Fprintf(&sb, "%-25s %-12d $%-11.2f %-12d\n", name, g.units, g.revenue, g.stock)
	}
	return sb.String(), nil
}

func marginPercent(cost, price float64) float64 {
	if price == 0 {
		return 0
	}
	return (price - cost) / price * 100
}
