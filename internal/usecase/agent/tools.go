package agent

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	domquery "github.com/shelfsense/shelfsense/internal/domain/query"
)

// Tool names exposed to the model.
const (
	toolLowStockHighSales = "getItemsWithLowStockAndHighSales"
	toolUnderperforming   = "getUnderperformingItems"
	toolSummarizeItems    = "summarizeItems"
	toolSummarizeByField  = "summarizeItemsByField"
	toolReplenishment     = "recommendStockReplenishment"
	toolInventoryAging    = "inventoryAgingReport"
	toolDemandForecast    = "demandForecast"
	toolOutOfStock        = "outOfStockAlert"
	toolPerformance       = "categoryBrandPerformanceSummary"
	toolTopExpensive      = "topExpensiveItemSummaries"
	toolOptimizePrices    = "optimizePrices"
	toolPromotionImpact   = "analyzeDiscountPromotionImpact"
	toolMarginAnalyzer    = "marginAnalyzer"
)

func intProp(desc string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.Integer, Description: desc}
}

func numProp(desc string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.Number, Description: desc}
}

func strProp(desc string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.String, Description: desc}
}

func boolProp(desc string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.Boolean, Description: desc}
}

func funcTool(name, description string, props map[string]jsonschema.Definition, required ...string) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters: jsonschema.Definition{
				Type:       jsonschema.Object,
				Properties: props,
				Required:   required,
			},
		},
	}
}

// toolDefinitions lists every catalog operation the model may invoke.
var toolDefinitions = []openai.Tool{
	funcTool(toolLowStockHighSales, "Get items with low stock but high sales",
		map[string]jsonschema.Definition{
			"maxStock":     intProp("Maximum quantity in stock"),
			"minUnitsSold": intProp("Minimum number of units sold"),
		}, "maxStock", "minUnitsSold"),
	funcTool(toolUnderperforming, "Get items with low sales and low reviews",
		map[string]jsonschema.Definition{
			"maxUnitsSold":     intProp("Maximum units sold"),
			"maxAverageRating": numProp("Maximum average rating"),
		}, "maxUnitsSold", "maxAverageRating"),
	funcTool(toolSummarizeItems, "Summarize items by custom filters",
		map[string]jsonschema.Definition{
			"minUnitsSold": intProp("Minimum units sold"),
			"maxUnitsSold": intProp("Maximum units sold"),
			"minAvgRating": numProp("Minimum average rating"),
			"maxAvgRating": numProp("Maximum average rating"),
			"maxStock":     intProp("Maximum stock quantity"),
			"onlineOnly":   boolProp("Only items available online"),
			"storeOnly":    boolProp("Only items available in store"),
			"limit":        intProp("Maximum number of items"),
		}),
	funcTool(toolSummarizeByField, "Summarize items grouped by any field (e.g. brand, category, promotion)",
		map[string]jsonschema.Definition{
			"groupBy":          strProp("Field to group by (e.g. brand, category, promotion)"),
			"minUnitsSold":     intProp("Minimum units sold"),
			"minAverageRating": numProp("Minimum average rating"),
			"limit":            intProp("Maximum number of items to include in summary"),
		}, "groupBy"),
	funcTool(toolReplenishment, "Recommend items to restock and suggested quantities",
		map[string]jsonschema.Definition{
			"minDaysOfStock":    intProp("Minimum days of stock to maintain"),
			"salesLookbackDays": intProp("Sales lookback period in days"),
		}, "minDaysOfStock", "salesLookbackDays"),
	funcTool(toolInventoryAging, "List items in stock for too long (slow movers)",
		map[string]jsonschema.Definition{
			"minDaysInStock": intProp("Minimum days in stock to consider as slow moving"),
		}, "minDaysInStock"),
	funcTool(toolDemandForecast, "Predict future sales for items using historical data",
		map[string]jsonschema.Definition{
			"itemOrCategory": strProp("Item ID or category"),
			"forecastDays":   intProp("Forecast period in days"),
		}, "itemOrCategory", "forecastDays"),
	funcTool(toolOutOfStock, "Alert when items are out of stock or below a threshold",
		map[string]jsonschema.Definition{
			"threshold": intProp("Stock threshold"),
		}, "threshold"),
	funcTool(toolPerformance, "Summarize sales, revenue, and stock by category or brand",
		map[string]jsonschema.Definition{
			"groupBy": strProp("Group by: category or brand"),
		}, "groupBy"),
	funcTool(toolTopExpensive, "Get a summary of the top N most expensive items filtered by availability",
		map[string]jsonschema.Definition{
			"count":        intProp("Number of items to summarize"),
			"availability": strProp("Availability: online, store, both"),
		}, "count", "availability"),
	funcTool(toolOptimizePrices, "Suggest optimal prices for items based on sales and stock levels",
		map[string]jsonschema.Definition{
			"highSalesThreshold": intProp("Minimum sales to consider as high"),
			"lowStockThreshold":  intProp("Maximum stock to consider as low"),
			"increasePercent":    numProp("Percentage to increase price for high demand (e.g. 10 for 10%)"),
			"decreasePercent":    numProp("Percentage to decrease price for low demand (e.g. 10 for 10%)"),
			"limit":              intProp("Maximum number of items to analyze"),
		}, "highSalesThreshold", "lowStockThreshold", "increasePercent", "decreasePercent", "limit"),
	funcTool(toolPromotionImpact, "Analyze the impact of discounts or promotions on sales and inventory turnover",
		map[string]jsonschema.Definition{
			"promotion": strProp("Promotion name or code"),
			"days":      intProp("Time window in days"),
		}, "promotion", "days"),
	funcTool(toolMarginAnalyzer, "Calculate and report profit margins by item, category, or brand",
		map[string]jsonschema.Definition{
			"groupBy": strProp("Group by: item, category, or brand"),
		}, "groupBy"),
}

// dispatch decodes the model-supplied arguments and runs the named tool.
func (s *Service) dispatch(ctx context.Context, name string, args []byte) (string, error) {
	switch name {
	case toolLowStockHighSales:
		var a struct {
			MaxStock     int `json:"maxStock"`
			MinUnitsSold int `json:"minUnitsSold"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return "", fmt.Errorf("decode %s arguments: %w", name, err)
		}
		items, err := s.queries.RunNamedQuery(ctx, domquery.TypeLowStockHighSales, domquery.Criteria{
			MaxStock:     &a.MaxStock,
			MinUnitsSold: &a.MinUnitsSold,
		})
		if err != nil {
			return "", err
		}
		return marshalItems(items)

	case toolUnderperforming:
		var a struct {
			MaxUnitsSold     int     `json:"maxUnitsSold"`
			MaxAverageRating float64 `json:"maxAverageRating"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return "", fmt.Errorf("decode %s arguments: %w", name, err)
		}
		items, err := s.queries.RunNamedQuery(ctx, domquery.TypeUnderperforming, domquery.Criteria{
			MaxUnitsSold:     &a.MaxUnitsSold,
			MaxAverageRating: &a.MaxAverageRating,
		})
		if err != nil {
			return "", err
		}
		return marshalItems(items)

	case toolSummarizeItems:
		var a struct {
			MinUnitsSold *int     `json:"minUnitsSold"`
			MaxUnitsSold *int     `json:"maxUnitsSold"`
			MinAvgRating *float64 `json:"minAvgRating"`
			MaxAvgRating *float64 `json:"maxAvgRating"`
			MaxStock     *int     `json:"maxStock"`
			OnlineOnly   *bool    `json:"onlineOnly"`
			StoreOnly    *bool    `json:"storeOnly"`
			Limit        *int     `json:"limit"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return "", fmt.Errorf("decode %s arguments: %w", name, err)
		}
		criteria := domquery.Criteria{
			MinUnitsSold:     a.MinUnitsSold,
			MaxUnitsSold:     a.MaxUnitsSold,
			MinAverageRating: a.MinAvgRating,
			MaxAverageRating: a.MaxAvgRating,
			MaxStock:         a.MaxStock,
			Limit:            a.Limit,
		}
		if a.OnlineOnly != nil && *a.OnlineOnly {
			criteria.OnlineAvailable = a.OnlineOnly
		}
		if a.StoreOnly != nil && *a.StoreOnly {
			criteria.StoreAvailable = a.StoreOnly
		}
		return s.reports.SummarizeFiltered(ctx, criteria)

	case toolSummarizeByField:
		var a struct {
			GroupBy          string  `json:"groupBy"`
			MinUnitsSold     int     `json:"minUnitsSold"`
			MinAverageRating float64 `json:"minAverageRating"`
			Limit            int     `json:"limit"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return "", fmt.Errorf("decode %s arguments: %w", name, err)
		}
		return s.reports.SummarizeByField(ctx, a.GroupBy, a.MinUnitsSold, a.MinAverageRating, a.Limit)

	case toolReplenishment:
		var a struct {
			MinDaysOfStock    int `json:"minDaysOfStock"`
			SalesLookbackDays int `json:"salesLookbackDays"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return "", fmt.Errorf("decode %s arguments: %w", name, err)
		}
		return s.reports.StockReplenishment(ctx, a.MinDaysOfStock, a.SalesLookbackDays)

	case toolInventoryAging:
		var a struct {
			MinDaysInStock int `json:"minDaysInStock"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return "", fmt.Errorf("decode %s arguments: %w", name, err)
		}
		return s.reports.InventoryAging(ctx, a.MinDaysInStock)

	case toolDemandForecast:
		var a struct {
			ItemOrCategory string `json:"itemOrCategory"`
			ForecastDays   int    `json:"forecastDays"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return "", fmt.Errorf("decode %s arguments: %w", name, err)
		}
		return s.reports.DemandForecast(ctx, a.ItemOrCategory, a.ForecastDays)

	case toolOutOfStock:
		var a struct {
			Threshold int `json:"threshold"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return "", fmt.Errorf("decode %s arguments: %w", name, err)
		}
		return s.reports.OutOfStockAlert(ctx, a.Threshold)

	case toolPerformance:
		var a struct {
			GroupBy string `json:"groupBy"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return "", fmt.Errorf("decode %s arguments: %w", name, err)
		}
		return s.reports.CategoryBrandPerformance(ctx, a.GroupBy)

	case toolTopExpensive:
		var a struct {
			Count        int    `json:"count"`
			Availability string `json:"availability"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return "", fmt.Errorf("decode %s arguments: %w", name, err)
		}
		return s.reports.TopExpensiveSummaries(ctx, a.Count, a.Availability)

	case toolOptimizePrices:
		var a struct {
			HighSalesThreshold int     `json:"highSalesThreshold"`
			LowStockThreshold  int     `json:"lowStockThreshold"`
			IncreasePercent    float64 `json:"increasePercent"`
			DecreasePercent    float64 `json:"decreasePercent"`
			Limit              int     `json:"limit"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return "", fmt.Errorf("decode %s arguments: %w", name, err)
		}
		return s.reports.OptimizePrices(ctx, a.HighSalesThreshold, a.LowStockThreshold, a.IncreasePercent, a.DecreasePercent, a.Limit)

	case toolPromotionImpact:
		var a struct {
			Promotion string `json:"promotion"`
			Days      int    `json:"days"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return "", fmt.Errorf("decode %s arguments: %w", name, err)
		}
		return s.reports.PromotionImpact(ctx, a.Promotion, a.Days)

	case toolMarginAnalyzer:
		var a struct {
			GroupBy string `json:"groupBy"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return "", fmt.Errorf("decode %s arguments: %w", name, err)
		}
		return s.reports.MarginAnalyzer(ctx, a.GroupBy)

	default:
		return "", fmt.Errorf("unknown tool %q", name)
	}
}

func marshalItems(items any) (string, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode items: %w", err)
	}
	return string(data), nil
}
