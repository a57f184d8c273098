package agent

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/shelfsense/shelfsense/internal/domain"
	domquery "github.com/shelfsense/shelfsense/internal/domain/query"
)

// ChatCompleter runs one chat completion round against the model provider.
type ChatCompleter interface {
	Complete(
		ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool,
	) (openai.ChatCompletionMessage, error)
}

// QueryRunner executes named catalog queries on behalf of the model.
type QueryRunner interface {
	RunNamedQuery(ctx context.Context, queryType string, params domquery.Criteria) ([]domain.Item, error)
}

// Reporter generates the analytic reports the model can request.
type Reporter interface {
	SummarizeFiltered(ctx context.Context, criteria domquery.Criteria) (string, error)
	SummarizeByField(ctx context.Context, groupBy string, minUnitsSold int, minAverageRating float64, limit int) (string, error)
	StockReplenishment(ctx context.Context, minDaysOfStock, salesLookbackDays int) (string, error)
	InventoryAging(ctx context.Context, minDaysInStock int) (string, error)
	DemandForecast(ctx context.Context, itemOrCategory string, forecastDays int) (string, error)
	OutOfStockAlert(ctx context.Context, threshold int) (string, error)
	CategoryBrandPerformance(ctx context.Context, groupBy string) (string, error)
	OptimizePrices(ctx context.Context, highSalesThreshold, lowStockThreshold int, increasePercent, decreasePercent float64, limit int) (string, error)
	PromotionImpact(ctx context.Context, promotion string, days int) (string, error)
	MarginAnalyzer(ctx context.Context, groupBy string) (string, error)
	TopExpensiveSummaries(ctx context.Context, count int, availability string) (string, error)
}
