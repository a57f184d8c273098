package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shelfsense/shelfsense/internal/domain"
	domquery "github.com/shelfsense/shelfsense/internal/domain/query"
	agentuc "github.com/shelfsense/shelfsense/internal/usecase/agent"
	healthuc "github.com/shelfsense/shelfsense/internal/usecase/health"
	queryuc "github.com/shelfsense/shelfsense/internal/usecase/query"
	reportuc "github.com/shelfsense/shelfsense/internal/usecase/report"
)

// ErrorCode is a machine-readable error identifier carried in error responses.
type ErrorCode string

// Error codes returned by the API.
const (
	CodeBadRequest        ErrorCode = "bad_request"
	CodeValidationFailed  ErrorCode = "validation_failed"
	CodeInvalidQuery      ErrorCode = "invalid_query"
	CodeUnknownQueryType  ErrorCode = "unknown_query_type"
	CodeItemNotFound      ErrorCode = "item_not_found"
	CodeStoreUnavailable  ErrorCode = "store_unavailable"
	CodeAgentUnavailable  ErrorCode = "agent_unavailable"
	CodeChatProviderError ErrorCode = "chat_provider_error"
	CodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// AskRequest carries a natural-language question for the agent.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse carries the agent's answer.
type AskResponse struct {
	Answer string `json:"answer"`
}

// ItemListResponse wraps a query result set.
type ItemListResponse struct {
	Items []domain.Item `json:"items"`
	Count int           `json:"count"`
}

// QueryCatalogResponse lists the supported named queries.
type QueryCatalogResponse struct {
	Queries []domquery.Metadata `json:"queries"`
}

// ReportResponse wraps a rendered text report.
type ReportResponse struct {
	Report string `json:"report"`
}

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the catalog query, report, and agent services over HTTP.
type Server struct {
	queries       *queryuc.Service
	reports       *reportuc.Service
	agent         *agentuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	queries *queryuc.Service,
	reports *reportuc.Service,
	agent *agentuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		queries: queries,
		reports: reports,
		agent:   agent,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		invalidQueryHandler,
		unknownQueryTypeHandler,
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrItemNotFound, http.StatusNotFound, CodeItemNotFound),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, CodeStoreUnavailable),
		sentinelHandler(domain.ErrAgentUnavailable, http.StatusServiceUnavailable, CodeAgentUnavailable),
		sentinelHandler(domain.ErrChatProviderError, http.StatusBadGateway, CodeChatProviderError),
	}
	return s
}

// Routes registers all API routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/ask", s.Ask)
		r.Get("/queries", s.ListQueries)
		r.Post("/query/custom", s.CustomQuery)
		r.Post("/query/named/{type}", s.NamedQuery)

		r.Route("/reports", func(r chi.Router) {
			r.Post("/summary", s.FilteredSummary)
			r.Get("/grouped-summary", s.GroupedSummary)
			r.Get("/stock-replenishment", s.StockReplenishment)
			r.Get("/inventory-aging", s.InventoryAging)
			r.Get("/demand-forecast", s.DemandForecast)
			r.Get("/out-of-stock", s.OutOfStock)
			r.Get("/top-expensive", s.TopExpensive)
			r.Get("/price-optimization", s.PriceOptimization)
			r.Get("/promotion-impact", s.PromotionImpact)
			r.Get("/margins", s.Margins)
			r.Get("/performance", s.Performance)
		})
	})
}

// Ask handles POST /api/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Question is required")
		return
	}

	answer, err := s.agent.Ask(r.Context(), req.Question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AskResponse{Answer: answer})
}

// ListQueries handles GET /api/queries.
func (s *Server) ListQueries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, QueryCatalogResponse{Queries: s.queries.SupportedQueries()})
}

// CustomQuery handles POST /api/query/custom.
func (s *Server) CustomQuery(w http.ResponseWriter, r *http.Request) {
	var criteria domquery.Criteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	items, err := s.queries.RunCustomQuery(r.Context(), criteria)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ItemListResponse{Items: items, Count: len(items)})
}

// NamedQuery handles POST /api/query/named/{type}. The body carries optional
// criteria; an empty body runs the query with its defaults.
func (s *Server) NamedQuery(w http.ResponseWriter, r *http.Request) {
	queryType := chi.URLParam(r, "type")

	var criteria domquery.Criteria
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	items, err := s.queries.RunNamedQuery(r.Context(), queryType, criteria)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ItemListResponse{Items: items, Count: len(items)})
}

// FilteredSummary handles POST /api/reports/summary.
func (s *Server) FilteredSummary(w http.ResponseWriter, r *http.Request) {
	var criteria domquery.Criteria
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	report, err := s.reports.SummarizeFiltered(r.Context(), criteria)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReportResponse{Report: report})
}

// GroupedSummary handles GET /api/reports/grouped-summary.
func (s *Server) GroupedSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	groupBy := q.Get("groupBy")
	if groupBy == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "groupBy parameter is required")
		return
	}

	minUnitsSold, err := bindIntParam(q, "minUnitsSold", 0)
	if err != nil {
		writeBindError(w, err)
		return
	}
	minAverageRating, err := bindFloatParam(q, "minAverageRating", 0)
	if err != nil {
		writeBindError(w, err)
		return
	}
	limit, err := bindIntParam(q, "limit", 0)
	if err != nil {
		writeBindError(w, err)
		return
	}

	report, err := s.reports.SummarizeByField(r.Context(), groupBy, minUnitsSold, minAverageRating, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReportResponse{Report: report})
}

// StockReplenishment handles GET /api/reports/stock-replenishment.
func (s *Server) StockReplenishment(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minDays, err := bindIntParam(q, "minDaysOfStock", 0)
	if err != nil {
		writeBindError(w, err)
		return
	}
	lookback, err := bindIntParam(q, "salesLookbackDays", 0)
	if err != nil {
		writeBindError(w, err)
		return
	}

	report, err := s.reports.StockReplenishment(r.Context(), minDays, lookback)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReportResponse{Report: report})
}

// InventoryAging handles GET /api/reports/inventory-aging.
func (s *Server) InventoryAging(w http.ResponseWriter, r *http.Request) {
	minDaysInStock, err := bindIntParam(r.URL.Query(), "minDaysInStock", 0)
	if err != nil {
		writeBindError(w, err)
		return
	}

	report, err := s.reports.InventoryAging(r.Context(), minDaysInStock)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReportResponse{Report: report})
}

// DemandForecast handles GET /api/reports/demand-forecast.
func (s *Server) DemandForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	itemOrCategory := q.Get("itemOrCategory")
	if itemOrCategory == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "itemOrCategory parameter is required")
		return
	}
	days, err := bindIntParam(q, "forecastDays", 0)
	if err != nil {
		writeBindError(w, err)
		return
	}

	report, err := s.reports.DemandForecast(r.Context(), itemOrCategory, days)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReportResponse{Report: report})
}

// OutOfStock handles GET /api/reports/out-of-stock.
func (s *Server) OutOfStock(w http.ResponseWriter, r *http.Request) {
	threshold, err := bindIntParam(r.URL.Query(), "threshold", 0)
	if err != nil {
		writeBindError(w, err)
		return
	}

	report, err := s.reports.OutOfStockAlert(r.Context(), threshold)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReportResponse{Report: report})
}

// TopExpensive handles GET /api/reports/top-expensive.
func (s *Server) TopExpensive(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	count, err := bindIntParam(q, "count", domquery.DefaultLimit)
	if err != nil {
		writeBindError(w, err)
		return
	}
	availability := q.Get("availability")
	if availability == "" {
		availability = "both"
	}

	report, err := s.reports.TopExpensiveSummaries(r.Context(), count, availability)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReportResponse{Report: report})
}

// PriceOptimization handles GET /api/reports/price-optimization.
func (s *Server) PriceOptimization(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	highSales, err := bindIntParam(q, "highSalesThreshold", 0)
	if err != nil {
		writeBindError(w, err)
		return
	}
	lowStock, err := bindIntParam(q, "lowStockThreshold", 0)
	if err != nil {
		writeBindError(w, err)
		return
	}
	increase, err := bindFloatParam(q, "increasePercent", 0)
	if err != nil {
		writeBindError(w, err)
		return
	}
	decrease, err := bindFloatParam(q, "decreasePercent", 0)
	if err != nil {
		writeBindError(w, err)
		return
	}
	limit, err := bindIntParam(q, "limit", domquery.DefaultLimit)
	if err != nil {
		writeBindError(w, err)
		return
	}

	report, err := s.reports.OptimizePrices(r.Context(), highSales, lowStock, increase, decrease, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReportResponse{Report: report})
}

// PromotionImpact handles GET /api/reports/promotion-impact.
func (s *Server) PromotionImpact(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	promotion := q.Get("promotion")
	if promotion == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "promotion parameter is required")
		return
	}
	days, err := bindIntParam(q, "days", 0)
	if err != nil {
		writeBindError(w, err)
		return
	}

	report, err := s.reports.PromotionImpact(r.Context(), promotion, days)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReportResponse{Report: report})
}

// Margins handles GET /api/reports/margins.
func (s *Server) Margins(w http.ResponseWriter, r *http.Request) {
	groupBy := r.URL.Query().Get("groupBy")
	if groupBy == "" {
		groupBy = "item"
	}

	report, err := s.reports.MarginAnalyzer(r.Context(), groupBy)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReportResponse{Report: report})
}

// Performance handles GET /api/reports/performance.
func (s *Server) Performance(w http.ResponseWriter, r *http.Request) {
	groupBy := r.URL.Query().Get("groupBy")
	if groupBy == "" {
		groupBy = "category"
	}

	report, err := s.reports.CategoryBrandPerformance(r.Context(), groupBy)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReportResponse{Report: report})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// bindIntParam binds an optional integer query parameter, falling back to
// def when absent.
func bindIntParam(q url.Values, name string, def int) (int, error) {
	if !q.Has(name) {
		return def, nil
	}
	var v int
	if err := runtime.BindQueryParameter("form", true, true, name, q, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// bindFloatParam binds an optional float query parameter, falling back to
// def when absent.
func bindFloatParam(q url.Values, name string, def float64) (float64, error) {
	if !q.Has(name) {
		return def, nil
	}
	var v float64
	if err := runtime.BindQueryParameter("form", true, true, name, q, &v); err != nil {
		return 0, err
	}
	return v, nil
}

func writeBindError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid query parameter: "+err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrUnknownQueryType,
		domain.ErrValidation,
		domain.ErrItemNotFound,
		domain.ErrStoreUnavailable,
		domain.ErrAgentUnavailable,
		domain.ErrChatProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// invalidQueryHandler handles ErrInvalidQuery with field detail when available.
func invalidQueryHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrInvalidQuery) {
		return false
	}
	var iqe *domain.InvalidQueryError
	if errors.As(err, &iqe) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"code":    CodeInvalidQuery,
			"message": msg,
			"field":   iqe.Field,
			"reason":  iqe.Reason,
		})
		return true
	}
	writeError(w, http.StatusBadRequest, CodeInvalidQuery, msg)
	return true
}

// unknownQueryTypeHandler handles ErrUnknownQueryType with the offending key
// and the supported catalog.
func unknownQueryTypeHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrUnknownQueryType) {
		return false
	}
	supported := make([]string, 0, len(domquery.SupportedQueries()))
	for _, m := range domquery.SupportedQueries() {
		supported = append(supported, m.Key)
	}
	var uqe *domain.UnknownQueryTypeError
	if errors.As(err, &uqe) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"code":      CodeUnknownQueryType,
			"message":   msg,
			"key":       uqe.Key,
			"supported": supported,
		})
		return true
	}
	writeError(w, http.StatusBadRequest, CodeUnknownQueryType, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
