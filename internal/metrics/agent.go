package metrics

import "github.com/prometheus/client_golang/prometheus"

// Agent Prometheus metrics.
var (
	AgentRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shelfsense",
			Name:      "agent_requests_total",
			Help:      "Total number of agent chat requests",
		},
		[]string{"model", "status"},
	)

	AgentRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shelfsense",
			Name:      "agent_request_duration_seconds",
			Help:      "Agent chat request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	AgentTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shelfsense",
			Name:      "agent_tokens_total",
			Help:      "Total chat completion tokens consumed",
		},
		[]string{"model", "type"},
	)

	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shelfsense",
			Name:      "agent_tool_calls_total",
			Help:      "Total number of agent tool invocations",
		},
		[]string{"tool", "status"},
	)

	ToolCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shelfsense",
			Name:      "agent_tool_call_duration_seconds",
			Help:      "Agent tool invocation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"tool"},
	)
)

var agentMetricsRegistered bool

// RegisterAgentMetrics registers Prometheus agent metrics. Must be called once from main.
func RegisterAgentMetrics() {
	if agentMetricsRegistered {
		return
	}
	prometheus.MustRegister(AgentRequestsTotal)
	prometheus.MustRegister(AgentRequestDuration)
	prometheus.MustRegister(AgentTokensTotal)
	prometheus.MustRegister(ToolCallsTotal)
	prometheus.MustRegister(ToolCallDuration)
	agentMetricsRegistered = true
}
