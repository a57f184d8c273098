// Package agent implements the natural-language analyst: a chat completion
// loop that exposes the catalog queries and reports as model-invocable tools.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/shelfsense/shelfsense/internal/domain"
	"github.com/shelfsense/shelfsense/internal/logger"
	"github.com/shelfsense/shelfsense/internal/metrics"
)

const systemPrompt = `You are a retail data analyst. Use the available tools to retrieve accurate, real-time product and pricing data.
Only respond based on tool outputs. Do not mention tool names or that you are using tools. Just provide clear, helpful answers based on the data.`

const defaultMaxToolRounds = 8

// Service answers catalog questions by steering a chat model through the
// query and report tools.
type Service struct {
	chat      ChatCompleter
	queries   QueryRunner
	reports   Reporter
	maxRounds int
}

// New creates an agent service. A nil chat client leaves the agent
// unconfigured; Ask then fails with domain.ErrAgentUnavailable.
func New(chat ChatCompleter, queries QueryRunner, reports Reporter, maxRounds int) *Service {
	if maxRounds <= 0 {
		maxRounds = defaultMaxToolRounds
	}
	return &Service{chat: chat, queries: queries, reports: reports, maxRounds: maxRounds}
}

// Ask runs the tool-calling conversation until the model produces a final
// answer or the round budget runs out.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	if s.chat == nil {
		return "", domain.ErrAgentUnavailable
	}

	conversationID := uuid.NewString()
	log := logger.FromContext(ctx).With(zap.String("conversation_id", conversationID))

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: question},
	}

	for round := 0; round < s.maxRounds; round++ {
		msg, err := s.chat.Complete(ctx, messages, toolDefinitions)
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}

		if len(msg.ToolCalls) == 0 {
			log.Info("agent answered",
				zap.Int("rounds", round+1),
				zap.Int("messages", len(messages)),
			)
			return msg.Content, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    s.runTool(ctx, log, call),
				ToolCallID: call.ID,
			})
		}
	}

	return "", fmt.Errorf("tool call budget exhausted after %d rounds", s.maxRounds)
}

// runTool executes a single tool call. Failures become an error message fed
// back to the model rather than aborting the conversation.
func (s *Service) runTool(ctx context.Context, log *zap.Logger, call openai.ToolCall) string {
	name := call.Function.Name

	start := time.Now()
	result, err := s.dispatch(ctx, name, []byte(call.Function.Arguments))
	metrics.ToolCallDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ToolCallsTotal.WithLabelValues(name, "error").Inc()
		log.Warn("tool call failed", zap.String("tool", name), zap.Error(err))
		return "Error: " + err.Error()
	}

	metrics.ToolCallsTotal.WithLabelValues(name, "success").Inc()
	log.Debug("tool call succeeded", zap.String("tool", name), zap.Int("result_bytes", len(result)))
	return result
}
