package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "familyflow",
		Subsystem: "ai",
		Name:      "chat_duration_seconds",
		Help:      "Duration of assistant chat requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "familyflow",
		Subsystem: "ai",
		Name:      "chat_failures_total",
		Help:      "Number of assistant chat failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI assistant.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIAssistant implements Assistant against the OpenAI chat completion API.
type OpenAIAssistant struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIAssistant builds a new assistant using the provided configuration.
func NewOpenAIAssistant(cfg OpenAIConfig) (*OpenAIAssistant, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}

	tracer := otel.Tracer("github.com/familyflow/familyflow-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIAssistant{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Chat sends the conversation to OpenAI and parses the structured reply.
func (a *OpenAIAssistant) Chat(parent context.Context, input ChatInput) (ChatResult, error) {
	ctx, span := a.tracer.Start(parent, "openai.chat", trace.WithAttributes(
		attribute.String("model", a.cfg.Model),
	))
	defer span.End()

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: assistantSystemPrompt(),
		},
	}
	for _, turn := range input.History {
		role := openai.ChatMessageRoleUser
		if turn.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: buildUserPrompt(input),
	})

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:          a.cfg.Model,
		MaxTokens:      a.cfg.MaxTokens,
		Temperature:    a.cfg.Temperature,
		Messages:       messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := a.client.CreateChatCompletion(ctx, request)
	duration := time.Since(start)
	aiDuration.WithLabelValues(a.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		aiFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ChatResult{}, fmt.Errorf("openai chat: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ChatResult{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	result, err := parseChatResult(content)
	if err != nil {
		aiFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse_failed")
		a.logger.Warn().Err(err).Msg("assistant returned unparseable payload, using raw text")
		return ChatResult{Reply: content}, nil
	}

	span.SetAttributes(attribute.Int("assistant.actions", len(result.Actions)))
	return result, nil
}

func parseChatResult(content string) (ChatResult, error) {
	var result ChatResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return ChatResult{}, fmt.Errorf("decode assistant payload: %w", err)
	}
	if result.Reply == "" {
		return ChatResult{}, fmt.Errorf("assistant payload missing reply")
	}
	return result, nil
}

func assistantSystemPrompt() string {
	return strings.TrimSpace(`
You are a helpful household schoolwork assistant for a parent managing their
children's education. Answer briefly and concretely.

Respond with a JSON object of the shape:
{"reply": "<your answer>", "actions": [{"action": "<name>", ...}]}

Supported actions and their fields:
- add_assignment: student, subject, name, due_date (YYYY-MM-DD)
- complete_assignment: student, name
- delete_assignment: student, name
- add_student: name
- add_subject: name

Only emit an action when the user clearly asked for that change. When no
action applies, return an empty actions list.`)
}

func buildUserPrompt(input ChatInput) string {
	var sb strings.Builder
	if len(input.StudentNames) > 0 {
		fmt.Fprintf(&sb, "Students: %s\n", strings.Join(input.StudentNames, ", "))
	}
	if len(input.SubjectNames) > 0 {
		fmt.Fprintf(&sb, "Subjects: %s\n", strings.Join(input.SubjectNames, ", "))
	}
	if input.OpenAssignment != "" {
		fmt.Fprintf(&sb, "Open assignments:\n%s\n", input.OpenAssignment)
	}
	fmt.Fprintf(&sb, "\nParent: %s", input.Message)
	return sb.String()
}
