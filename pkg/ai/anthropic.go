package ai

import (
	"context"
	"fmt"
)

// AnthropicConfig placeholder for anthropic integration configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// AnthropicAssistant is a stub implementation that can be expanded once the SDK is available.
type AnthropicAssistant struct{}

// NewAnthropicAssistant constructs a new stub assistant.
func NewAnthropicAssistant(cfg AnthropicConfig) (*AnthropicAssistant, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	return &AnthropicAssistant{}, nil
}

// Chat is not yet implemented for Anthropic models.
func (a *AnthropicAssistant) Chat(ctx context.Context, input ChatInput) (ChatResult, error) {
	return ChatResult{}, fmt.Errorf("anthropic assistant not implemented")
}
