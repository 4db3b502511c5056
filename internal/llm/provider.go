package llm

import (
	"context"
	"errors"

	"github.com/ppiankov/basir/internal/model"
	"github.com/ppiankov/basir/internal/schema"
)

// ErrEmptyResponse is returned when a backend answers without any text
var ErrEmptyResponse = errors.New("empty response from model")

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate runs one blocking, non-streaming completion
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for one completion
type GenerateRequest struct {
	// System is the instruction framing (role, goal, backstory)
	System string

	// Prompt is the user message
	Prompt string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Schema, when set, constrains the output to JSON matching it
	Schema *schema.Schema
}

// GenerateResponse contains the model output
type GenerateResponse struct {
	// Text is the generated text, trimmed
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "gemini"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling
	Temperature float64

	// Anthropic via AWS Bedrock
	UseBedrock bool
	AWSRegion  string
	AWSProfile string

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:    c.Provider,
		Model:       c.Model,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Timeout:     c.Timeout,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		UseBedrock:  c.UseBedrock,
		AWSRegion:   c.AWSRegion,
		AWSProfile:  c.AWSProfile,
		HTTPProxy:   c.HTTPProxy,
		HTTPSProxy:  c.HTTPSProxy,
		NoProxy:     c.NoProxy,
	}
}

func (c Config) maxTokens(req GenerateRequest, fallback int) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return fallback
}

func (c Config) model(req GenerateRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return c.Model
}
