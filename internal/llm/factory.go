package llm

import (
	"fmt"
	"strings"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "gemini":
		return NewGeminiProvider(config)

	case "":
		return nil, fmt.Errorf("no LLM provider configured")

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama, gemini)", config.Provider)
	}
}

// Endpoint returns the URL a provider's calls go to. It keys rate limiting.
func Endpoint(config Config) string {
	if config.BaseURL != "" {
		return config.BaseURL
	}
	switch strings.ToLower(config.Provider) {
	case "openai":
		return "https://api.openai.com/v1"
	case "anthropic", "claude":
		if config.UseBedrock {
			return fmt.Sprintf("https://bedrock-runtime.%s.amazonaws.com", config.AWSRegion)
		}
		return "https://api.anthropic.com"
	case "gemini":
		return "https://generativelanguage.googleapis.com"
	default:
		return "http://localhost:11434"
	}
}
