package classify

import (
	"context"

	"github.com/ppiankov/basir/internal/llm"
)

// LLMStrategy asks a text-generation backend for the labels
type LLMStrategy struct {
	provider llm.Provider
}

// NewLLMStrategy wraps provider as a classification strategy
func NewLLMStrategy(provider llm.Provider) *LLMStrategy {
	return &LLMStrategy{provider: provider}
}

// Complete sends the whole instruction as the prompt, with no system
// message and no output schema.
func (s *LLMStrategy) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := s.provider.Generate(ctx, llm.GenerateRequest{Prompt: prompt})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
