package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/basir/internal/model"
	"github.com/ppiankov/basir/internal/schema"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name      string
	available bool
	response  *GenerateResponse
	err       error
	calls     int
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

type mockWaiter struct {
	keys []string
	err  error
}

func (w *mockWaiter) Wait(ctx context.Context, rawURL string) error {
	w.keys = append(w.keys, rawURL)
	return w.err
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		config  Config
		name    string
		wantErr bool
	}{
		{Config{Provider: "ollama", Model: "llama3.1"}, "ollama", false},
		{Config{Provider: "OpenAI", APIKey: "k"}, "openai", false},
		{Config{Provider: "claude", APIKey: "k"}, "anthropic", false},
		{Config{Provider: "gemini", APIKey: "k"}, "gemini", false},
		{Config{Provider: "openai"}, "", true},
		{Config{Provider: ""}, "", true},
		{Config{Provider: "mystery"}, "", true},
	}

	for _, tt := range tests {
		p, err := NewProvider(tt.config)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.config.Provider)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.config.Provider, err)
			continue
		}
		if p.Name() != tt.name {
			t.Errorf("%q: name = %s, want %s", tt.config.Provider, p.Name(), tt.name)
		}
	}
}

func TestEndpoint(t *testing.T) {
	if got := Endpoint(Config{Provider: "ollama", BaseURL: "http://gpu-box:11434"}); got != "http://gpu-box:11434" {
		t.Errorf("explicit base URL ignored: %s", got)
	}
	if got := Endpoint(Config{Provider: "anthropic", UseBedrock: true, AWSRegion: "us-west-2"}); !strings.Contains(got, "us-west-2") {
		t.Errorf("bedrock endpoint = %s", got)
	}
	if got := Endpoint(Config{Provider: "gemini"}); !strings.Contains(got, "googleapis.com") {
		t.Errorf("gemini endpoint = %s", got)
	}
}

func TestWithRateLimit(t *testing.T) {
	mock := &MockProvider{name: "mock", response: &GenerateResponse{Text: "ok"}}
	waiter := &mockWaiter{}

	p := WithRateLimit(mock, waiter, "http://localhost:11434")
	if p.Name() != "mock" {
		t.Errorf("decorator should keep the provider name, got %s", p.Name())
	}

	if _, err := p.Generate(context.Background(), GenerateRequest{Prompt: "p"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(waiter.keys) != 1 || waiter.keys[0] != "http://localhost:11434" {
		t.Errorf("waiter keys = %v", waiter.keys)
	}

	waiter.err = context.Canceled
	_, err := p.Generate(context.Background(), GenerateRequest{Prompt: "p"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected wait error, got %v", err)
	}
	if mock.calls != 1 {
		t.Errorf("provider called %d times, want 1", mock.calls)
	}

	if WithRateLimit(mock, nil, "x") != Provider(mock) {
		t.Error("nil waiter should return the provider unchanged")
	}
}

func TestBuildTaskPrompt(t *testing.T) {
	s, _ := schema.For(model.LabelRestaurant)
	records := map[string]any{"restaurants": []map[string]any{{"RestaurantName": "Da Enzo", "City": "Rome"}}}

	prompt, err := BuildTaskPrompt("Find relevant information about 'restaurant' for query: 'pasta in Rome'",
		records, "JSON data about restaurant", s)
	if err != nil {
		t.Fatalf("BuildTaskPrompt: %v", err)
	}

	for _, want := range []string{"pasta in Rome", "Da Enzo", "JSON data about restaurant", "RestaurantOutputSchema", `"CuisineType"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	got := BuildSystemPrompt("Safety Advisor", "Find scams.", "You are an expert in retrieving information about scam.")
	if !strings.HasPrefix(got, "You are Safety Advisor.") || !strings.Contains(got, "Find scams.") {
		t.Errorf("unexpected system prompt: %s", got)
	}
}
