package classify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"github.com/ppiankov/basir/internal/llm"
	"github.com/ppiankov/basir/internal/model"
)

func TestParseLabels(t *testing.T) {
	tests := []struct {
		raw  string
		want []model.Label
	}{
		{"restaurant", []model.Label{model.LabelRestaurant}},
		{"  Accommodation, Restaurant \n", []model.Label{model.LabelAccommodation, model.LabelRestaurant}},
		{"visa,dish", []model.Label{model.LabelVisa, model.LabelDish}},
		{"visa dish\tseasonal", []model.Label{model.LabelVisa, model.LabelDish, model.LabelSeasonal}},
		{"restaurant, restaurant", []model.Label{model.LabelRestaurant}},
		{"scam, visa, scam", []model.Label{model.LabelScam, model.LabelVisa}},
		{"restaurants, hotels", nil},
		{"The answer is: activity.", nil},
		{"activity.", nil},
		{"Labels: activity", []model.Label{model.LabelActivity}},
		{"", nil},
		{"   ", nil},
		{"unknown", nil},
	}

	for _, tt := range tests {
		got := ParseLabels(tt.raw).Labels()
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseLabels(%q) mismatch (-want +got):\n%s", tt.raw, diff)
		}
	}
}

func TestParseLabels_Kinds(t *testing.T) {
	if k := ParseLabels("restaurant").Kind(); k != model.KindSingle {
		t.Errorf("single label kind = %v", k)
	}
	if k := ParseLabels("restaurant,restaurant").Kind(); k != model.KindSingle {
		t.Errorf("duplicate label kind = %v", k)
	}
	if k := ParseLabels("restaurant,visa").Kind(); k != model.KindMultiple {
		t.Errorf("two label kind = %v", k)
	}
	if !ParseLabels("nothing here").IsUnknown() {
		t.Error("expected unknown")
	}
}

func TestNormalizeQuery(t *testing.T) {
	if got := NormalizeQuery("  cheap hotel\nnear\r\nEiffel  "); got != "cheap hotel near  Eiffel" {
		t.Errorf("NormalizeQuery = %q", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("best pasta in Rome")

	if !strings.HasSuffix(p, "Query: best pasta in Rome\nLabels:") {
		t.Errorf("prompt should end with the query, got %q", p[len(p)-40:])
	}
	// taxonomy is listed in its fixed order
	order := []string{"- activity", "- accommodation", "- visa", "- scam", "- dish", "- transportation", "- seasonal", "- restaurant"}
	last := -1
	for _, item := range order {
		idx := strings.Index(p, item+"\n")
		if idx < 0 {
			t.Fatalf("prompt missing %q", item)
		}
		if idx < last {
			t.Errorf("%q out of order", item)
		}
		last = idx
	}
}

func TestClassifier_Classify(t *testing.T) {
	var prompts []string
	strategy := StrategyFunc(func(ctx context.Context, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		return "accommodation, restaurant", nil
	})

	c := New(strategy, zaptest.NewLogger(t))
	got := c.Classify(context.Background(), "hotel and\nrestaurants in London")

	if diff := cmp.Diff([]model.Label{model.LabelAccommodation, model.LabelRestaurant}, got.Labels()); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if len(prompts) != 1 {
		t.Fatalf("strategy invoked %d times, want 1", len(prompts))
	}
	if !strings.Contains(prompts[0], "Query: hotel and restaurants in London\n") {
		t.Errorf("query not normalized in prompt: %q", prompts[0])
	}
}

func TestClassifier_FailOpen(t *testing.T) {
	c := New(StrategyFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("connection refused")
	}), zaptest.NewLogger(t))

	if got := c.Classify(context.Background(), "visa for Japan"); !got.IsUnknown() {
		t.Errorf("expected unknown on strategy error, got %s", got)
	}
}

func TestClassifier_NilLogger(t *testing.T) {
	c := New(StrategyFunc(func(ctx context.Context, prompt string) (string, error) {
		return "scam", nil
	}), nil)
	if got := c.Classify(context.Background(), "tourist traps in Bangkok"); got.String() != "scam" {
		t.Errorf("got %s", got)
	}
}

// Ollama end to end: HTTP failures and odd payloads all become unknown.
func TestClassifier_OllamaBackend(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{"ok", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"model": "llama3.1", "response": "Restaurant\n", "done": true})
		}, "restaurant"},
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, model.UnknownIntent},
		{"missing response field", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"model": "llama3.1", "done": true}`))
		}, model.UnknownIntent},
		{"not json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}, model.UnknownIntent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			provider, err := llm.NewOllamaProvider(llm.Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5})
			if err != nil {
				t.Fatalf("NewOllamaProvider: %v", err)
			}

			c := New(NewLLMStrategy(provider), zaptest.NewLogger(t))
			if got := c.Classify(context.Background(), "Best Italian food in Rome?"); got.String() != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
