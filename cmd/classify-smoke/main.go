// Smoke program that runs the reference travel questions through a live
// classifier and compares the returned topics with the expected ones.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/basir/internal/classify"
	"github.com/ppiankov/basir/internal/llm"
	"github.com/ppiankov/basir/internal/model"
)

var cases = []struct {
	query string
	want  model.ClassificationResult
}{
	{"where can I find some good italian food in Rome?", model.Single(model.LabelRestaurant)},
	{"what are some fun things to do in Tokyo?", model.Single(model.LabelActivity)},
	{"I need a cheap hotel near the Eiffel Tower", model.Single(model.LabelAccommodation)},
	{"find me a cheap hotel and some restaurants in London", model.Multiple(model.LabelAccommodation, model.LabelRestaurant)},
	{"what is the color of the sky on mars?", model.Unknown()},
}

// sameTopics compares label sets; multi-topic order is up to the model.
func sameTopics(a, b model.ClassificationResult) bool {
	if a.IsUnknown() || b.IsUnknown() {
		return a.IsUnknown() == b.IsUnknown()
	}
	la, lb := a.Labels(), b.Labels()
	if len(la) != len(lb) {
		return false
	}
	seen := make(map[model.Label]bool, len(la))
	for _, l := range la {
		seen[l] = true
	}
	for _, l := range lb {
		if !seen[l] {
			return false
		}
	}
	return true
}

func main() {
	cfg := model.DefaultConfig().Classifier
	if p := os.Getenv("BASIR_CLASSIFIER_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	if m := os.Getenv("BASIR_CLASSIFIER_MODEL"); m != "" {
		cfg.Model = m
	}
	if base := os.Getenv("OLLAMA_BASE_URL"); base != "" {
		cfg.BaseURL = base
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	classifier := classify.New(classify.NewLLMStrategy(provider), logger)

	fmt.Printf("=== Classifier Smoke Test (%s) ===\n\n", provider.Name())

	mismatches := 0
	for _, tc := range cases {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		got := classifier.Classify(ctx, tc.query)
		cancel()

		fmt.Printf("Query: %s\n", tc.query)
		fmt.Println(strings.Repeat("-", 60))
		if sameTopics(got, tc.want) {
			fmt.Printf("  ✓ %s\n\n", got)
			continue
		}
		mismatches++
		fmt.Printf("  ✗ got %s, want %s\n\n", got, tc.want)
	}

	fmt.Printf("=== %d/%d matched ===\n", len(cases)-mismatches, len(cases))
	if mismatches > 0 {
		os.Exit(1)
	}
}
