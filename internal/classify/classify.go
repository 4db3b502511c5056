// Package classify maps a free-form travel query to taxonomy labels.
package classify

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/basir/internal/model"
)

// Strategy produces the raw label text for a prompt. It is invoked once
// per classification.
type Strategy interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// StrategyFunc adapts a function to Strategy
type StrategyFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f
func (f StrategyFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Classifier turns queries into ClassificationResults. It never fails:
// any strategy error becomes Unknown.
type Classifier struct {
	strategy Strategy
	logger   *zap.Logger
}

// New creates a classifier. A nil logger disables logging.
func New(strategy Strategy, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{strategy: strategy, logger: logger}
}

// Classify runs the strategy once and parses its answer.
func (c *Classifier) Classify(ctx context.Context, query string) model.ClassificationResult {
	q := NormalizeQuery(query)

	text, err := c.strategy.Complete(ctx, BuildPrompt(q))
	if err != nil {
		c.logger.Warn("intent classification failed", zap.String("query", q), zap.Error(err))
		return model.Unknown()
	}

	result := ParseLabels(text)
	c.logger.Debug("intent classified",
		zap.String("query", q),
		zap.String("raw", text),
		zap.Stringer("result", result))
	return result
}

// NormalizeQuery replaces line breaks with spaces and trims the query
func NormalizeQuery(query string) string {
	q := strings.ReplaceAll(query, "\n", " ")
	q = strings.ReplaceAll(q, "\r", " ")
	return strings.TrimSpace(q)
}

var tokenSplit = regexp.MustCompile(`[,\s]+`)

// ParseLabels extracts taxonomy labels from raw model output. Tokens are
// split on commas and whitespace; only exact lowercase matches count and
// duplicates keep their first position.
func ParseLabels(text string) model.ClassificationResult {
	raw := strings.ToLower(strings.TrimSpace(text))
	if raw == "" {
		return model.Unknown()
	}

	var found []model.Label
	for _, tok := range tokenSplit.Split(raw, -1) {
		if l := model.Label(tok); l.Valid() {
			found = append(found, l)
		}
	}
	return model.Multiple(found...)
}
