// Package embedding turns query text into the vectors used for similarity
// search. Backends: Ollama (local), OpenAI-compatible APIs and Google GenAI.
package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/basir/internal/cache"
	"github.com/ppiankov/basir/internal/model"
)

// Engine generates vector embeddings for text.
type Engine interface {
	// Embed generates the embedding for a single text
	Embed(ctx context.Context, text string) ([]float32, error)

	// Name returns "<backend>:<model>"
	Name() string
}

// NewEngine creates an embedding engine based on configuration
func NewEngine(cfg model.EmbeddingConfig) (Engine, error) {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	switch strings.ToLower(cfg.Provider) {
	case "ollama", "":
		return NewOllamaEngine(cfg.BaseURL, cfg.Model, timeout), nil
	case "openai":
		return NewOpenAIEngine(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case "gemini", "genai":
		return NewGenAIEngine(cfg.APIKey, cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: ollama, openai, gemini)", cfg.Provider)
	}
}

// CachedEngine serves repeated texts from a cache
type CachedEngine struct {
	inner  Engine
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// WithCache wraps inner with c. A nil cache returns inner unchanged.
func WithCache(inner Engine, c cache.Cache, ttl time.Duration, logger *zap.Logger) Engine {
	if c == nil {
		return inner
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEngine{inner: inner, cache: c, ttl: ttl, logger: logger}
}

// Embed returns the cached vector or computes and stores it
func (e *CachedEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cache.CacheKey(e.inner.Name(), text)

	if data, ok := e.cache.Get(key); ok {
		var vec []float32
		if err := json.Unmarshal(data, &vec); err == nil {
			e.logger.Debug("embedding cache hit", zap.String("engine", e.inner.Name()))
			return vec, nil
		}
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vec); err == nil {
		if err := e.cache.Set(key, data, e.ttl); err != nil {
			e.logger.Warn("embedding cache write failed", zap.Error(err))
		}
	}
	return vec, nil
}

// Name returns the wrapped engine's name
func (e *CachedEngine) Name() string {
	return e.inner.Name()
}
