package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/basir/internal/cache"
	"github.com/ppiankov/basir/internal/classify"
	"github.com/ppiankov/basir/internal/embedding"
	"github.com/ppiankov/basir/internal/llm"
	"github.com/ppiankov/basir/internal/model"
	"github.com/ppiankov/basir/internal/pipeline"
	"github.com/ppiankov/basir/internal/registry"
	"github.com/ppiankov/basir/internal/retrieval"
	"github.com/ppiankov/basir/internal/server"
	"github.com/ppiankov/basir/internal/worker"
)

// newProvider builds a rate-limited generation backend
func newProvider(c model.LLMConfig, limiter *worker.Limiter) (llm.Provider, error) {
	lc := llm.ConfigFromModel(c)
	p, err := llm.NewProvider(lc)
	if err != nil {
		return nil, err
	}
	return llm.WithRateLimit(p, limiter, llm.Endpoint(lc)), nil
}

func newClassifier(c *model.Config, limiter *worker.Limiter, log *zap.Logger) (*classify.Classifier, error) {
	p, err := newProvider(c.Classifier, limiter)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	return classify.New(classify.NewLLMStrategy(p), log.Named("classify")), nil
}

// backends is the wired pipeline plus the generation providers it calls
type backends struct {
	router     *pipeline.Router
	classifier llm.Provider
	synthesis  llm.Provider
}

// probes exposes each provider's availability check for readiness reporting
func (b *backends) probes() []server.Probe {
	return []server.Probe{
		{Name: "classifier:" + b.classifier.Name(), Check: b.classifier.IsAvailable},
		{Name: "synthesis:" + b.synthesis.Name(), Check: b.synthesis.IsAvailable},
	}
}

// newRouter wires the full query pipeline from configuration
func newRouter(c *model.Config, log *zap.Logger) (*pipeline.Router, error) {
	b, err := wire(c, log)
	if err != nil {
		return nil, err
	}
	return b.router, nil
}

func wire(c *model.Config, log *zap.Logger) (*backends, error) {
	limiter := worker.NewLimiter(c.RateLimit.RequestsPerSecond, c.RateLimit.Burst)

	classifierProvider, err := newProvider(c.Classifier, limiter)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	classifier := classify.New(classify.NewLLMStrategy(classifierProvider), log.Named("classify"))

	generator, err := newProvider(c.Synthesis, limiter)
	if err != nil {
		return nil, fmt.Errorf("synthesis: %w", err)
	}

	engine, err := embedding.NewEngine(c.Embedding)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	engine = embedding.WithCache(engine, cache.New(c.Cache), c.Cache.MemoryTTL, log.Named("embedding"))

	retriever := retrieval.NewMilvusRetriever(c.Retrieval, engine, retrieval.WithLogger(log.Named("retrieval")))

	log.Debug("pipeline wired",
		zap.String("classifier", c.Classifier.Provider+":"+c.Classifier.Model),
		zap.String("synthesis", generator.Name()),
		zap.String("embedding", engine.Name()),
		zap.String("milvus", c.Retrieval.Address))

	router := pipeline.NewRouter(classifier, registry.New(), retriever, generator,
		pipeline.WithArtifacts(pipeline.NewArtifactStore(c.Output.Dir)),
		pipeline.WithLogger(log.Named("router")),
	)
	return &backends{router: router, classifier: classifierProvider, synthesis: generator}, nil
}
