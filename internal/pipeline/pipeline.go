// Package pipeline routes a query through classification, per-label task
// execution, aggregation and persistence.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/basir/internal/llm"
	"github.com/ppiankov/basir/internal/model"
	"github.com/ppiankov/basir/internal/registry"
	"github.com/ppiankov/basir/internal/retrieval"
)

// Classifier maps a query to taxonomy labels
type Classifier interface {
	Classify(ctx context.Context, query string) model.ClassificationResult
}

// TaskSource resolves a label to its task
type TaskSource interface {
	Lookup(label model.Label) (registry.TaskSpec, bool)
}

// Router orchestrates one request: classify, dispatch, persist, return.
// It holds no per-request state and is safe for concurrent use.
type Router struct {
	classifier Classifier
	tasks      TaskSource
	retriever  retrieval.Retriever
	generator  llm.Provider
	artifacts  *ArtifactStore
	logger     *zap.Logger
}

// Option customizes a Router
type Option func(*Router)

// WithArtifacts sets where task outputs are persisted. Without it nothing is written.
func WithArtifacts(store *ArtifactStore) Option {
	return func(r *Router) { r.artifacts = store }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRouter wires a router from its collaborators
func NewRouter(classifier Classifier, tasks TaskSource, retriever retrieval.Retriever, generator llm.Provider, opts ...Option) *Router {
	r := &Router{
		classifier: classifier,
		tasks:      tasks,
		retriever:  retriever,
		generator:  generator,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithArtifactDir returns a copy of the router persisting under dir.
func (r *Router) WithArtifactDir(dir string) *Router {
	cp := *r
	cp.artifacts = NewArtifactStore(dir)
	return &cp
}

// Run answers one query. It never returns an error: failures become either
// per-task error markers or a single-key error response.
func (r *Router) Run(ctx context.Context, query string) (resp *model.Response) {
	requestID := uuid.NewString()
	log := r.logger.With(zap.String("request_id", requestID))

	defer func() {
		if p := recover(); p != nil {
			log.Error("query processing panicked",
				zap.String("panic", fmt.Sprint(p)),
				zap.Stack("stack"))
			resp = model.ErrorResponse(model.ResponseInternalError, model.ErrMsgInternal)
			resp.RequestID = requestID
		}
	}()

	resp = r.run(ctx, log, query)
	resp.RequestID = requestID
	return resp
}

func (r *Router) run(ctx context.Context, log *zap.Logger, query string) *model.Response {
	classification := r.classifier.Classify(ctx, query)
	log.Info("query classified", zap.Stringer("classification", classification))

	if classification.IsUnknown() {
		return model.ErrorResponse(model.ResponseUnknownIntent, model.ErrMsgUnknownIntent)
	}

	agg := model.NewAggregatedResponse()
	for _, label := range classification.Labels() {
		spec, ok := r.tasks.Lookup(label)
		if !ok {
			log.Debug("no task registered, skipping", zap.String("label", string(label)))
			continue
		}
		// duplicate labels collapse onto the first slot
		if _, done := agg.Get(spec.Role); done {
			continue
		}

		run := r.runTask(ctx, log, spec, query)
		agg.Set(spec.Role, run.outcome)
		r.persistTask(log, spec, run.raw)
	}

	if agg.Len() == 0 {
		resp := model.ErrorResponse(model.ResponseNoResults, model.ErrMsgNoResults)
		resp.Classification = classification
		return resp
	}

	r.persistFinal(log, agg)

	return &model.Response{
		Kind:           model.ResponseOK,
		Classification: classification,
		Aggregated:     agg,
	}
}

func (r *Router) persistTask(log *zap.Logger, spec registry.TaskSpec, raw []byte) {
	if r.artifacts == nil {
		return
	}
	if err := r.artifacts.WriteTask(spec.ArtifactPath, raw); err != nil {
		log.Warn("writing task artifact failed", zap.String("path", spec.ArtifactPath), zap.Error(err))
	}
}

func (r *Router) persistFinal(log *zap.Logger, agg *model.AggregatedResponse) {
	if r.artifacts == nil {
		return
	}
	if err := r.artifacts.WriteFinal(agg); err != nil {
		log.Warn("writing final artifact failed", zap.Error(err))
		return
	}
	log.Debug("artifacts written", zap.String("dir", r.artifacts.Dir()), zap.Int("tasks", agg.Len()))
}
