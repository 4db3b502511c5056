package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/ppiankov/basir/internal/llm"
	"github.com/ppiankov/basir/internal/model"
	"github.com/ppiankov/basir/internal/registry"
)

// errNoJSON is returned when generated text holds no JSON object
var errNoJSON = errors.New("no JSON object in generated output")

// taskRun is the outcome of one task plus the raw bytes persisted for it
type taskRun struct {
	outcome model.TaskOutcome
	raw     []byte
}

func failedRun(msg string) taskRun {
	raw, _ := json.Marshal(map[string]string{"error": msg})
	return taskRun{outcome: model.TaskOutcome{Error: msg}, raw: raw}
}

// runTask retrieves records for spec's label and turns them into a
// schema-validated result. Failures stay inside the returned outcome.
func (r *Router) runTask(ctx context.Context, log *zap.Logger, spec registry.TaskSpec, query string) taskRun {
	log = log.With(zap.String("label", string(spec.Label)), zap.String("role", spec.Role))

	found, err := r.retriever.Retrieve(ctx, query, spec.Label)
	if err != nil {
		log.Warn("retrieval failed", zap.Error(err))
		return failedRun(err.Error())
	}

	if found.Len() == 0 {
		log.Info("no records retrieved, skipping generation")
		result := &model.TaskResult{Key: spec.Schema.Key(), Entries: []map[string]any{}}
		raw, _ := json.Marshal(result)
		return taskRun{outcome: model.TaskOutcome{Result: result}, raw: raw}
	}

	prompt, err := llm.BuildTaskPrompt(spec.RenderDescription(query), found, spec.ExpectedOutput, spec.Schema)
	if err != nil {
		log.Warn("building task prompt failed", zap.Error(err))
		return failedRun(err.Error())
	}

	resp, err := r.generator.Generate(ctx, llm.GenerateRequest{
		System: llm.BuildSystemPrompt(spec.Role, spec.Goal, spec.Backstory),
		Prompt: prompt,
		Schema: spec.Schema,
	})
	if err != nil {
		log.Warn("generation failed", zap.Error(err))
		return failedRun(fmt.Sprintf("generation failed: %v", err))
	}
	log.Debug("generation finished",
		zap.String("model", resp.Model),
		zap.Int("tokens", resp.TokensUsed),
		zap.Int("records", found.Len()))

	raw := []byte(resp.Text)

	doc, err := extractJSON(resp.Text)
	if err != nil {
		log.Warn("generated output rejected", zap.Error(err))
		return taskRun{outcome: model.TaskOutcome{Error: "schema validation failed: " + err.Error()}, raw: raw}
	}

	entries, err := spec.Schema.Validate(doc)
	if err != nil {
		log.Warn("generated output rejected", zap.Error(err))
		return taskRun{outcome: model.TaskOutcome{Error: "schema validation failed: " + err.Error()}, raw: raw}
	}

	return taskRun{
		outcome: model.TaskOutcome{Result: &model.TaskResult{Key: spec.Schema.Key(), Entries: entries}},
		raw:     raw,
	}
}

// extractJSON returns the JSON object in text. Models sometimes wrap their
// answer in a markdown fence or a sentence; the outermost object wins.
func extractJSON(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if gjson.Valid(text) && gjson.Parse(text).IsObject() {
		return []byte(text), nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, errNoJSON
	}
	candidate := text[start : end+1]
	if !gjson.Valid(candidate) {
		return nil, fmt.Errorf("%w: malformed object", errNoJSON)
	}
	return []byte(candidate), nil
}
