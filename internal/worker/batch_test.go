package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/ppiankov/basir/internal/llm"
	"github.com/ppiankov/basir/internal/model"
	"github.com/ppiankov/basir/internal/pipeline"
	"github.com/ppiankov/basir/internal/registry"
	"github.com/ppiankov/basir/internal/retrieval"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// MockRunner implements Runner
type MockRunner struct {
	mu      sync.Mutex
	queries []string
	fail    map[string]bool
}

func (m *MockRunner) Run(ctx context.Context, query string) *model.Response {
	time.Sleep(5 * time.Millisecond) // Simulate work
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()

	if m.fail[query] {
		return model.ErrorResponse(model.ResponseUnknownIntent, model.ErrMsgUnknownIntent)
	}
	agg := model.NewAggregatedResponse()
	agg.Set("Visa & Entry Advisor", model.TaskOutcome{Result: &model.TaskResult{Key: "visas"}})
	return &model.Response{Kind: model.ResponseOK, Aggregated: agg}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queries.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessQueries(t *testing.T) {
	runner := &MockRunner{}
	processor := NewBatchProcessor(SharedRunner(runner), 2)

	queries := []string{"visa for Japan", "hostels in Lisbon", "street food in Bangkok", "scams in Rome"}
	results := processor.ProcessQueries(context.Background(), queries)

	if len(results) != len(queries) {
		t.Fatalf("expected %d results, got %d", len(queries), len(results))
	}

	for i, res := range results {
		if res.Index != i || res.Query != queries[i] {
			t.Errorf("result %d out of order: index %d query %q", i, res.Index, res.Query)
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %q: %v", res.Query, res.Error)
		}
		if res.Response == nil || res.Response.Kind != model.ResponseOK {
			t.Errorf("expected ok response for %q", res.Query)
		}
	}
}

func TestBatchProcessor_ProcessQueries_Error(t *testing.T) {
	runner := &MockRunner{fail: map[string]bool{"what is the color of the sky on mars?": true}}
	processor := NewBatchProcessor(SharedRunner(runner), 2)

	results := processor.ProcessQueries(context.Background(), []string{"visa for Japan", "what is the color of the sky on mars?"})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Error != nil {
		t.Errorf("unexpected error: %v", results[0].Error)
	}
	if results[1].Error == nil || results[1].Error.Error() != model.ErrMsgUnknownIntent {
		t.Errorf("expected unknown intent error, got %v", results[1].Error)
	}
}

func TestBatchProcessor_ProcessQueries_Empty(t *testing.T) {
	processor := NewBatchProcessor(SharedRunner(&MockRunner{}), 2)

	results := processor.ProcessQueries(context.Background(), []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

type fixedClassifier struct {
	result model.ClassificationResult
}

func (c fixedClassifier) Classify(ctx context.Context, query string) model.ClassificationResult {
	return c.result
}

func TestPerQueryDirs(t *testing.T) {
	root := t.TempDir()
	empty := retrieval.Func(func(ctx context.Context, query string, label model.Label) (*retrieval.Result, error) {
		return retrieval.NewResult(label), nil
	})
	var generator llm.Provider // zero records never reach generation
	router := pipeline.NewRouter(fixedClassifier{model.Single(model.LabelVisa)}, registry.New(), empty, generator)

	processor := NewBatchProcessor(PerQueryDirs(router, root), 3)
	queries := []string{"visa for Japan", "visa for Peru", "visa for Kenya"}
	results := processor.ProcessQueries(context.Background(), queries)

	for i, res := range results {
		if res.Error != nil {
			t.Fatalf("query %q failed: %v", res.Query, res.Error)
		}
		final := filepath.Join(root, QueryDirName(i, queries[i]), pipeline.FinalArtifact)
		if _, err := os.Stat(final); err != nil {
			t.Errorf("missing artifact for %q: %v", queries[i], err)
		}
	}
}

func TestQueryDirName(t *testing.T) {
	tests := []struct {
		index int
		query string
		want  string
	}{
		{0, "Visa for Japan?", "001-visa-for-japan"},
		{11, "  !!!  ", "012-query"},
		{2, "Cheap hotels & street food in Ho Chi Minh City, Vietnam", "003-cheap-hotels-street-food-in-ho-chi-minh"},
	}

	for _, tt := range tests {
		if got := QueryDirName(tt.index, tt.query); got != tt.want {
			t.Errorf("QueryDirName(%d, %q) = %q, want %q", tt.index, tt.query, got, tt.want)
		}
	}
}

func TestReadQueriesFromFile(t *testing.T) {
	path := writeTempFile(t, `visa for Japan
# comment
hostels in Lisbon

street food in Bangkok
visa for Japan`)

	queries, err := ReadQueriesFromFile(path)
	if err != nil {
		t.Fatalf("ReadQueriesFromFile failed: %v", err)
	}

	expected := []string{"visa for Japan", "hostels in Lisbon", "street food in Bangkok"}
	if strings.Join(queries, "|") != strings.Join(expected, "|") {
		t.Errorf("expected %v, got %v", expected, queries)
	}
}

func TestReadQueriesFromFile_NonExistent(t *testing.T) {
	_, err := ReadQueriesFromFile("non_existent_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestQueryResult_GetError(t *testing.T) {
	r1 := &QueryResult{Query: "visa for Japan"}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("query failed")
	r2 := &QueryResult{Query: "visa for Japan", Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeTempFile(t, "visa for Japan\nhostels in Lisbon\n# comment\n\nscams in Rome\n")

	processor := NewBatchProcessor(SharedRunner(&MockRunner{}), 2)

	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(SharedRunner(&MockRunner{}), 2)

	_, err := processor.ProcessFile(context.Background(), "no_such_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}
