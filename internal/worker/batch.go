package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/basir/internal/model"
	"github.com/ppiankov/basir/internal/pipeline"
)

// Runner answers one query
type Runner interface {
	Run(ctx context.Context, query string) *model.Response
}

// RunnerFactory returns the runner for the index-th query of a batch
type RunnerFactory func(index int, query string) Runner

// SharedRunner uses the same runner for every query
func SharedRunner(r Runner) RunnerFactory {
	return func(int, string) Runner { return r }
}

// PerQueryDirs gives each query its own artifact directory under root, so
// concurrent queries never overwrite each other's outputs.
func PerQueryDirs(router *pipeline.Router, root string) RunnerFactory {
	return func(index int, query string) Runner {
		return router.WithArtifactDir(filepath.Join(root, QueryDirName(index, query)))
	}
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// QueryDirName builds "<NNN>-<slug>" for the index-th query
func QueryDirName(index int, query string) string {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(query), "-"), "-")
	if len(slug) > 40 {
		slug = strings.TrimRight(slug[:40], "-")
	}
	if slug == "" {
		slug = "query"
	}
	return fmt.Sprintf("%03d-%s", index+1, slug)
}

// QueryJob runs one query of a batch
type QueryJob struct {
	Index  int
	Query  string
	Runner Runner
}

// Execute executes the query job
func (j *QueryJob) Execute(ctx context.Context) Result {
	resp := j.Runner.Run(ctx, j.Query)
	result := &QueryResult{
		Index:    j.Index,
		Query:    j.Query,
		Response: resp,
	}
	if resp == nil {
		result.Error = errors.New("no response")
	} else if resp.Kind != model.ResponseOK {
		result.Error = errors.New(resp.Error)
	}
	return result
}

// QueryResult represents the result of a query job
type QueryResult struct {
	Index    int
	Query    string
	Response *model.Response
	Error    error
}

// GetError returns the error from the query result
func (r *QueryResult) GetError() error {
	return r.Error
}

// BatchProcessor processes multiple queries concurrently
type BatchProcessor struct {
	runners     RunnerFactory
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runners RunnerFactory, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runners:     runners,
		concurrency: concurrency,
	}
}

// ProcessQueries runs every query and returns the results in input order
func (b *BatchProcessor) ProcessQueries(ctx context.Context, queries []string) []*QueryResult {
	if len(queries) == 0 {
		return []*QueryResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, q := range queries {
		pool.Submit(&QueryJob{
			Index:  i,
			Query:  q,
			Runner: b.runners(i, q),
		})
	}

	results := pool.Wait()

	queryResults := make([]*QueryResult, len(results))
	for i, result := range results {
		queryResults[i] = result.(*QueryResult)
	}
	sort.Slice(queryResults, func(i, j int) bool {
		return queryResults[i].Index < queryResults[j].Index
	})

	return queryResults
}

// ProcessFile reads queries from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*QueryResult, error) {
	queries, err := ReadQueriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}

	return b.ProcessQueries(ctx, queries), nil
}

// ReadQueriesFromFile reads queries from a file (one per line). Blank lines
// and lines starting with # are skipped; repeated queries are kept once.
func ReadQueriesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var queries []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			queries = append(queries, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return queries, nil
}
