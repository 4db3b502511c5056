// Package retrieval finds the stored records most similar to a query for
// one taxonomy label.
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ppiankov/basir/internal/model"
)

// Retriever is the retrieval capability used by task execution.
type Retriever interface {
	// Retrieve returns records for label, most similar first. The result is
	// keyed by the label's plural name. A search that finds nothing is not
	// an error.
	Retrieve(ctx context.Context, query string, label model.Label) (*Result, error)
}

// Func adapts a function to the Retriever interface
type Func func(ctx context.Context, query string, label model.Label) (*Result, error)

// Retrieve calls f
func (f Func) Retrieve(ctx context.Context, query string, label model.Label) (*Result, error) {
	return f(ctx, query, label)
}

// Result is the payload handed to generation: {"<plural>": [records...]}
type Result struct {
	Key     string
	Records []model.Record
}

// NewResult builds an empty result for label
func NewResult(label model.Label) *Result {
	return &Result{Key: label.Plural(), Records: []model.Record{}}
}

// Len returns the number of records
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}

// MarshalJSON renders {"<key>": [...]} with an empty list for no records.
func (r *Result) MarshalJSON() ([]byte, error) {
	records := r.Records
	if records == nil {
		records = []model.Record{}
	}
	var buf bytes.Buffer
	key, err := json.Marshal(r.Key)
	if err != nil {
		return nil, err
	}
	val, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshal records: %w", err)
	}
	buf.WriteByte('{')
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(val)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnknownLabelError is returned for a label with no configured collection.
type UnknownLabelError struct {
	Label string
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("unknown intent '%s'. No matching collection configured.", e.Label)
}
