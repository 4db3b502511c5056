package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Caller-visible error messages
const (
	ErrMsgUnknownIntent = "Could not determine query intent"
	ErrMsgNoResults     = "No results generated"
	ErrMsgInternal      = "An internal error occurred while processing the query"
)

// Record is one retrieved row: field name -> scalar or list of scalars
type Record map[string]any

// TaskResult is the accepted output of one task: the label's plural key
// mapped to an ordered list of schema-validated entries.
type TaskResult struct {
	Key     string
	Entries []map[string]any
}

// MarshalJSON renders {"<key>": [...]}; an empty result renders an empty list.
func (r TaskResult) MarshalJSON() ([]byte, error) {
	entries := r.Entries
	if entries == nil {
		entries = []map[string]any{}
	}
	return json.Marshal(map[string]any{r.Key: entries})
}

// TaskOutcome fills one slot of the aggregated response: either a result
// or an error marker local to that task.
type TaskOutcome struct {
	Result *TaskResult
	Error  string
}

// Failed reports whether the slot holds an error marker.
func (o TaskOutcome) Failed() bool {
	return o.Result == nil
}

// MarshalJSON renders the result, or {"error": "..."} for a failed task.
func (o TaskOutcome) MarshalJSON() ([]byte, error) {
	if o.Result == nil {
		return json.Marshal(map[string]string{"error": o.Error})
	}
	return o.Result.MarshalJSON()
}

// AggregatedResponse maps task role names to their outcomes, preserving
// dispatch order.
type AggregatedResponse struct {
	roles []string
	slots map[string]TaskOutcome
}

// NewAggregatedResponse returns an empty response.
func NewAggregatedResponse() *AggregatedResponse {
	return &AggregatedResponse{slots: make(map[string]TaskOutcome)}
}

// Set stores the outcome for role. Setting a role twice keeps its original position.
func (a *AggregatedResponse) Set(role string, outcome TaskOutcome) {
	if _, exists := a.slots[role]; !exists {
		a.roles = append(a.roles, role)
	}
	a.slots[role] = outcome
}

// Get returns the outcome stored for role.
func (a *AggregatedResponse) Get(role string) (TaskOutcome, bool) {
	o, ok := a.slots[role]
	return o, ok
}

// Roles returns the role names in dispatch order.
func (a *AggregatedResponse) Roles() []string {
	out := make([]string, len(a.roles))
	copy(out, a.roles)
	return out
}

// Len returns the number of filled slots.
func (a *AggregatedResponse) Len() int {
	return len(a.roles)
}

// MarshalJSON writes the slots as a JSON object in dispatch order.
func (a *AggregatedResponse) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, role := range a.roles {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(role)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(a.slots[role])
		if err != nil {
			return nil, fmt.Errorf("marshal slot %q: %w", role, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ResponseKind classifies a router response
type ResponseKind string

const (
	ResponseOK            ResponseKind = "ok"
	ResponseUnknownIntent ResponseKind = "unknown_intent"
	ResponseNoResults     ResponseKind = "no_results"
	ResponseInternalError ResponseKind = "internal_error"
)

// Response is what the router returns for one query: the aggregated task
// outputs, or a single-key error mapping.
type Response struct {
	Kind           ResponseKind
	RequestID      string
	Classification ClassificationResult
	Aggregated     *AggregatedResponse
	Error          string
}

// ErrorResponse builds a single-key error response.
func ErrorResponse(kind ResponseKind, msg string) *Response {
	return &Response{Kind: kind, Error: msg}
}

// MarshalJSON renders the aggregated mapping, or {"error": "..."}.
func (r *Response) MarshalJSON() ([]byte, error) {
	if r.Kind != ResponseOK || r.Aggregated == nil {
		return json.Marshal(map[string]string{"error": r.Error})
	}
	return r.Aggregated.MarshalJSON()
}
