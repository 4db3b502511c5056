package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UnknownIntent is the sentinel token for a query with no actionable intent.
const UnknownIntent = "unknown"

// ClassificationKind discriminates the ClassificationResult variants
type ClassificationKind int

const (
	KindUnknown ClassificationKind = iota
	KindSingle
	KindMultiple
)

func (k ClassificationKind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindMultiple:
		return "multiple"
	default:
		return "unknown"
	}
}

// ClassificationResult is the outcome of intent classification: Unknown,
// a single Label, or an ordered set of distinct Labels.
//
// The zero value is Unknown. Values are immutable; use the constructors.
type ClassificationResult struct {
	kind   ClassificationKind
	labels []Label
}

// Unknown returns the "no actionable intent" result.
func Unknown() ClassificationResult {
	return ClassificationResult{kind: KindUnknown}
}

// Single returns a one-label result, or Unknown for a label outside the
// taxonomy.
func Single(l Label) ClassificationResult {
	if !l.Valid() {
		return Unknown()
	}
	return ClassificationResult{kind: KindSingle, labels: []Label{l}}
}

// Multiple returns an ordered multi-label result. Invalid labels are dropped
// and duplicates collapse to their first occurrence, so the result degrades to
// Single or Unknown when fewer than two distinct labels remain.
func Multiple(labels ...Label) ClassificationResult {
	seen := make(map[Label]bool, len(labels))
	var distinct []Label
	for _, l := range labels {
		if !l.Valid() || seen[l] {
			continue
		}
		seen[l] = true
		distinct = append(distinct, l)
	}

	switch len(distinct) {
	case 0:
		return Unknown()
	case 1:
		return Single(distinct[0])
	default:
		return ClassificationResult{kind: KindMultiple, labels: distinct}
	}
}

// Kind returns which variant r is.
func (r ClassificationResult) Kind() ClassificationKind {
	return r.kind
}

// IsUnknown reports whether r is the Unknown sentinel.
func (r ClassificationResult) IsUnknown() bool {
	return r.kind == KindUnknown
}

// Labels returns the labels as an ordered sequence. Single yields one
// element, Unknown yields nil. The slice is a copy.
func (r ClassificationResult) Labels() []Label {
	if r.kind == KindUnknown {
		return nil
	}
	out := make([]Label, len(r.labels))
	copy(out, r.labels)
	return out
}

func (r ClassificationResult) String() string {
	switch r.kind {
	case KindSingle:
		return string(r.labels[0])
	case KindMultiple:
		parts := make([]string, len(r.labels))
		for i, l := range r.labels {
			parts[i] = string(l)
		}
		return strings.Join(parts, ",")
	default:
		return UnknownIntent
	}
}

// MarshalJSON renders "unknown", "label" or ["label", ...].
func (r ClassificationResult) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case KindSingle:
		return json.Marshal(string(r.labels[0]))
	case KindMultiple:
		return json.Marshal(r.labels)
	default:
		return json.Marshal(UnknownIntent)
	}
}

// UnmarshalJSON accepts the forms produced by MarshalJSON.
func (r *ClassificationResult) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == UnknownIntent {
			*r = Unknown()
			return nil
		}
		l, ok := ParseLabel(single)
		if !ok {
			return fmt.Errorf("invalid label %q", single)
		}
		*r = Single(l)
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("classification must be a string or list of strings: %w", err)
	}
	labels := make([]Label, 0, len(many))
	for _, s := range many {
		l, ok := ParseLabel(s)
		if !ok {
			return fmt.Errorf("invalid label %q", s)
		}
		labels = append(labels, l)
	}
	*r = Multiple(labels...)
	return nil
}
