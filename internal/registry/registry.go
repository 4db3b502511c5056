// Package registry holds the fixed mapping from intent label to the task
// that answers it.
package registry

import (
	"fmt"
	"strings"

	"github.com/ppiankov/basir/internal/model"
	"github.com/ppiankov/basir/internal/schema"
)

// TaskSpec describes one retrieval-and-summarization task
type TaskSpec struct {
	Label          model.Label
	Role           string
	Goal           string
	Backstory      string
	Description    string // contains the {query} placeholder
	ExpectedOutput string
	Schema         *schema.Schema
	ArtifactPath   string
}

// RenderDescription fills the query into the task description
func (t TaskSpec) RenderDescription(query string) string {
	return strings.ReplaceAll(t.Description, "{query}", query)
}

type entry struct {
	role     string
	baseGoal string
}

var defaults = map[model.Label]entry{
	model.LabelActivity:       {"Activity Specialist", "Find travel activities"},
	model.LabelAccommodation:  {"Accommodation Specialist", "Find places to stay"},
	model.LabelDish:           {"Local Cuisine Expert", "Find local dishes"},
	model.LabelRestaurant:     {"Restaurant Expert", "Find places to eat"},
	model.LabelScam:           {"Safety Advisor", "Find information on common scams"},
	model.LabelSeasonal:       {"Seasonal Travel Advisor", "Find the best time to travel"},
	model.LabelTransportation: {"Transportation Specialist", "Find how to get around"},
	model.LabelVisa:           {"Visa & Entry Advisor", "Find visa requirements"},
}

// Registry is read-only after construction and safe for concurrent use.
type Registry struct {
	order []model.Label
	specs map[model.Label]TaskSpec
}

// New builds the registry with one task per taxonomy label.
func New() *Registry {
	specs := make([]TaskSpec, 0, len(defaults))
	for _, label := range model.AllLabels() {
		specs = append(specs, defaultSpec(label))
	}
	r, err := FromSpecs(specs)
	if err != nil {
		// the built-in table is static
		panic(fmt.Sprintf("registry: invalid built-in task table: %v", err))
	}
	return r
}

func defaultSpec(label model.Label) TaskSpec {
	e := defaults[label]
	s, _ := schema.For(label)
	return TaskSpec{
		Label:          label,
		Role:           e.role,
		Goal:           e.baseGoal + " based on user queries from a vector database.",
		Backstory:      fmt.Sprintf("You are an expert in retrieving information about %s.", label),
		Description:    fmt.Sprintf("Find relevant information about '%s' for query: '{query}'", label),
		ExpectedOutput: fmt.Sprintf("JSON data about %s", label),
		Schema:         s,
		ArtifactPath:   fmt.Sprintf("%s_result.json", label),
	}
}

// FromSpecs builds a registry from a custom task set. Labels and roles must
// be unique and every task needs a schema.
func FromSpecs(specs []TaskSpec) (*Registry, error) {
	r := &Registry{specs: make(map[model.Label]TaskSpec, len(specs))}
	roles := make(map[string]model.Label, len(specs))

	for _, s := range specs {
		if !s.Label.Valid() {
			return nil, fmt.Errorf("task %q: label %q is not in the taxonomy", s.Role, s.Label)
		}
		if s.Role == "" {
			return nil, fmt.Errorf("task for %s: role is required", s.Label)
		}
		if s.Schema == nil {
			return nil, fmt.Errorf("task for %s: schema is required", s.Label)
		}
		if _, dup := r.specs[s.Label]; dup {
			return nil, fmt.Errorf("duplicate task for label %s", s.Label)
		}
		if other, dup := roles[s.Role]; dup {
			return nil, fmt.Errorf("role %q used by both %s and %s", s.Role, other, s.Label)
		}
		if s.ArtifactPath == "" {
			s.ArtifactPath = fmt.Sprintf("%s_result.json", s.Label)
		}
		roles[s.Role] = s.Label
		r.specs[s.Label] = s
		r.order = append(r.order, s.Label)
	}
	return r, nil
}

// Lookup returns the task bound to label. The returned value is a copy.
func (r *Registry) Lookup(label model.Label) (TaskSpec, bool) {
	s, ok := r.specs[label]
	return s, ok
}

// Specs returns every task in registration order
func (r *Registry) Specs() []TaskSpec {
	out := make([]TaskSpec, 0, len(r.order))
	for _, l := range r.order {
		out = append(out, r.specs[l])
	}
	return out
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int { return len(r.order) }
