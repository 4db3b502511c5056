package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/basir/internal/schema"
)

// BuildSystemPrompt frames the model as the task's specialist
func BuildSystemPrompt(role, goal, backstory string) string {
	return fmt.Sprintf("You are %s.\n%s\n\nYour goal: %s", role, backstory, goal)
}

// BuildTaskPrompt constructs the user prompt for one synthesis task.
// Records are the retrieved rows; the model may only use facts found in them.
func BuildTaskPrompt(description string, records any, expectedOutput string, s *schema.Schema) (string, error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal records: %w", err)
	}

	var b strings.Builder
	b.WriteString(description)
	b.WriteString("\n\nRetrieved records:\n")
	b.Write(data)
	b.WriteString("\n\nRULES:\n")
	b.WriteString("1. Use ONLY information present in the retrieved records. Do not invent entries.\n")
	b.WriteString("2. Keep only records relevant to the query.\n")
	b.WriteString("3. Use null for optional fields the records do not cover.\n")
	fmt.Fprintf(&b, "\nExpected output: %s\n", expectedOutput)
	if s != nil {
		b.WriteString(JSONOnlyInstruction(s))
	}
	return b.String(), nil
}

// JSONOnlyInstruction tells the model to answer with a bare JSON document
// shaped like s.
func JSONOnlyInstruction(s *schema.Schema) string {
	return fmt.Sprintf("Respond with a single JSON object and nothing else, in this shape (%s):\n%s\n",
		s.Name(), s.Describe())
}
