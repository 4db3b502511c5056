package classify

import (
	"fmt"
	"strings"

	"github.com/ppiankov/basir/internal/model"
)

// BuildPrompt renders the fixed classification instruction for a
// normalized query.
func BuildPrompt(query string) string {
	var b strings.Builder
	b.WriteString("You are a classification expert. Classify the user's query into one or more of the following categories depending on relevance:\n")
	for _, l := range model.AllLabels() {
		fmt.Fprintf(&b, "- %s\n", l)
	}
	b.WriteString("\nRules:\n")
	b.WriteString("- Reply with a comma-separated list of relevant categories (e.g., visa, restaurant).\n")
	b.WriteString("- Do NOT explain. Do NOT add anything else. ONLY output the category names.\n")
	b.WriteString("- If only one category applies, return just that one word.\n")
	b.WriteString("- Only use the category names listed above. No synonyms or other text.\n\n")
	fmt.Fprintf(&b, "Query: %s\nLabels:", query)
	return b.String()
}
