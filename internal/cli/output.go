package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/ppiankov/basir/internal/model"
)

// printStatus prints a status line with color
func printStatus(w io.Writer, symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Fprintf(w, "%s %s\n", c.Sprint(symbol), message)
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printResponse renders a router response for a terminal
func printResponse(w io.Writer, resp *model.Response) {
	if resp.Kind != model.ResponseOK {
		printStatus(w, "✗", resp.Error, color.FgRed)
		return
	}

	fmt.Fprintf(w, "Topics: %s\n\n", resp.Classification)
	for _, role := range resp.Aggregated.Roles() {
		outcome, _ := resp.Aggregated.Get(role)
		if outcome.Failed() {
			printStatus(w, "✗", fmt.Sprintf("%s: %s", role, outcome.Error), color.FgRed)
			continue
		}
		entries := outcome.Result.Entries
		if len(entries) == 0 {
			printStatus(w, "○", fmt.Sprintf("%s: nothing relevant found", role), color.FgYellow)
			continue
		}
		printStatus(w, "✓", fmt.Sprintf("%s: %d result(s)", role, len(entries)), color.FgGreen)
		for i, entry := range entries {
			fmt.Fprintf(w, "  %d.\n", i+1)
			printEntry(w, entry)
		}
		fmt.Fprintln(w)
	}
}

func printEntry(w io.Writer, entry map[string]any) {
	keys := make([]string, 0, len(entry))
	for k := range entry {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := entry[k]
		if v == nil {
			continue
		}
		if list, ok := v.([]any); ok {
			parts := make([]string, len(list))
			for i, item := range list {
				parts[i] = fmt.Sprint(item)
			}
			v = strings.Join(parts, ", ")
		}
		fmt.Fprintf(w, "     %s: %v\n", color.CyanString(k), v)
	}
}
