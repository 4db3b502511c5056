package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ppiankov/basir/internal/worker"
)

var classifyJSON bool

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Show which travel topics a question is about",
	Long: `Classify runs only the intent classifier. Nothing is retrieved or written.

Example:
  basir classify "where can I find good Italian food in Rome?"
  basir classify "what is the color of the sky on mars?" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print the result as JSON")
}

func runClassify(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	limiter := worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	classifier, err := newClassifier(cfg, limiter, logger)
	if err != nil {
		return err
	}

	result := classifier.Classify(context.Background(), query)

	if classifyJSON {
		return printJSON(os.Stdout, result)
	}

	if result.IsUnknown() {
		printStatus(os.Stdout, "?", "unknown", color.FgYellow)
		return nil
	}
	for _, label := range result.Labels() {
		printStatus(os.Stdout, "✓", fmt.Sprintf("%s (%s)", label, label.Plural()), color.FgGreen)
	}
	return nil
}
