package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/basir/internal/worker"
)

var (
	batchTimeout   time.Duration
	batchOutputDir string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Answer many travel questions from a file in parallel",
	Long: `Batch answers every question in a file (one per line) concurrently:
- Blank lines and lines starting with # are skipped
- Repeated questions are answered once
- Each question gets its own artifact directory under --output-dir

Example:
  basir batch questions.txt
  basir batch questions.txt --concurrency 8 --output-dir ./answers
  basir batch questions.txt --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Int("concurrency", 0, "number of concurrent queries (overrides concurrency.batch_workers)")
	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "", "root directory for per-query artifacts (overrides output.dir)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", time.Hour, "total timeout for batch processing")

	_ = viper.BindPFlag("concurrency.batch_workers", batchCmd.Flags().Lookup("concurrency"))
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	workers := cfg.Concurrency.BatchWorkers
	if workers <= 0 {
		workers = 1
	}
	outputDir := cfg.Output.Dir
	if batchOutputDir != "" {
		outputDir = batchOutputDir
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Basir Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "  Synthesis:    %s/%s\n", cfg.Synthesis.Provider, cfg.Synthesis.Model)
	fmt.Fprintf(os.Stderr, "\n")

	router, err := newRouter(cfg, logger)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(worker.PerQueryDirs(router, outputDir), workers)

	fmt.Fprintf(os.Stderr, "⚙️  Answering questions with %d workers...\n\n", workers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			printStatus(os.Stderr, "✗", fmt.Sprintf("%s: %v", result.Query, result.Error), color.FgRed)
			continue
		}

		successCount++
		failedTasks := 0
		for _, role := range result.Response.Aggregated.Roles() {
			if outcome, _ := result.Response.Aggregated.Get(role); outcome.Failed() {
				failedTasks++
			}
		}
		msg := fmt.Sprintf("%s (%s) -> %s", result.Query, result.Response.Classification, worker.QueryDirName(result.Index, result.Query))
		if failedTasks > 0 {
			printStatus(os.Stderr, "!", fmt.Sprintf("%s, %d task(s) failed", msg, failedTasks), color.FgYellow)
			continue
		}
		printStatus(os.Stderr, "✓", msg, color.FgGreen)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d questions\n", len(results))
	fmt.Fprintf(os.Stderr, "  Answered:  %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
