package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	queryJSON      bool
	queryTimeout   time.Duration
	queryOutputDir string
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Answer one travel question",
	Long: `Query classifies the question, runs one specialist task per matched
topic and prints the aggregated result. Per-topic outputs and the final
aggregate are written to the output directory.

Example:
  basir query "find me a cheap hotel and some restaurants in London"
  basir query "do I need a visa for Japan?" --json
  basir query "street food in Bangkok" --output-dir ./answers`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "print the raw JSON response")
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 0, "overall timeout (0 = none)")
	queryCmd.Flags().StringVar(&queryOutputDir, "output-dir", "", "artifact directory (overrides output.dir)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	ctx := context.Background()
	if queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, queryTimeout)
		defer cancel()
	}

	if queryOutputDir != "" {
		cfg.Output.Dir = queryOutputDir
	}

	router, err := newRouter(cfg, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	resp := router.Run(ctx, query)
	logger.Debug("query finished",
		zap.String("request_id", resp.RequestID),
		zap.Duration("elapsed", time.Since(start)))

	if queryJSON {
		return printJSON(os.Stdout, resp)
	}

	printResponse(os.Stdout, resp)
	if verbose {
		fmt.Fprintf(os.Stderr, "Artifacts: %s\n", cfg.Output.Dir)
	}
	return nil
}
