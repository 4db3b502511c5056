package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/basir/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query router over HTTP",
	Long: `Serve exposes the router as GET /api/run_crew?query=<text>.

The response body is the aggregated JSON mapping, or {"error": "..."}.
GET /healthz reports liveness; GET /readyz checks the classifier and
synthesis backends and answers 503 while either is unreachable.

Example:
  basir serve
  basir serve --addr 127.0.0.1:8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := wire(cfg, logger)
	if err != nil {
		return err
	}

	// unavailable backends are reported, not fatal; /readyz keeps reporting them
	probes := b.probes()
	server.CheckBackends(ctx, probes, logger)

	handler := server.NewHandler(b.router, logger.Named("http"), server.WithReadiness(probes...))
	return server.ListenAndServe(ctx, cfg.Server.Addr, handler, logger)
}
