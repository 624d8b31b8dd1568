package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/trainlog/internal/aggregator"
	"github.com/atikulmunna/trainlog/internal/config"
	"github.com/atikulmunna/trainlog/internal/hub"
	"github.com/atikulmunna/trainlog/internal/model"
	"github.com/atikulmunna/trainlog/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reports over HTTP and rebuild them on change",
	Long: `Write a report, then keep rebuilding it as the log folder changes while
serving the reports and run statistics over HTTP. With --combine-day each
re-run replaces this command's earlier output in the day's report.

Endpoints:
  GET /healthz              liveness and run count
  GET /api/stats            cumulative run statistics
  GET /api/reports          reports in the output folder
  GET /api/reports/:name    report text
  GET /ws                   run summaries pushed as they complete`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", config.Default().Serve.Port, "HTTP port")
	cobra.CheckErr(viper.BindPFlag(config.KeyServePort, serveCmd.Flags().Lookup("port")))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results := make(chan model.RunSummary, 1)
	h := hub.New(results)
	agg := aggregator.New(h.Subscribe())
	go h.Start(ctx)
	go agg.Start(ctx)

	srv := server.New(h, agg, cfg.OutputFolder, cfg.Serve.Port)
	errCh := make(chan error, 1)
	go func() {
		err := srv.Start(ctx)
		if err != nil {
			cancel()
		}
		errCh <- err
	}()
	slog.Info("serving reports", "port", cfg.Serve.Port, "reports", cfg.OutputFolder)

	werr := watchAndRun(ctx, cfg, results)
	cancel()
	if err := <-errCh; err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return werr
}
