package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/trainlog/internal/config"
	"github.com/atikulmunna/trainlog/internal/model"
	"github.com/atikulmunna/trainlog/internal/output"
	"github.com/atikulmunna/trainlog/internal/report"
	"github.com/atikulmunna/trainlog/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the report whenever the log folder changes",
	Long: `Write a report, then watch the log folder and write a fresh report each
time files are added or changed. Every run starts from a clean state.

With --combine-day each re-run replaces the output this command wrote
earlier to the day's report; content from other invocations is kept.

Examples:
  trainlog watch
  trainlog watch --logs ./logFolder --debounce 2s`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", config.Default().Watch.Debounce, "quiet period before a change triggers a run")
	cobra.CheckErr(viper.BindPFlag(config.KeyWatchDebounce, watchCmd.Flags().Lookup("debounce")))
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	return watchAndRun(ctx, cfg, nil)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\ntrainlog shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// watchAndRun runs a report now and after every change to the log folder
// until ctx is cancelled. Completed runs are sent to results if non-nil.
func watchAndRun(ctx context.Context, cfg config.Config, results chan<- model.RunSummary) error {
	w, err := watcher.New(cfg.LogFolder, cfg.Watch.Debounce)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.LogFolder, err)
	}
	go w.Start(ctx)

	slog.Info("watching log folder", "folder", cfg.LogFolder, "dirs", len(w.Dirs()))

	rw := newDayRewinder()
	runOnce := func() {
		now := time.Now()
		opts := reportOptions()
		opts.Now = func() time.Time { return now }
		if cfg.CombineDay {
			path := output.ReportPath(cfg.OutputFolder, cfg.OutputPrefix, now, true)
			if err := rw.rewind(path); err != nil {
				slog.Error("cannot rewind day report", "report", path, "err", err)
				return
			}
		}

		summary, err := report.Run(cfg, opts)
		if err != nil {
			slog.Error("error parsing log files", "err", err)
			return
		}
		if !quiet {
			printSummary(os.Stderr, summary)
		}
		if results != nil {
			select {
			case results <- summary:
			case <-ctx.Done():
			}
		}
	}

	runOnce()
	for range w.Changes() {
		runOnce()
	}
	return nil
}

// dayRewinder remembers the size each day report had before this process
// first wrote to it, so later runs replace only their own earlier output.
type dayRewinder struct {
	base map[string]int64
}

func newDayRewinder() *dayRewinder {
	return &dayRewinder{base: make(map[string]int64)}
}

// rewind truncates path back to its remembered size, or records the current
// size the first time path is seen.
func (r *dayRewinder) rewind(path string) error {
	if size, seen := r.base[path]; seen {
		err := os.Truncate(path, size)
		if errors.Is(err, fs.ErrNotExist) {
			r.base[path] = 0
			return nil
		}
		return err
	}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		r.base[path] = 0
	case err != nil:
		return err
	default:
		r.base[path] = info.Size()
	}
	return nil
}
