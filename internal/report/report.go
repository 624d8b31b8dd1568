// Package report drives a single batch run: enumerate log files, stream
// each one through the segmenter and write the rendered report.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/atikulmunna/trainlog/internal/config"
	"github.com/atikulmunna/trainlog/internal/model"
	"github.com/atikulmunna/trainlog/internal/output"
	"github.com/atikulmunna/trainlog/internal/segmenter"
	"github.com/atikulmunna/trainlog/internal/walker"
)

// maxLineSize bounds a single log line; longer lines fail the file.
const maxLineSize = 1024 * 1024

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options controls a run beyond the file configuration.
type Options struct {
	Format string           // FormatText (default) or FormatJSON
	Echo   *output.Echo     // mirrors qualifying lines to the console when set
	Now    func() time.Time // defaults to time.Now
}

// Run executes one batch run. The returned error is fatal for the run:
// the report could not be created or the log folder could not be listed.
// Per-file failures are logged and listed in the summary instead.
func Run(cfg config.Config, opts Options) (summary model.RunSummary, err error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	started := now()

	summary = model.RunSummary{
		RunID:   uuid.NewString(),
		Report:  output.ReportPath(cfg.OutputFolder, cfg.OutputPrefix, started, cfg.CombineDay),
		Started: started,
	}

	f, err := output.CreateReport(summary.Report, cfg.CombineDay)
	if err != nil {
		return summary, err
	}
	r := newRenderer(opts.Format, f)
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report: %w", cerr)
		}
		summary.Elapsed = time.Since(started)
	}()

	if err := r.Header(output.Header{RunID: summary.RunID, Generated: started}); err != nil {
		return summary, fmt.Errorf("write report header: %w", err)
	}

	files, err := walker.Walk(cfg.LogFolder, cfg.Include)
	if err != nil {
		return summary, fmt.Errorf("list log folder: %w", err)
	}

	p := NewProcessor(segmenter.New(cfg.Format), r, opts.Echo)
	var state segmenter.State
	for _, path := range files {
		if cfg.ResetBetweenFiles {
			state = segmenter.State{}
		}
		var stats FileStats
		var ferr error
		state, stats, ferr = p.ProcessPath(state, path)
		summary.Files++
		addFileStats(&summary, stats)
		if ferr != nil {
			// State is kept: a sequence open before the failure carries on.
			slog.Error("error parsing log file", "file", filepath.Base(path), "path", path, "err", ferr)
			summary.FailedFiles = append(summary.FailedFiles, path)
		}
	}
	summary.OpenAtEnd = state.Open != nil

	slog.Info("report written",
		"report", summary.Report,
		"files", summary.Files,
		"failed", len(summary.FailedFiles),
		"sequences", summary.Sequences,
		"read", humanize.Bytes(uint64(summary.Bytes)))
	return summary, nil
}

func newRenderer(format string, w io.Writer) output.Renderer {
	if strings.EqualFold(format, FormatJSON) {
		return output.NewJSONRenderer(w)
	}
	return output.NewTextRenderer(w)
}

// FileStats counts what one file contributed to a run.
type FileStats struct {
	Lines      int
	Qualifying int
	Sequences  int
	Actions    int
	Bytes      int64
}

func addFileStats(s *model.RunSummary, fs FileStats) {
	s.Lines += fs.Lines
	s.Qualifying += fs.Qualifying
	s.Sequences += fs.Sequences
	s.Actions += fs.Actions
	s.Bytes += fs.Bytes
}
