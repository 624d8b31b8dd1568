package report

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/atikulmunna/trainlog/internal/model"
	"github.com/atikulmunna/trainlog/internal/output"
	"github.com/atikulmunna/trainlog/internal/segmenter"
)

// Processor streams files through a segmenter into a renderer.
type Processor struct {
	seg  *segmenter.Segmenter
	r    output.Renderer
	echo *output.Echo
}

// NewProcessor creates a Processor. echo may be nil.
func NewProcessor(seg *segmenter.Segmenter, r output.Renderer, echo *output.Echo) *Processor {
	return &Processor{seg: seg, r: r, echo: echo}
}

// ProcessPath writes a file boundary for path and processes its lines
// starting from state st. The returned state is the segmenter state after
// the last line read, also when an error stopped the file early.
func (p *Processor) ProcessPath(st segmenter.State, path string) (segmenter.State, FileStats, error) {
	name := filepath.Base(path)
	if err := p.r.FileBoundary(name); err != nil {
		return st, FileStats{}, fmt.Errorf("write file boundary: %w", err)
	}
	if p.echo != nil {
		_ = p.echo.File(name)
	}

	f, err := os.Open(path)
	if err != nil {
		return st, FileStats{}, err
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		slog.Debug("parsing log file", "file", name, "size", humanize.Bytes(uint64(info.Size())))
	}
	return p.Process(st, path, f)
}

// Process feeds every line of r to the segmenter and renders the events.
func (p *Processor) Process(st segmenter.State, source string, r io.Reader) (segmenter.State, FileStats, error) {
	p.seg.Restore(st)

	var stats FileStats
	cr := &countingReader{r: r}
	sc := bufio.NewScanner(cr)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for sc.Scan() {
		stats.Lines++
		line := model.RawLine{
			Text:   strings.TrimSuffix(sc.Text(), "\r"),
			Source: source,
			Number: stats.Lines,
		}

		events, err := p.seg.Observe(line)
		if err != nil {
			stats.Bytes = cr.n
			return p.seg.State(), stats, fmt.Errorf("line %d: %w", line.Number, err)
		}
		if len(events) > 0 {
			stats.Qualifying++
		}
		for _, e := range events {
			switch e.Kind {
			case model.SequenceStart, model.Action:
				stats.Actions++
			case model.SequenceEnd:
				stats.Sequences++
			}
			if err := p.r.Event(e); err != nil {
				stats.Bytes = cr.n
				return p.seg.State(), stats, fmt.Errorf("write event: %w", err)
			}
			if p.echo != nil {
				_ = p.echo.Event(e)
			}
		}
	}
	stats.Bytes = cr.n

	if err := sc.Err(); err != nil {
		return p.seg.State(), stats, fmt.Errorf("read: %w", err)
	}
	return p.seg.State(), stats, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	c.n += int64(n)
	return n, err
}
