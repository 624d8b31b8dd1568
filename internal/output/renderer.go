package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/atikulmunna/trainlog/internal/model"
)

// ToolLine identifies the logger the report format pairs with.
const ToolLine = "Use with ODK trainingLogger.js"

// Header describes a report run.
type Header struct {
	RunID     string    `json:"run_id"`
	Generated time.Time `json:"generated"`
}

// Renderer writes a report to an output stream. A Renderer owns its stream
// and releases it on Close.
type Renderer interface {
	Header(h Header) error
	FileBoundary(name string) error
	Event(e model.Event) error
	Close() error
}

// ---------------------------------------------------------------------------
// Text Renderer (the human-readable report)
// ---------------------------------------------------------------------------

const (
	reportBanner   = "==================================="
	fileBanner     = "-----------------------------------"
	sequenceBanner = "\t-------------------------------"
)

// TextRenderer writes the tab-indented plain text report.
type TextRenderer struct {
	w     *bufio.Writer
	close func() error
}

// NewTextRenderer returns a Renderer writing text to w. If w is an
// io.Closer it is closed by Close.
func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: bufio.NewWriter(w), close: closerFor(w)}
}

func (r *TextRenderer) Header(h Header) error {
	_, err := fmt.Fprintf(r.w, "%s\n\tPARSED TRAINING LOGS\n\t%s\n\t%s\n%s\n",
		reportBanner, FormatTimestamp(h.Generated), ToolLine, reportBanner)
	return err
}

func (r *TextRenderer) FileBoundary(name string) error {
	_, err := fmt.Fprintf(r.w, "\n%s\nParsing New File: %s\n", fileBanner, name)
	return err
}

func (r *TextRenderer) Event(e model.Event) error {
	var b strings.Builder
	switch e.Kind {
	case model.SequenceStart:
		fmt.Fprintf(&b, "\n\tLogging New Action Sequence...\n%s\n", sequenceBanner)
		writeAction(&b, e.Action)
	case model.Action:
		writeAction(&b, e.Action)
	case model.SequenceEnd:
		fmt.Fprintf(&b, "%s\n\tAction sequence took %s (s)\n", sequenceBanner, FormatSeconds(e.DurationSeconds))
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	_, err := r.w.WriteString(b.String())
	return err
}

func writeAction(b *strings.Builder, a *model.ActionEvent) {
	if a == nil {
		return
	}
	fmt.Fprintf(b, "\t%s\t[%s (s)]:\n", a.Action, FormatSeconds(a.ElapsedSeconds))
	fmt.Fprintf(b, "\t * %s\n", a.PrimaryDetail)
	for _, sub := range a.SubDetails {
		fmt.Fprintf(b, "\t\t-- %s\n", sub)
	}
}

// Close flushes buffered output and releases the stream.
func (r *TextRenderer) Close() error {
	ferr := r.w.Flush()
	cerr := r.close()
	if ferr != nil {
		return ferr
	}
	return cerr
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

type jsonRecord struct {
	Type   string       `json:"type"`
	Header *Header      `json:"header,omitempty"`
	File   string       `json:"file,omitempty"`
	Event  *model.Event `json:"event,omitempty"`
}

// JSONRenderer writes one JSON object per header, file boundary and event.
type JSONRenderer struct {
	w     *bufio.Writer
	enc   *json.Encoder
	close func() error
}

// NewJSONRenderer returns a Renderer writing JSON lines to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	bw := bufio.NewWriter(w)
	return &JSONRenderer{w: bw, enc: json.NewEncoder(bw), close: closerFor(w)}
}

func (r *JSONRenderer) Header(h Header) error {
	return r.enc.Encode(jsonRecord{Type: "header", Header: &h})
}

func (r *JSONRenderer) FileBoundary(name string) error {
	return r.enc.Encode(jsonRecord{Type: "file", File: name})
}

func (r *JSONRenderer) Event(e model.Event) error {
	return r.enc.Encode(jsonRecord{Type: string(e.Kind), Event: &e})
}

func (r *JSONRenderer) Close() error {
	ferr := r.w.Flush()
	cerr := r.close()
	if ferr != nil {
		return ferr
	}
	return cerr
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// FormatSeconds renders a duration with the shortest exact decimal form:
// 0 -> "0", 2.5 -> "2.5".
func FormatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

// FormatTimestamp renders a local date-time with trailing zero fractions trimmed.
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.999999999")
}

func closerFor(w io.Writer) func() error {
	if c, ok := w.(io.Closer); ok {
		return c.Close
	}
	return func() error { return nil }
}
