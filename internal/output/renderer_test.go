package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atikulmunna/trainlog/internal/model"
)

func TestTextRendererHeader(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextRenderer(&buf)

	generated := time.Date(2021, 12, 16, 10, 15, 30, 0, time.Local)
	if err := r.Header(Header{RunID: "abc", Generated: generated}); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	want := "===================================\n" +
		"\tPARSED TRAINING LOGS\n" +
		"\t2021-12-16T10:15:30\n" +
		"\tUse with ODK trainingLogger.js\n" +
		"===================================\n"
	if buf.String() != want {
		t.Errorf("unexpected header:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestTextRendererSequence(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextRenderer(&buf)

	events := []model.Event{
		{Kind: model.SequenceStart, Action: &model.ActionEvent{Action: "CLICKED", PrimaryDetail: "Save", SubDetails: []string{"Confirm"}}},
		{Kind: model.Action, Action: &model.ActionEvent{ElapsedSeconds: 2.5, Action: "CLICKED", PrimaryDetail: "Delete"}},
		{Kind: model.SequenceEnd, DurationSeconds: 2.5},
	}

	if err := r.FileBoundary("log-1.txt"); err != nil {
		t.Fatal(err)
	}
	for _, e := range events {
		if err := r.Event(e); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	want := "\n-----------------------------------\n" +
		"Parsing New File: log-1.txt\n" +
		"\n\tLogging New Action Sequence...\n" +
		"\t-------------------------------\n" +
		"\tCLICKED\t[0 (s)]:\n" +
		"\t * Save\n" +
		"\t\t-- Confirm\n" +
		"\tCLICKED\t[2.5 (s)]:\n" +
		"\t * Delete\n" +
		"\t-------------------------------\n" +
		"\tAction sequence took 2.5 (s)\n"
	if buf.String() != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestTextRendererUnknownKind(t *testing.T) {
	r := NewTextRenderer(&bytes.Buffer{})
	if err := r.Event(model.Event{Kind: "bogus"}); err == nil {
		t.Error("expected error for unknown event kind")
	}
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONRenderer(&buf)

	_ = r.Header(Header{RunID: "run-1", Generated: time.Date(2021, 12, 16, 0, 0, 0, 0, time.UTC)})
	_ = r.FileBoundary("a.log")
	_ = r.Event(model.Event{Kind: model.SequenceEnd, DurationSeconds: 4})
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	sc := bufio.NewScanner(&buf)
	var types []string
	for sc.Scan() {
		var rec jsonRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("invalid JSON line %q: %v", sc.Text(), err)
		}
		types = append(types, rec.Type)
		if rec.Type == "sequence_end" && rec.Event.DurationSeconds != 4 {
			t.Errorf("expected duration 4, got %v", rec.Event.DurationSeconds)
		}
		if rec.Type == "header" && rec.Header.RunID != "run-1" {
			t.Errorf("expected run id run-1, got %q", rec.Header.RunID)
		}
	}
	if strings.Join(types, ",") != "header,file,sequence_end" {
		t.Errorf("unexpected record types %v", types)
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := map[float64]string{0: "0", 2.5: "2.5", 0.123: "0.123", 61: "61"}
	for in, want := range tests {
		if got := FormatSeconds(in); got != want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestReportPath(t *testing.T) {
	now := time.Date(2021, 12, 16, 10, 15, 30, 500000000, time.Local)

	day := ReportPath("out", "PARSED_", now, true)
	if day != filepath.Join("out", "PARSED_2021-12-16") {
		t.Errorf("unexpected per-day path %q", day)
	}

	run := ReportPath("out", "PARSED_", now, false)
	if run != filepath.Join("out", "PARSED_2021-12-16T10.15.30.5") {
		t.Errorf("unexpected per-run path %q", run)
	}
	if strings.Contains(filepath.Base(run), ":") {
		t.Errorf("path must not contain colons: %q", run)
	}
}

func TestCreateReportAppendsPerDay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "PARSED_2021-12-16")

	for _, s := range []string{"first\n", "second\n"} {
		f, err := CreateReport(path, true)
		if err != nil {
			t.Fatal(err)
		}
		f.WriteString(s)
		f.Close()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first\nsecond\n" {
		t.Errorf("expected appended content, got %q", data)
	}
}

func TestCreateReportTruncatesPerRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PARSED_x")
	if err := os.WriteFile(path, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := CreateReport(path, false)
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	data, _ := os.ReadFile(path)
	if len(data) != 0 {
		t.Errorf("expected truncated file, got %q", data)
	}
}

func TestEcho(t *testing.T) {
	var buf bytes.Buffer
	e := NewEcho(&buf)

	_ = e.File("a.log")
	_ = e.Event(model.Event{Kind: model.SequenceStart, Raw: "x/x/TRAINING_LOG/Time=1/CLICKED/Edit"})
	_ = e.Event(model.Event{Kind: model.SequenceEnd})

	out := buf.String()
	if !strings.Contains(out, "a.log") {
		t.Errorf("expected file name in echo, got %q", out)
	}
	if !strings.Contains(out, "x/x/TRAINING_LOG/Time=1/CLICKED/Edit") {
		t.Errorf("expected raw line in echo, got %q", out)
	}
	if !strings.Contains(out, "sequence closed after 0 (s)") {
		t.Errorf("expected close marker in echo, got %q", out)
	}
}
