package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ReportPath returns the report file for a run started at now. With
// combineDay every run of the same day shares one file; otherwise the name
// carries the full timestamp with colons replaced.
func ReportPath(dir, prefix string, now time.Time, combineDay bool) string {
	var stamp string
	if combineDay {
		stamp = now.Format(time.DateOnly)
	} else {
		stamp = strings.ReplaceAll(FormatTimestamp(now), ":", ".")
	}
	return filepath.Join(dir, prefix+stamp)
}

// CreateReport opens the report file at path, creating its directory. A
// per-day report is appended to; a per-run report is truncated.
func CreateReport(path string, combineDay bool) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create output folder: %w", err)
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if combineDay {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return f, nil
}
