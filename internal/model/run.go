package model

import "time"

// RunSummary describes one completed report run.
type RunSummary struct {
	RunID       string        `json:"run_id"`
	Report      string        `json:"report"` // output file path
	Started     time.Time     `json:"started"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	Files       int           `json:"files"`
	FailedFiles []string      `json:"failed_files,omitempty"`
	Lines       int           `json:"lines"`
	Qualifying  int           `json:"qualifying"`
	Sequences   int           `json:"sequences"` // closed sequences
	Actions     int           `json:"actions"`
	Bytes       int64         `json:"bytes"`
	OpenAtEnd   bool          `json:"open_at_end"` // a sequence was still open when input ran out
}
