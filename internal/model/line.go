package model

// RawLine is one physical line read from an input file.
type RawLine struct {
	Text   string `json:"text"`
	Source string `json:"source"` // originating file path
	Number int    `json:"number"` // 1-based line number
}

// LogLine is a qualifying training-log line after parsing.
type LogLine struct {
	TimestampMillis float64 `json:"timestamp_ms"`
	Action          string  `json:"action"`
	Details         string  `json:"details"` // raw, unsplit details token
}
