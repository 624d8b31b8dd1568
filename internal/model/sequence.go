package model

// ActionEvent is one step inside an action sequence.
type ActionEvent struct {
	ElapsedSeconds float64  `json:"elapsed_s"` // 0 for the first action of a sequence
	Action         string   `json:"action"`
	PrimaryDetail  string   `json:"primary"`
	SubDetails     []string `json:"sub_details,omitempty"`
}

// ActionSequence is a run of actions closed by an end-of-flow keyword.
// Actions are rendered as they arrive, so only a count is kept.
// TotalSeconds is only meaningful once the sequence has closed.
type ActionSequence struct {
	StartTimestampMillis float64 `json:"start_ms"`
	Actions              int     `json:"actions"`
	TotalSeconds         float64 `json:"total_s"`
}

// EventKind identifies what a segmenter Event represents.
type EventKind string

const (
	SequenceStart EventKind = "sequence_start"
	Action        EventKind = "action"
	SequenceEnd   EventKind = "sequence_end"
)

// Event is emitted by the segmenter for every qualifying line, plus one
// extra SequenceEnd when a line closes the open sequence.
type Event struct {
	Kind            EventKind    `json:"kind"`
	Source          string       `json:"source,omitempty"`
	Raw             string       `json:"raw,omitempty"`
	Action          *ActionEvent `json:"action,omitempty"`
	DurationSeconds float64      `json:"duration_s"` // SequenceEnd only
}
