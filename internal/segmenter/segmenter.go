// Package segmenter groups qualifying training-log lines into action
// sequences.
//
// A sequence opens on the first qualifying line seen while idle and closes
// on a line whose raw details exactly match an end-of-flow keyword. State
// is held in an explicit State value so the caller decides whether an
// unfinished sequence carries over into the next file (the default) or is
// dropped. A sequence still open when input runs out never gets a footer.
package segmenter

import (
	"github.com/atikulmunna/trainlog/internal/config"
	"github.com/atikulmunna/trainlog/internal/model"
	"github.com/atikulmunna/trainlog/internal/parser"
)

// ErrMalformedLine is returned by Observe for lines that carry the marker
// but cannot be decoded.
var ErrMalformedLine = parser.ErrMalformedLine

// State is the segmenter's mutable state between lines.
type State struct {
	Open           *model.ActionSequence // nil while idle
	PreviousMillis float64
}

// Segmenter turns raw lines into sequence events.
type Segmenter struct {
	parser    parser.Parser
	separator string
	ends      map[string]struct{}
	state     State
}

// New creates a Segmenter for the given line format.
func New(f config.Format) *Segmenter {
	return NewWithParser(f, parser.NewTrainingParser(f))
}

// NewWithParser creates a Segmenter that decodes lines with p.
func NewWithParser(f config.Format, p parser.Parser) *Segmenter {
	ends := make(map[string]struct{}, len(f.EndKeywords))
	for _, k := range f.EndKeywords {
		ends[k] = struct{}{}
	}
	return &Segmenter{
		parser:    p,
		separator: f.Separator,
		ends:      ends,
	}
}

// Observe feeds one line to the segmenter.
//
// Non-qualifying lines return no events and leave state untouched. A
// qualifying line returns a SequenceStart (if idle) or an Action, followed by
// a SequenceEnd when its details close the flow. Malformed qualifying lines
// return an error wrapping ErrMalformedLine and do not change state.
func (s *Segmenter) Observe(line model.RawLine) ([]model.Event, error) {
	ll, ok, err := s.parser.Parse(line.Text)
	if !ok || err != nil {
		return nil, err
	}

	primary, subs := parser.SplitDetails(ll.Details, s.separator)
	action := model.ActionEvent{
		Action:        ll.Action,
		PrimaryDetail: primary,
		SubDetails:    subs,
	}

	kind := model.Action
	if s.state.Open == nil {
		kind = model.SequenceStart
		s.state.Open = &model.ActionSequence{StartTimestampMillis: ll.TimestampMillis}
	} else {
		action.ElapsedSeconds = (ll.TimestampMillis - s.state.PreviousMillis) / 1000
	}
	s.state.PreviousMillis = ll.TimestampMillis
	s.state.Open.Actions++

	events := []model.Event{{
		Kind:   kind,
		Source: line.Source,
		Raw:    line.Text,
		Action: &action,
	}}

	if _, end := s.ends[ll.Details]; end {
		seq := s.state.Open
		seq.TotalSeconds = (ll.TimestampMillis - seq.StartTimestampMillis) / 1000
		s.state.Open = nil
		events = append(events, model.Event{
			Kind:            model.SequenceEnd,
			Source:          line.Source,
			DurationSeconds: seq.TotalSeconds,
		})
	}

	return events, nil
}

// Reset drops any open sequence without emitting a footer.
func (s *Segmenter) Reset() {
	s.state = State{}
}

// IsOpen reports whether a sequence is currently open.
func (s *Segmenter) IsOpen() bool {
	return s.state.Open != nil
}

// State returns a snapshot of the current state. The open sequence holds no
// per-action data, so the snapshot has a fixed size however long it runs.
func (s *Segmenter) State() State {
	st := s.state
	if st.Open != nil {
		seq := *st.Open
		st.Open = &seq
	}
	return st
}

// Restore replaces the current state, e.g. with one saved by State.
func (s *Segmenter) Restore(st State) {
	s.state = st
}
