package segmenter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atikulmunna/trainlog/internal/config"
	"github.com/atikulmunna/trainlog/internal/model"
)

func raw(text string) model.RawLine {
	return model.RawLine{Text: text, Source: "log.txt"}
}

func logLine(ms int, action, details string) model.RawLine {
	return raw(fmt.Sprintf("x/x/TRAINING_LOG/Time=%d/%s/%s", ms, action, details))
}

func observe(t *testing.T, s *Segmenter, line model.RawLine) []model.Event {
	t.Helper()
	events, err := s.Observe(line)
	require.NoError(t, err)
	return events
}

func TestSingleEndKeywordLine(t *testing.T) {
	s := New(config.DefaultFormat())

	events := observe(t, s, raw("x/x/TRAINING_LOG/Time=1000/CLICKED/Edit"))
	require.Len(t, events, 2)

	assert.Equal(t, model.SequenceStart, events[0].Kind)
	assert.Equal(t, "CLICKED", events[0].Action.Action)
	assert.Equal(t, "Edit", events[0].Action.PrimaryDetail)
	assert.Zero(t, events[0].Action.ElapsedSeconds)

	assert.Equal(t, model.SequenceEnd, events[1].Kind)
	assert.Zero(t, events[1].DurationSeconds)
	assert.False(t, s.IsOpen())
}

func TestTwoLineSequence(t *testing.T) {
	s := New(config.DefaultFormat())

	first := observe(t, s, logLine(1000, "CLICKED", "Save--Confirm"))
	require.Len(t, first, 1)
	assert.Equal(t, model.SequenceStart, first[0].Kind)
	assert.Zero(t, first[0].Action.ElapsedSeconds)
	assert.Equal(t, "Save", first[0].Action.PrimaryDetail)
	assert.Equal(t, []string{"Confirm"}, first[0].Action.SubDetails)
	assert.True(t, s.IsOpen())

	second := observe(t, s, logLine(3500, "CLICKED", "Delete"))
	require.Len(t, second, 2)
	assert.Equal(t, model.Action, second[0].Kind)
	assert.Equal(t, 2.5, second[0].Action.ElapsedSeconds)
	assert.Equal(t, "Delete", second[0].Action.PrimaryDetail)
	assert.Equal(t, model.SequenceEnd, second[1].Kind)
	assert.Equal(t, 2.5, second[1].DurationSeconds)
	assert.False(t, s.IsOpen())
}

func TestElapsedIsRelativeToPreviousAction(t *testing.T) {
	s := New(config.DefaultFormat())

	observe(t, s, logLine(1000, "CLICKED", "Add Refrigerator Form"))
	mid := observe(t, s, logLine(1250, "CHANGED", "Model"))
	last := observe(t, s, logLine(4250, "CLICKED", "Add Refrigerator"))

	assert.Equal(t, 0.25, mid[0].Action.ElapsedSeconds)
	assert.Equal(t, 3.0, last[0].Action.ElapsedSeconds)
	require.Len(t, last, 2)
	assert.Equal(t, 3.25, last[1].DurationSeconds)
}

func TestNewSequenceAfterClose(t *testing.T) {
	s := New(config.DefaultFormat())

	observe(t, s, logLine(1000, "CLICKED", "Edit"))
	events := observe(t, s, logLine(9000, "CLICKED", "Facility"))

	require.Len(t, events, 1)
	assert.Equal(t, model.SequenceStart, events[0].Kind)
	assert.Zero(t, events[0].Action.ElapsedSeconds)
	assert.Equal(t, 9000.0, s.State().Open.StartTimestampMillis)
}

func TestNonQualifyingLinesLeaveStateAlone(t *testing.T) {
	s := New(config.DefaultFormat())
	observe(t, s, logLine(1000, "CLICKED", "Save"))
	before := s.State()

	for _, text := range []string{"", "noise", "a/b", "a/b/OTHER/Time=5/CLICKED/Edit"} {
		events := observe(t, s, raw(text))
		assert.Empty(t, events, text)
	}
	assert.Equal(t, before, s.State())
}

func TestMalformedLineLeavesStateAlone(t *testing.T) {
	s := New(config.DefaultFormat())
	observe(t, s, logLine(1000, "CLICKED", "Save"))
	before := s.State()

	events, err := s.Observe(raw("x/x/TRAINING_LOG/Time=abc/CLICKED/Edit"))
	assert.ErrorIs(t, err, ErrMalformedLine)
	assert.Empty(t, events)
	assert.Equal(t, before, s.State())
}

func TestEndMatchesRawDetailsOnly(t *testing.T) {
	s := New(config.DefaultFormat())

	// Primary detail is "Edit" but the raw details are not a keyword.
	events := observe(t, s, logLine(1000, "CLICKED", "Edit--Fridge 3"))
	require.Len(t, events, 1)
	assert.Equal(t, "Edit", events[0].Action.PrimaryDetail)
	assert.True(t, s.IsOpen())
}

func TestCustomKeywords(t *testing.T) {
	s := New(config.Format{Marker: "AUDIT", Separator: "|", TimePrefix: "t=", EndKeywords: []string{"Submit"}})

	observe(t, s, raw("h/a/AUDIT/t=0/TYPED/Name|Alice"))
	events := observe(t, s, raw("h/a/AUDIT/t=500/CLICKED/Submit"))

	require.Len(t, events, 2)
	assert.Equal(t, 0.5, events[1].DurationSeconds)
}

func TestResetDropsOpenSequence(t *testing.T) {
	s := New(config.DefaultFormat())
	observe(t, s, logLine(1000, "CLICKED", "Save"))
	require.True(t, s.IsOpen())

	s.Reset()
	assert.False(t, s.IsOpen())

	events := observe(t, s, logLine(5000, "CLICKED", "Delete"))
	require.Len(t, events, 2)
	assert.Equal(t, model.SequenceStart, events[0].Kind)
	assert.Zero(t, events[1].DurationSeconds)
}

func TestStateCarriesAcrossRestore(t *testing.T) {
	a := New(config.DefaultFormat())
	observe(t, a, logLine(1000, "CLICKED", "Save"))

	b := New(config.DefaultFormat())
	b.Restore(a.State())
	events := observe(t, b, logLine(2000, "CLICKED", "Delete"))

	require.Len(t, events, 2)
	assert.Equal(t, model.Action, events[0].Kind)
	assert.Equal(t, 1.0, events[1].DurationSeconds)
}

func TestEveryQualifyingLineYieldsExactlyOneActionEvent(t *testing.T) {
	s := New(config.DefaultFormat())
	details := []string{"Save", "Edit", "Edit", "Model", "Serial", "Delete Facility", "Open"}

	for i, d := range details {
		events := observe(t, s, logLine(1000*(i+1), "CLICKED", d))
		var actions int
		for _, e := range events {
			if e.Kind == model.SequenceStart || e.Kind == model.Action {
				actions++
			}
		}
		assert.Equal(t, 1, actions, d)
	}
}

func TestLongOpenSequenceKeepsFixedState(t *testing.T) {
	s := New(config.DefaultFormat())

	const n = 100000
	for i := 0; i < n; i++ {
		observe(t, s, logLine(1000+i, "CHANGED", "Temperature"))
	}

	st := s.State()
	require.NotNil(t, st.Open)
	assert.Equal(t, model.ActionSequence{StartTimestampMillis: 1000, Actions: n}, *st.Open)
	assert.Equal(t, float64(1000+n-1), st.PreviousMillis)

	// Snapshots are independent values.
	st.Open.Actions = 0
	assert.Equal(t, n, s.State().Open.Actions)
}

func TestCarriedSequenceMeasuresFromPreviousAction(t *testing.T) {
	a := New(config.DefaultFormat())
	observe(t, a, logLine(1000, "CLICKED", "Save"))
	observe(t, a, logLine(2000, "CHANGED", "Model"))

	b := New(config.DefaultFormat())
	b.Restore(a.State())
	events := observe(t, b, logLine(5000, "CLICKED", "Delete"))

	require.Len(t, events, 2)
	assert.Equal(t, 3.0, events[0].Action.ElapsedSeconds)
	assert.Equal(t, 4.0, events[1].DurationSeconds)
}
