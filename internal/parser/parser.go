package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atikulmunna/trainlog/internal/config"
	"github.com/atikulmunna/trainlog/internal/model"
)

// TokenSeparator splits a raw line into tokens.
const TokenSeparator = "/"

// Token positions within a qualifying line.
const (
	markerToken  = 2
	timeToken    = 3
	actionToken  = 4
	detailsToken = 5
)

// ErrMalformedLine is returned for lines that carry the marker but cannot
// be decoded.
var ErrMalformedLine = errors.New("malformed training log line")

// Parser recognises qualifying lines and decodes them into LogLine values.
// The bool result is false for lines that do not qualify; those are not errors.
type Parser interface {
	Parse(raw string) (model.LogLine, bool, error)
}

// TrainingParser handles lines written by trainingLogger.js:
//
//	<anything>/<anything>/TRAINING_LOG/Time=<ms>/<action>/<details>
type TrainingParser struct {
	marker     string
	timePrefix string
}

func NewTrainingParser(f config.Format) *TrainingParser {
	return &TrainingParser{marker: f.Marker, timePrefix: f.TimePrefix}
}

func (p *TrainingParser) Parse(raw string) (model.LogLine, bool, error) {
	tokens := strings.Split(raw, TokenSeparator)
	if len(tokens) <= markerToken || tokens[markerToken] != p.marker {
		return model.LogLine{}, false, nil
	}
	if len(tokens) <= detailsToken {
		return model.LogLine{}, true, fmt.Errorf("%w: expected %d tokens, got %d", ErrMalformedLine, detailsToken+1, len(tokens))
	}

	ts, err := p.parseTime(tokens[timeToken])
	if err != nil {
		return model.LogLine{}, true, err
	}

	return model.LogLine{
		TimestampMillis: ts,
		Action:          tokens[actionToken],
		Details:         tokens[detailsToken],
	}, true, nil
}

// parseTime strips the time prefix and parses epoch milliseconds.
func (p *TrainingParser) parseTime(token string) (float64, error) {
	s := strings.TrimSpace(strings.ReplaceAll(token, p.timePrefix, ""))
	ts, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad timestamp %q", ErrMalformedLine, token)
	}
	return ts, nil
}

// SplitDetails breaks a details string into its primary detail and any
// sub-details. Trailing empty segments are dropped.
func SplitDetails(details, sep string) (string, []string) {
	parts := strings.Split(details, sep)
	for len(parts) > 1 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return parts[0], parts[1:]
}
