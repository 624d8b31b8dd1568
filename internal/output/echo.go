package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/atikulmunna/trainlog/internal/model"
)

var (
	styleStart  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true) // cyan bold
	styleAction = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))           // gray
	styleEnd    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))            // green
	styleSource = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Faint(true)
)

// Echo mirrors qualifying raw lines to the console as they are segmented.
type Echo struct {
	w io.Writer
}

// NewEcho returns an Echo writing to w.
func NewEcho(w io.Writer) *Echo {
	return &Echo{w: w}
}

// Event prints the raw line behind e. SequenceEnd events print a short
// marker since they have no line of their own.
func (e *Echo) Event(ev model.Event) error {
	var line string
	switch ev.Kind {
	case model.SequenceStart:
		line = styleStart.Render(ev.Raw)
	case model.Action:
		line = styleAction.Render(ev.Raw)
	case model.SequenceEnd:
		line = styleEnd.Render(fmt.Sprintf("  └ sequence closed after %s (s)", FormatSeconds(ev.DurationSeconds)))
	default:
		return nil
	}
	_, err := fmt.Fprintln(e.w, line)
	return err
}

// File prints the name of the file about to be read.
func (e *Echo) File(name string) error {
	_, err := fmt.Fprintln(e.w, styleSource.Render("▸ "+name))
	return err
}
