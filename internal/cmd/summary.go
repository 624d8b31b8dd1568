package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/atikulmunna/trainlog/internal/model"
)

var (
	styleLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleValue = lipgloss.NewStyle().Bold(true)
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

// printSummary writes a short human summary of a run.
func printSummary(w io.Writer, s model.RunSummary) {
	row := func(label string, value any) {
		fmt.Fprintf(w, "   %s %s\n", styleLabel.Render(fmt.Sprintf("%-10s", label)), styleValue.Render(fmt.Sprint(value)))
	}

	fmt.Fprintln(w)
	row("report", s.Report)
	row("files", s.Files)
	row("sequences", s.Sequences)
	row("actions", s.Actions)
	row("read", humanize.Bytes(uint64(s.Bytes)))
	for _, f := range s.FailedFiles {
		fmt.Fprintln(w, styleWarn.Render("   ! failed: "+f))
	}
	if s.OpenAtEnd {
		fmt.Fprintln(w, styleWarn.Render("   ! last action sequence never finished and has no footer"))
	}
}
