// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Summary prints a short human-readable parse summary. Colors are used only
// when colorize is set.
type Summary struct {
	green  *color.Color
	yellow *color.Color
	red    *color.Color
	bold   *color.Color
}

// NewSummary creates a summary printer.
func NewSummary(colorize bool) *Summary {
	s := &Summary{
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
		bold:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{s.green, s.yellow, s.red, s.bold} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// Parse prints the outcome of one parse.
func (s *Summary) Parse(w io.Writer, r ParseResponse) {
	name := r.SeriesName
	if name == "" {
		name = "(no series name)"
	}
	fmt.Fprintf(w, "%s\n", s.bold.Sprint(name))
	fmt.Fprintf(w, "  questions: %s\n", s.green.Sprint(r.TotalQuestions))
	if r.DroppedBlocks > 0 {
		fmt.Fprintf(w, "  dropped:   %s\n", s.yellow.Sprint(r.DroppedBlocks))
	} else {
		fmt.Fprintf(w, "  dropped:   0\n")
	}
	unanswered := 0
	for _, q := range r.Questions {
		if q.CorrectAnswer == "" {
			unanswered++
		}
	}
	if unanswered > 0 {
		fmt.Fprintf(w, "  no answer: %s\n", s.yellow.Sprint(unanswered))
	}
	if r.OutputFile != "" {
		fmt.Fprintf(w, "  written:   %s\n", r.OutputFile)
	}
}

// Batch prints the totals of a batch run.
func (s *Summary) Batch(w io.Writer, r BatchResponse) {
	failed := fmt.Sprint(r.Failed)
	if r.Failed > 0 {
		failed = s.red.Sprint(r.Failed)
	}
	fmt.Fprintf(w, "%s %s parsed, %s skipped, %s failed (total: %d)\n",
		s.bold.Sprint("Batch summary:"),
		s.green.Sprint(r.Parsed), s.yellow.Sprint(r.Skipped), failed,
		r.Parsed+r.Skipped+r.Failed)
}
