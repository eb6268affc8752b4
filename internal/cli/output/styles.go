package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used for text output.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
	StatusRunning lipgloss.Style
}

// newStyles builds styles bound to w's color profile, so writers that are
// not terminals get plain text.
func newStyles(w io.Writer) *Styles {
	lr := lipgloss.NewRenderer(w)
	return &Styles{
		Header1: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginBottom(1),
		Header2: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Bold:    lr.NewStyle().Bold(true),
		Muted:   lr.NewStyle().Foreground(lipgloss.Color("8")),
		Success: lr.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lr.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lr.NewStyle().Foreground(lipgloss.Color("9")),
		Info:    lr.NewStyle().Foreground(lipgloss.Color("12")),

		StatusSuccess: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		StatusFailed:  lr.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		StatusRunning: lr.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// StatusStyle returns the style for a run or case status.
func (s *Styles) StatusStyle(status string) lipgloss.Style {
	switch status {
	case "passed":
		return s.StatusSuccess
	case "failed", "cancelled":
		return s.StatusFailed
	default:
		return s.StatusRunning
	}
}
