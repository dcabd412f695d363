package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles are the text styles of the report.
type Styles struct {
	Header lipgloss.Style
	OK     lipgloss.Style
	Fail   lipgloss.Style
	Error  lipgloss.Style
	Dim    lipgloss.Style
	Bold   lipgloss.Style
}

// NewStyles builds styles rendering to w. With color off every style renders
// plain text.
func NewStyles(w io.Writer, color bool) Styles {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return Styles{
		Header: r.NewStyle().Foreground(lipgloss.Color("6")).Faint(true),
		OK:     r.NewStyle().Foreground(lipgloss.Color("2")),
		Fail:   r.NewStyle().Foreground(lipgloss.Color("1")),
		Error:  r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		Dim:    r.NewStyle().Foreground(lipgloss.Color("8")),
		Bold:   r.NewStyle().Bold(true),
	}
}

// StatusIcon returns the icon for a rule status label.
func (s Styles) StatusIcon(status string) string {
	switch status {
	case "ok":
		return s.OK.Render("✓")
	case "fail":
		return s.Fail.Render("✗")
	default:
		return s.Error.Render("⊘")
	}
}
