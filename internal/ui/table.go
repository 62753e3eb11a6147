package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"yamlassist/internal/assist"
)

// TableOptions controls proposal table rendering.
type TableOptions struct {
	Color bool
	// Width bounds each line; 0 means 100 columns.
	Width int
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	labelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	deprecatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	scoreStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// RenderProposals lays proposals out as an aligned table in the given order.
func RenderProposals(ps []assist.Proposal, opts TableOptions) string {
	if len(ps) == 0 {
		return "no proposals\n"
	}
	width := opts.Width
	if width <= 0 {
		width = 100
	}
	labelWidth := len("label")
	for _, p := range ps {
		labelWidth = max(labelWidth, runewidth.StringWidth(p.Label))
	}
	labelWidth = min(labelWidth, width/2)
	rankWidth := len(fmt.Sprint(len(ps)))
	fixed := rankWidth + labelWidth + 8 + 10 + 8
	detailWidth := max(width-fixed, 10)

	style := func(s lipgloss.Style, text string) string {
		if !opts.Color {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	header := fmt.Sprintf("%*s  %s  %-8s  %8s  %s", rankWidth, "#", runewidth.FillRight("label", labelWidth), "kind", "score", "detail")
	b.WriteString(style(headerStyle, strings.TrimRight(header, " ")))
	b.WriteString("\n")
	for i, p := range ps {
		label := runewidth.FillRight(truncate(p.Label, labelWidth), labelWidth)
		switch {
		case p.Kind == assist.KindError:
			label = style(errorStyle, label)
		case p.Deprecated:
			label = style(deprecatedStyle, label)
		default:
			label = style(labelStyle, label)
		}
		detail := p.Detail
		if detail == "" && p.Kind == assist.KindError {
			detail = p.Documentation
		}
		detail = truncate(firstLine(detail), detailWidth)
		score := style(scoreStyle, fmt.Sprintf("%8.3f", p.Score()))
		line := fmt.Sprintf("%*d  %s  %-8s  %s  %s", rankWidth, i+1, label, p.Kind, score, detail)
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteString("\n")
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
