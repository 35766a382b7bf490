package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/rivo/uniseg"
)

const (
	ColorCyan = lipgloss.Color("12")
	ColorRed  = lipgloss.Color("9")
	ColorGray = lipgloss.Color("8")
)

var (
	SelectedStyle = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
	MatchStyle    = lipgloss.NewStyle().Bold(true)
	DimStyle      = lipgloss.NewStyle().Foreground(ColorGray)
	ErrorStyle    = lipgloss.NewStyle().Foreground(ColorRed)
	ModeStyle     = lipgloss.NewStyle().Foreground(ColorCyan)
)

const (
	columnGap       = 2
	maxColumnWidth  = 32
	truncationTail  = "…"
	noSuggestionMsg = "No suggestions found."
)

// renderSuggestions lays the first maxShown suggestions out in columns that
// fit width. The matched prefix of each word is emphasised.
func renderSuggestions(prefix string, suggestions []string, selected int, maxShown int, width int) string {
	if prefix == "" {
		return ""
	}
	if len(suggestions) == 0 {
		return DimStyle.Render(noSuggestionMsg)
	}

	shown := suggestions
	if len(shown) > maxShown {
		shown = shown[:maxShown]
	}

	colWidth := 0
	for _, s := range shown {
		colWidth = max(colWidth, uniseg.StringWidth(s))
	}
	colWidth = min(colWidth, maxColumnWidth) + columnGap
	cols := max(1, width/colWidth)

	var sb strings.Builder
	for i, s := range shown {
		cell := truncate.StringWithTail(s, uint(colWidth-columnGap), truncationTail)
		cellWidth := uniseg.StringWidth(cell)

		if i == selected {
			cell = SelectedStyle.Render(cell)
		} else if strings.HasPrefix(cell, prefix) {
			cell = MatchStyle.Render(prefix) + cell[len(prefix):]
		}

		sb.WriteString(cell)
		if (i+1)%cols == 0 || i == len(shown)-1 {
			sb.WriteString("\n")
		} else {
			sb.WriteString(strings.Repeat(" ", colWidth-cellWidth))
		}
	}

	if hidden := len(suggestions) - len(shown); hidden > 0 {
		sb.WriteString(DimStyle.Render(fmt.Sprintf("+%d more", hidden)))
		sb.WriteString("\n")
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

// renderStatus renders the mode indicator followed by the latest message.
func renderStatus(mode string, status string, isErr bool) string {
	line := ModeStyle.Render("[" + mode + "]")
	if status == "" {
		return line
	}
	if isErr {
		return line + " " + ErrorStyle.Render(status)
	}
	return line + " " + DimStyle.Render(status)
}
