package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jjtimmons/pudu/internal/labware"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	filledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

const cellWidth = 4

// Render draws every labware of the report as a grid, each content marked
// by its number in a legend beside the grid
func (r *Report) Render() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(r.Protocol))
	b.WriteString("\n")
	if r.Description != "" {
		b.WriteString(headerStyle.Render(r.Description))
		b.WriteString("\n")
	}

	for _, lw := range r.Labware {
		b.WriteString(renderLabware(lw))
		b.WriteString("\n")
	}

	pipettes := make([]string, 0, len(r.Tips))
	for p := range r.Tips {
		pipettes = append(pipettes, p)
	}
	sort.Strings(pipettes)
	for _, p := range pipettes {
		fmt.Fprintf(&b, "%s: %d tips\n", p, r.Tips[p])
	}
	fmt.Fprintf(&b, "%d commands\n", r.Commands)
	return b.String()
}

func renderLabware(lw Labware) string {
	g := geometry(lw.Wells)

	marks := make(map[string]int)
	var legend []string
	contents := make(map[string]string, len(lw.Wells))
	for _, w := range lw.Wells {
		contents[w.Well] = w.Content
		if _, ok := marks[w.Content]; !ok {
			marks[w.Content] = len(marks) + 1
			legend = append(legend, fmt.Sprintf("%3d %s", marks[w.Content], w.Content))
		}
	}

	cell := lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Right)
	var rows []string
	header := cell.Render("")
	for c := 0; c < g.Cols; c++ {
		header += headerStyle.Inherit(cell).Render(strconv.Itoa(c + 1))
	}
	rows = append(rows, header)
	for r := 0; r < g.Rows; r++ {
		line := headerStyle.Inherit(cell).Render(string(rune('A' + r)))
		for _, well := range g.Row(r) {
			content, ok := contents[well]
			if !ok {
				line += emptyStyle.Inherit(cell).Render(".")
				continue
			}
			line += filledStyle.Inherit(cell).Render(strconv.Itoa(marks[content]))
		}
		rows = append(rows, line)
	}

	grid := lipgloss.JoinVertical(lipgloss.Left, rows...)
	body := lipgloss.JoinHorizontal(lipgloss.Top, grid, "  ", strings.Join(legend, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(lw.ID), boxStyle.Render(body))
}

// geometry is the smallest known labware that holds every well
func geometry(wells []Well) labware.Geometry {
	for _, w := range wells {
		if _, err := labware.Block24.Index(w.Well); err != nil {
			return labware.Plate96
		}
	}
	return labware.Block24
}
