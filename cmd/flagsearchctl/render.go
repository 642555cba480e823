package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	flagsearch "github.com/kailas-cloud/flagsearch/pkg/sdk"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	onStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("32"))
	offStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))

	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func renderTable(page *flagsearch.Page) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-32s %-12s %-12s %s", "NAME", "TYPE", "PROJECT", "ENVIRONMENTS")))
	b.WriteString("\n")
	for i := range page.Features {
		f := &page.Features[i]
		fmt.Fprintf(&b, "%s %-12s %-12s %s\n",
			nameStyle.Render(fmt.Sprintf("%-32s", f.Name)), f.Type, f.Project, renderEnvironments(f.Environments))
		if len(f.Tags) > 0 || f.Archived() {
			b.WriteString(metaStyle.Render("  " + renderMeta(f)))
			b.WriteString("\n")
		}
	}

	summary := fmt.Sprintf("%d of %d features", len(page.Features), page.Total)
	if page.NextCursor != "" {
		summary += "\nnext: " + page.NextCursor
	}
	b.WriteString(summaryStyle.Render(summary))
	return b.String()
}

func renderEnvironments(envs []flagsearch.Environment) string {
	parts := make([]string, len(envs))
	for i, e := range envs {
		if e.Enabled {
			parts[i] = onStyle.Render(e.Name + ":on")
		} else {
			parts[i] = offStyle.Render(e.Name + ":off")
		}
	}
	return strings.Join(parts, " ")
}

func renderMeta(f *flagsearch.Feature) string {
	parts := make([]string, 0, len(f.Tags)+1)
	for _, t := range f.Tags {
		parts = append(parts, t.Type+":"+t.Value)
	}
	if f.Archived() {
		parts = append(parts, "archived "+f.ArchivedAt.Format("2006-01-02"))
	}
	return strings.Join(parts, "  ")
}
