// Package report renders batch summaries and outlines for terminals.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))

	// dimStyle for muted labels
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	pageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	// boxStyle for the summary box with rounded border
	boxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("33")).Padding(0, 1)
)

// FormatSummary renders a batch summary box.
func FormatSummary(w io.Writer, sum pipeline.Summary) {
	status := successStyle.Render("OK")
	if sum.Failed > 0 {
		status = errorStyle.Render(fmt.Sprintf("%d FAILED", sum.Failed))
	}

	lines := []string{
		titleStyle.Render("Batch Complete"),
		fmt.Sprintf("%s %s", dimStyle.Render("Input:"), sum.InputDir),
		fmt.Sprintf("%s %s", dimStyle.Render("Output:"), sum.OutputDir),
		fmt.Sprintf("%s %d  %s %d  %s %s  %s",
			dimStyle.Render("Files:"), sum.Files,
			dimStyle.Render("Processed:"), sum.Processed,
			dimStyle.Render("Duration:"), formatDuration(sum.Duration),
			status,
		),
	}
	if sum.Warnings > 0 {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("%d written with schema warnings", sum.Warnings)))
	}
	if kinds := formatKinds(sum.Kinds); kinds != "" {
		lines = append(lines, fmt.Sprintf("%s %s", dimStyle.Render("Outcomes:"), kinds))
	}
	for _, f := range sum.Failures {
		lines = append(lines, errorStyle.Render("✗ ")+f.File+dimStyle.Render(": "+f.Error))
	}

	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
}

// formatKinds lists terminal kinds in pipeline order, then any others by name.
func formatKinds(kinds map[string]int) string {
	var parts []string
	seen := make(map[string]bool)
	for _, k := range outline.Kinds {
		seen[string(k)] = true
		if n := kinds[string(k)]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", k, n))
		}
	}
	var extra []string
	for k := range kinds {
		if !seen[k] && kinds[k] > 0 {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		parts = append(parts, fmt.Sprintf("%s=%d", k, kinds[k]))
	}
	return strings.Join(parts, " ")
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// FormatTree renders res as an indented heading tree.
func FormatTree(w io.Writer, res doctree.Result) {
	tree := res.Tree()
	fmt.Fprintln(w, titleStyle.Render(tree.Title))

	var walk func(nodes []*doctree.DocNode, depth int)
	walk = func(nodes []*doctree.DocNode, depth int) {
		for _, n := range nodes {
			fmt.Fprintf(w, "%s%s %s %s\n",
				strings.Repeat("  ", depth),
				dimStyle.Render(string(n.Level)),
				n.Title,
				pageStyle.Render(fmt.Sprintf("p.%d", n.Page)),
			)
			walk(n.Children, depth+1)
		}
	}
	walk(tree.Children, 1)
}
