package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/taskglass/taskglass/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	idStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	blockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func statusGlyph(s models.TaskStatus) string {
	switch s {
	case models.StatusCompleted:
		return okStyle.Render("✓")
	case models.StatusInProgress:
		return warnStyle.Render("◐")
	case models.StatusBlocked:
		return blockedStyle.Render("✗")
	case models.StatusCancelled:
		return dimStyle.Render("⊘")
	case models.StatusDeferred:
		return dimStyle.Render("…")
	case models.StatusReview:
		return warnStyle.Render("?")
	}
	return "○"
}

// renderTaskLine renders one task as a single tree row.
func renderTaskLine(t models.Task, indent int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteString(statusGlyph(t.Status))
	b.WriteString(" ")
	b.WriteString(idStyle.Render(t.ID))
	b.WriteString(" ")
	b.WriteString(t.Title)
	if t.Priority == models.PriorityHigh || t.Priority == models.PriorityCritical {
		b.WriteString(" " + warnStyle.Render("["+string(t.Priority)+"]"))
	}
	if len(t.Dependencies) > 0 {
		b.WriteString(" " + dimStyle.Render("deps: "+strings.Join(t.Dependencies, ", ")))
	}
	return b.String()
}

func renderTaskTree(tasks []models.Task, indent int) {
	for _, t := range tasks {
		fmt.Println(renderTaskLine(t, indent))
		renderTaskTree(t.Subtasks, indent+1)
	}
}

// printJSON writes v as indented JSON to stdout, for --json consumers.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
