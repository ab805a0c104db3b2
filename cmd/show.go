package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taskglass/taskglass/models"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one task in detail",
	Long: `Show one task, including details, test strategy and subtasks.

Dotted ids address subtasks directly:
  taskglass show 3
  taskglass show 3.1`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the task as JSON")
}

func runShow(cmd *cobra.Command, args []string) error {
	id := args[0]
	mainID, subID := id, ""
	if i := strings.Index(id, "."); i >= 0 {
		mainID, subID = id[:i], id
	}

	svc := GetService(nil)
	t, err := svc.GetTaskDetails(context.Background(), mainID, subID)
	if err != nil {
		return fmt.Errorf("show task: %w", err)
	}
	if t == nil {
		return fmt.Errorf("task %q not found", id)
	}

	if showJSON {
		return printJSON(t)
	}
	printTaskDetails(*t)
	return nil
}

func printTaskDetails(t models.Task) {
	fmt.Printf("%s %s %s\n", statusGlyph(t.Status), idStyle.Render(t.ID), titleStyle.Render(t.Title))
	fmt.Printf("  Status:   %s\n", t.Status)
	if t.Priority != "" {
		fmt.Printf("  Priority: %s\n", t.Priority)
	}
	if t.Category != "" {
		fmt.Printf("  Category: %s\n", t.Category)
	}
	if len(t.Dependencies) > 0 {
		fmt.Printf("  Depends:  %s\n", strings.Join(t.Dependencies, ", "))
	}
	if t.Description != "" {
		fmt.Printf("\n  %s\n", t.Description)
	}
	if t.Details != "" {
		fmt.Printf("\n%s\n%s\n", dimStyle.Render("  Details:"), indentBlock(t.Details))
	}
	if t.TestStrategy != "" {
		fmt.Printf("\n%s\n%s\n", dimStyle.Render("  Test strategy:"), indentBlock(t.TestStrategy))
	}
	if len(t.Subtasks) > 0 {
		fmt.Printf("\n%s\n", dimStyle.Render("  Subtasks:"))
		renderTaskTree(t.Subtasks, 1)
	}
}

func indentBlock(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
