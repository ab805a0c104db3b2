package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taskglass/taskglass/models"
)

var (
	listTag    string
	listStatus string
	listJSON   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the task tree for a tag",
	Long: `List the task tree for a tag (the current one by default).

Subtasks are nested under their parents; dotted ids in flat documents are
rebuilt into the same tree.

Examples:
  taskglass list
  taskglass list --tag feature-auth
  taskglass list --status todo
  taskglass list --json`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listTag, "tag", "", "tag to list (default: current tag)")
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter root tasks by status (todo, in-progress, completed, ...)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print tasks as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	svc := GetService(nil)
	tasks, err := svc.GetTasks(context.Background(), listTag)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	if listStatus != "" {
		want := models.NormalizeStatus(listStatus)
		filtered := tasks[:0:0]
		for _, t := range tasks {
			if t.Status == want {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	if listJSON {
		return printJSON(tasks)
	}
	if len(tasks) == 0 {
		cmd.Println("No tasks found.")
		return nil
	}
	renderTaskTree(tasks, 0)
	return nil
}
