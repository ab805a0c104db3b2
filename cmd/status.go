package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taskglass/taskglass/models"
)

var setStatusCmd = &cobra.Command{
	Use:   "set-status <id> <status>",
	Short: "Change a task's status",
	Long: `Change a task's status. Both canonical statuses (todo, in-progress,
completed, blocked, deferred, cancelled, review) and the backing tool's
aliases (pending, done, in_progress, ...) are accepted.

Dotted ids address subtasks:
  taskglass set-status 3 in-progress
  taskglass set-status 3.1 done`,
	Args: cobra.ExactArgs(2),
	RunE: runSetStatus,
}

func init() {
	rootCmd.AddCommand(setStatusCmd)
}

func runSetStatus(cmd *cobra.Command, args []string) error {
	id := args[0]
	status := models.NormalizeStatus(args[1])

	svc := GetService(nil)
	if err := svc.SetTaskStatus(context.Background(), id, status); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	cmd.Printf("Task %s is now %s.\n", id, status)
	return nil
}
