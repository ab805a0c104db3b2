package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task and its subtasks",
	Long: `Delete a task and everything nested under it. Dependency references
other tasks hold toward the deleted id are left in place, matching the
backing tool's behavior.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var removeSubtaskCmd = &cobra.Command{
	Use:   "remove-subtask <parent-id> <subtask-id>",
	Short: "Remove a direct subtask of a task",
	Args:  cobra.ExactArgs(2),
	RunE:  runRemoveSubtask,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(removeSubtaskCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	svc := GetService(nil)
	if err := svc.DeleteTask(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	cmd.Printf("Task %s deleted.\n", args[0])
	return nil
}

func runRemoveSubtask(cmd *cobra.Command, args []string) error {
	svc := GetService(nil)
	if err := svc.RemoveSubtask(context.Background(), args[0], args[1]); err != nil {
		return fmt.Errorf("remove subtask: %w", err)
	}
	cmd.Printf("Subtask %s removed from task %s.\n", args[1], args[0])
	return nil
}
