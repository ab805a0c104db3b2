package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taskglass/taskglass/models"
	"github.com/taskglass/taskglass/store"
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of an existing task",
	Long: `Update fields of an existing task. Only the flags you pass change;
everything else, including fields taskglass does not model, is left exactly
as the backing tool wrote it.

Examples:
  taskglass update 3 --title "Ship payment webhooks"
  taskglass update 3.1 --priority high --depends 3.2`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().String("title", "", "new title")
	updateCmd.Flags().String("description", "", "new description")
	updateCmd.Flags().String("details", "", "new implementation details")
	updateCmd.Flags().String("test-strategy", "", "new test strategy")
	updateCmd.Flags().String("priority", "", "new priority (low, medium, high, critical)")
	updateCmd.Flags().String("category", "", "new category")
	updateCmd.Flags().StringSlice("depends", nil, "replacement dependency list")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	var updates store.TaskUpdates
	changed := false

	if cmd.Flags().Changed("title") {
		v, _ := cmd.Flags().GetString("title")
		updates.Title = &v
		changed = true
	}
	if cmd.Flags().Changed("description") {
		v, _ := cmd.Flags().GetString("description")
		updates.Description = &v
		changed = true
	}
	if cmd.Flags().Changed("details") {
		v, _ := cmd.Flags().GetString("details")
		updates.Details = &v
		changed = true
	}
	if cmd.Flags().Changed("test-strategy") {
		v, _ := cmd.Flags().GetString("test-strategy")
		updates.TestStrategy = &v
		changed = true
	}
	if cmd.Flags().Changed("priority") {
		v, _ := cmd.Flags().GetString("priority")
		p := models.TaskPriority(v)
		updates.Priority = &p
		changed = true
	}
	if cmd.Flags().Changed("category") {
		v, _ := cmd.Flags().GetString("category")
		updates.Category = &v
		changed = true
	}
	if cmd.Flags().Changed("depends") {
		v, _ := cmd.Flags().GetStringSlice("depends")
		updates.Dependencies = &v
		changed = true
	}

	if !changed {
		return fmt.Errorf("nothing to update; pass at least one field flag")
	}

	svc := GetService(nil)
	if err := svc.UpdateTask(context.Background(), args[0], updates); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	cmd.Printf("Task %s updated.\n", args[0])
	return nil
}
