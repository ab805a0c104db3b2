package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taskglass/taskglass/models"
)

var (
	addDescription string
	addDetails     string
	addPriority    string
	addDepends     []string
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a new task",
	Long: `Add a new task to the current tag. The id is assigned by whichever
channel handles the write; when the write lands in the task file directly,
the next free numeric id is used.

Examples:
  taskglass add "Wire up payment webhooks"
  taskglass add "Fix flaky auth test" --priority high --depends 3,7`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var addSubtaskCmd = &cobra.Command{
	Use:   "add-subtask <parent-id> <title>",
	Short: "Add a subtask under an existing task",
	Args:  cobra.ExactArgs(2),
	RunE:  runAddSubtask,
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(addSubtaskCmd)

	for _, c := range []*cobra.Command{addCmd, addSubtaskCmd} {
		c.Flags().StringVar(&addDescription, "description", "", "one-line description")
		c.Flags().StringVar(&addDetails, "details", "", "implementation details")
		c.Flags().StringVar(&addPriority, "priority", "", "priority (low, medium, high, critical)")
		c.Flags().StringSliceVar(&addDepends, "depends", nil, "ids this task depends on")
	}
}

func taskFromFlags(title string) models.Task {
	t := models.NewTask("", title)
	t.Description = addDescription
	t.Details = addDetails
	if addPriority != "" {
		t.Priority = models.TaskPriority(addPriority)
	}
	t.Dependencies = addDepends
	return t
}

func runAdd(cmd *cobra.Command, args []string) error {
	svc := GetService(nil)
	id, err := svc.AddTask(context.Background(), taskFromFlags(args[0]))
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}
	if id != "" {
		cmd.Printf("Added task %s.\n", id)
	} else {
		cmd.Println("Task added.")
	}
	return nil
}

func runAddSubtask(cmd *cobra.Command, args []string) error {
	svc := GetService(nil)
	id, err := svc.AddSubtask(context.Background(), args[0], taskFromFlags(args[1]))
	if err != nil {
		return fmt.Errorf("add subtask: %w", err)
	}
	if id != "" {
		cmd.Printf("Added subtask %s.\n", id)
	} else {
		cmd.Println("Subtask added.")
	}
	return nil
}
