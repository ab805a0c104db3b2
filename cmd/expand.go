package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var expandForce bool

var expandCmd = &cobra.Command{
	Use:   "expand <id>",
	Short: "Ask the backing tool to break a task into subtasks",
	Long: `Ask the backing tool to break a task into subtasks. Expansion is
performed by the tool itself; taskglass only relays the request, over the
protocol channel or the CLI.`,
	Args: cobra.ExactArgs(1),
	RunE: runExpand,
}

func init() {
	rootCmd.AddCommand(expandCmd)
	expandCmd.Flags().BoolVar(&expandForce, "force", false, "regenerate subtasks even if the task already has some")
}

func runExpand(cmd *cobra.Command, args []string) error {
	svc := GetService(nil)
	if err := svc.ExpandTask(context.Background(), args[0], expandForce); err != nil {
		return fmt.Errorf("expand task: %w", err)
	}
	cmd.Printf("Task %s expanded.\n", args[0])
	return nil
}
