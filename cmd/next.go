package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var nextJSON bool

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next task that is ready to work on",
	Long: `Show the next task that is ready to work on: status todo with every
dependency completed. Higher-priority tasks win ties.`,
	RunE: runNext,
}

func init() {
	rootCmd.AddCommand(nextCmd)
	nextCmd.Flags().BoolVar(&nextJSON, "json", false, "print the task as JSON")
}

func runNext(cmd *cobra.Command, args []string) error {
	svc := GetService(nil)
	t, err := svc.NextTask(context.Background())
	if err != nil {
		return fmt.Errorf("next task: %w", err)
	}
	if t == nil {
		cmd.Println("No task is ready. Everything is either done, blocked, or waiting on dependencies.")
		return nil
	}
	if nextJSON {
		return printJSON(t)
	}
	printTaskDetails(*t)
	return nil
}
