package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taskglass/taskglass/internal/task"
)

var progressJSON bool

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show completion counts for the current tag",
	RunE:  runProgress,
}

func init() {
	rootCmd.AddCommand(progressCmd)
	progressCmd.Flags().BoolVar(&progressJSON, "json", false, "print counts as JSON")
}

func runProgress(cmd *cobra.Command, args []string) error {
	svc := GetService(nil)
	p, err := svc.GetTaskProgress(context.Background())
	if err != nil {
		return fmt.Errorf("task progress: %w", err)
	}
	if progressJSON {
		return printJSON(p)
	}

	fmt.Println(titleStyle.Render("Main tasks"))
	printCounts(p.MainTasks)
	fmt.Println(titleStyle.Render("All items"))
	printCounts(p.AllItems)
	return nil
}

func printCounts(c task.Counts) {
	fmt.Printf("  %s  %d/%d completed", progressBar(c), c.Completed, c.Total)
	if c.InProgress > 0 {
		fmt.Printf(", %d in progress", c.InProgress)
	}
	if c.Blocked > 0 {
		fmt.Printf(", %s", blockedStyle.Render(fmt.Sprintf("%d blocked", c.Blocked)))
	}
	fmt.Println()
}

func progressBar(c task.Counts) string {
	const width = 20
	if c.Total == 0 {
		return dimStyle.Render(strings.Repeat("░", width))
	}
	filled := c.Completed * width / c.Total
	return okStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}
