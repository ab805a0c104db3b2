package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/taskglass/taskglass/internal/notify"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-render the task tree whenever the backing files change",
	Long: `Watch the backing tool's task and state files and re-render the task
tree on every change. Bursts of writes are debounced so a save that touches
the file several times repaints once.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	repaint := func() {
		svc := GetService(nil)
		tasks, err := svc.GetTasks(context.Background(), "")
		if err != nil {
			PrintError("Could not reload tasks.", err)
			return
		}
		fmt.Printf("\n%s\n", dimStyle.Render(time.Now().Format("15:04:05")))
		if len(tasks) == 0 {
			fmt.Println("No tasks found.")
			return
		}
		renderTaskTree(tasks, 0)
	}

	notifier := notify.NewNotifier(notify.DefaultDebounce, repaint)
	defer notifier.Close()

	watcher, err := notify.Watch([]string{TasksFilePath(), StateFilePath()}, notifier)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	repaint()
	cmd.Println(dimStyle.Render("\nWatching for changes. Ctrl-C to stop."))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}
