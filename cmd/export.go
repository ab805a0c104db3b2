package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/taskglass/taskglass/store"
)

var (
	exportFormat string
	exportOutput string
	exportTag    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the canonical task tree",
	Long: `Export the canonical task tree of a tag in JSON, YAML or TOML. The
exported view is normalized; the backing file itself is never touched.

Examples:
  taskglass export
  taskglass export --format yaml -o tasks.yaml
  taskglass export --tag feature-auth --format toml`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "output format (json, yaml, toml)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
	exportCmd.Flags().StringVar(&exportTag, "tag", "", "tag to export (default: current tag)")
}

func runExport(cmd *cobra.Command, args []string) error {
	svc := GetService(nil)
	ctx := context.Background()

	tag := exportTag
	if tag == "" {
		tc, err := svc.TagContext(ctx)
		if err != nil {
			return fmt.Errorf("tag context: %w", err)
		}
		tag = tc.CurrentTag
	}

	tasks, err := svc.GetTasks(ctx, tag)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}

	data, err := store.Export(tag, tasks, exportFormat)
	if err != nil {
		return err
	}

	if exportOutput == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(exportOutput, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	cmd.Printf("Exported %d tasks to %s.\n", len(tasks), exportOutput)
	return nil
}
