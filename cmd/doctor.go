package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/taskglass/taskglass/internal/channel"
	"github.com/taskglass/taskglass/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose channel health and version compatibility",
	Long: `Diagnose the resolution setup: whether the task file parses, which
channels are reachable, what versions they report, and whether the version
gate currently trusts the protocol channel.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	config := GetConfig()
	ctx := context.Background()

	fmt.Println(titleStyle.Render("Task file"))
	path := TasksFilePath()
	files := store.NewFileStore(path)
	if doc, err := files.Load(store.MasterTag); err != nil {
		fmt.Printf("  %s %s: %v\n", blockedStyle.Render("✗"), path, err)
	} else {
		fmt.Printf("  %s %s (%s format, tags: %d)\n", okStyle.Render("✓"), path, doc.Shape, len(doc.TagNames()))
	}

	fmt.Println(titleStyle.Render("CLI channel"))
	cli := channel.NewCLIChannel(
		config.Channels.CLI.Command,
		time.Duration(config.Channels.CLI.TimeoutSeconds)*time.Second,
		time.Duration(config.Channels.CLI.VersionTimeoutSeconds)*time.Second,
	)
	if !cli.Available(ctx) {
		fmt.Printf("  %s %q not found on PATH\n", warnStyle.Render("!"), config.Channels.CLI.Command)
	} else if v, err := cli.Version(ctx); err != nil {
		fmt.Printf("  %s %q found, version probe failed: %v\n", warnStyle.Render("!"), config.Channels.CLI.Command, err)
	} else {
		fmt.Printf("  %s %q version %s\n", okStyle.Render("✓"), config.Channels.CLI.Command, v)
	}

	fmt.Println(titleStyle.Render("Protocol channel"))
	if !config.Channels.Protocol.Enabled {
		fmt.Printf("  %s disabled in configuration\n", dimStyle.Render("-"))
	} else {
		protocol := channel.NewProtocolChannel(
			config.Channels.Protocol.Command,
			config.Channels.Protocol.Args,
			config.Project.RootDir,
			version,
			time.Duration(config.Channels.Protocol.TimeoutSeconds)*time.Second,
		)
		if v, err := protocol.Version(ctx); err != nil {
			fmt.Printf("  %s server did not answer: %v\n", warnStyle.Render("!"), err)
		} else {
			fmt.Printf("  %s server version %s\n", okStyle.Render("✓"), v)
		}
	}

	fmt.Println(titleStyle.Render("Compatibility"))
	svc := GetService(nil)
	result := svc.CheckVersionCompatibility(ctx)
	if result.Compatible {
		fmt.Printf("  %s channels agree (cli %s, protocol %s)\n", okStyle.Render("✓"),
			orDash(result.CLIVersion), orDash(result.MCPVersion))
	} else {
		fmt.Printf("  %s %s\n", warnStyle.Render("!"), result.Warning)
		if config.Compat.PreferReliability {
			fmt.Println(dimStyle.Render("  protocol channel will be skipped while the CLI is reachable"))
		}
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
