package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/taskglass/taskglass/internal/channel"
	"github.com/taskglass/taskglass/internal/logger"
	"github.com/taskglass/taskglass/internal/notify"
	"github.com/taskglass/taskglass/internal/tag"
	"github.com/taskglass/taskglass/internal/task"
	"github.com/taskglass/taskglass/store"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// version is the application version.
	version = "0.3.0"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "taskglass",
	Short: "taskglass mirrors a task-management tool's state into your editor workflow.",
	Long: `taskglass sits beside an external task-management tool and resolves its
state through whichever channel currently works: the tool's protocol server,
its command line, or the task files themselves. Reads and writes go through
the same resolution layer, so the on-disk format the tool chose is always
preserved.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	// .env values feed the same viper keys as the config file.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.taskglass.yaml or $HOME/.taskglass.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// TasksFilePath returns the full path to the backing tool's task document.
func TasksFilePath() string {
	config := GetConfig()
	return filepath.Join(config.Project.RootDir, config.Backing.Dir, config.Backing.TasksFile)
}

// StateFilePath returns the full path to the backing tool's session state.
func StateFilePath() string {
	config := GetConfig()
	return filepath.Join(config.Project.RootDir, config.Backing.Dir, config.Backing.StateFile)
}

// GetService builds the fully wired task service. Construction is explicit
// and happens once per invocation; none of the collaborators are globals.
func GetService(notifier *notify.Notifier) *task.Service {
	config := GetConfig()
	logger.Setup(config.Verbose)

	files := store.NewFileStore(TasksFilePath())
	tags := tag.NewStore(afero.NewOsFs(), StateFilePath())

	cli := channel.NewCLIChannel(
		config.Channels.CLI.Command,
		time.Duration(config.Channels.CLI.TimeoutSeconds)*time.Second,
		time.Duration(config.Channels.CLI.VersionTimeoutSeconds)*time.Second,
	)

	var protocol channel.TaskChannel
	if config.Channels.Protocol.Enabled {
		protocol = channel.NewProtocolChannel(
			config.Channels.Protocol.Command,
			config.Channels.Protocol.Args,
			config.Project.RootDir,
			version,
			time.Duration(config.Channels.Protocol.TimeoutSeconds)*time.Second,
		)
	}

	gate := channel.NewVersionGate(cli, protocolProber(protocol),
		time.Duration(config.Compat.TTLSeconds)*time.Second,
		config.Compat.MinorTolerance,
	)

	orch := channel.NewOrchestrator(protocol, cli, files, gate, config.Compat.PreferReliability)
	return task.NewService(orch, tags, notifier)
}

// protocolProber adapts a possibly-nil protocol channel for the gate.
func protocolProber(ch channel.TaskChannel) channel.TaskChannel {
	if ch == nil {
		return channel.NoProtocol{}
	}
	return ch
}
