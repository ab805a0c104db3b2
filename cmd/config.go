package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/taskglass/taskglass/internal/channel"
	"github.com/taskglass/taskglass/types"
)

const (
	configName = ".taskglass"
	envPrefix  = "TASKGLASS"
)

// appConfig holds the unmarshaled configuration for the current invocation.
var appConfig types.AppConfig

var validate = validator.New()

// InitConfig reads the config file and matching environment variables. It is
// registered with cobra.OnInitialize, so it runs before any command's RunE.
func InitConfig() {
	// Env vars must be registered before the config file is read so that
	// e.g. TASKGLASS_CHANNELS_CLI_COMMAND can override file values.
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFile != "" {
				fmt.Fprintln(os.Stderr, "Error: specified config file not found:", cfgFile)
				os.Exit(1)
			}
			// No config file is fine; defaults and env vars carry the day.
		} else {
			fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
			os.Exit(1)
		}
	} else if viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	setDefaults()

	if err := viper.Unmarshal(&appConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling config: %s\n", err)
		os.Exit(1)
	}

	if err := validate.Struct(&appConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		os.Exit(1)
	}
}

func setDefaults() {
	viper.SetDefault("project.rootDir", ".")

	// Backing-tool layout: <rootDir>/.taskmaster/tasks/tasks.json plus the
	// session state file next to it.
	viper.SetDefault("backing.dir", ".taskmaster")
	viper.SetDefault("backing.tasksFile", "tasks/tasks.json")
	viper.SetDefault("backing.stateFile", "state.json")

	viper.SetDefault("channels.protocol.enabled", true)
	viper.SetDefault("channels.protocol.command", "npx")
	viper.SetDefault("channels.protocol.args", []string{"-y", "task-master-ai"})
	viper.SetDefault("channels.protocol.timeoutSeconds", 30)

	viper.SetDefault("channels.cli.command", "task-master")
	viper.SetDefault("channels.cli.timeoutSeconds", int(channel.DefaultCLITimeout.Seconds()))
	viper.SetDefault("channels.cli.versionTimeoutSeconds", int(channel.DefaultVersionTimeout.Seconds()))

	viper.SetDefault("compat.ttlSeconds", int(channel.DefaultCompatTTL.Seconds()))
	viper.SetDefault("compat.minorTolerance", channel.DefaultMinorTolerance)
	viper.SetDefault("compat.preferReliability", true)
}

// GetConfig returns the configuration for the current invocation.
func GetConfig() *types.AppConfig {
	return &appConfig
}
