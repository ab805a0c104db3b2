package types

// AppConfig represents the complete application configuration.
type AppConfig struct {
	Verbose  bool           `mapstructure:"verbose"`
	Config   string         `mapstructure:"config"`
	Project  ProjectConfig  `mapstructure:"project" validate:"required"`
	Backing  BackingConfig  `mapstructure:"backing" validate:"required"`
	Channels ChannelsConfig `mapstructure:"channels"`
	Compat   CompatConfig   `mapstructure:"compat"`
}

// ProjectConfig holds project-related settings.
type ProjectConfig struct {
	RootDir string `mapstructure:"rootDir" validate:"required"`
}

// BackingConfig locates the backing tool's on-disk state, relative to the
// project root.
type BackingConfig struct {
	Dir       string `mapstructure:"dir" validate:"required"`       // e.g. ".taskmaster"
	TasksFile string `mapstructure:"tasksFile" validate:"required"` // e.g. "tasks/tasks.json"
	StateFile string `mapstructure:"stateFile" validate:"required"` // e.g. "state.json"
}

// ChannelsConfig configures the two channels to the backing system.
type ChannelsConfig struct {
	Protocol ProtocolConfig `mapstructure:"protocol"`
	CLI      CLIConfig      `mapstructure:"cli"`
}

// ProtocolConfig configures the structured protocol channel. The backing
// system's server is spawned as a subprocess and spoken to over stdio.
type ProtocolConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Command string   `mapstructure:"command" validate:"omitempty,min=1"`
	Args    []string `mapstructure:"args"`
	// TimeoutSeconds bounds a single protocol round trip.
	TimeoutSeconds int `mapstructure:"timeoutSeconds" validate:"omitempty,min=1,max=600"`
}

// CLIConfig configures the command-line fallback channel.
type CLIConfig struct {
	Command string `mapstructure:"command" validate:"omitempty,min=1"`
	// TimeoutSeconds bounds mutating subcommands (default 30).
	TimeoutSeconds int `mapstructure:"timeoutSeconds" validate:"omitempty,min=1,max=600"`
	// VersionTimeoutSeconds bounds the --version probe (default 5).
	VersionTimeoutSeconds int `mapstructure:"versionTimeoutSeconds" validate:"omitempty,min=1,max=60"`
}

// CompatConfig tunes the version compatibility gate.
type CompatConfig struct {
	// TTLSeconds is how long a compatibility verdict is memoized (default 300).
	TTLSeconds int `mapstructure:"ttlSeconds" validate:"omitempty,min=1"`
	// MinorTolerance is the allowed minor-version drift between the two
	// channels before the faster one is distrusted (default 20). Deliberately
	// wide: the channels are versioned independently and minor drift is
	// routine.
	MinorTolerance int `mapstructure:"minorTolerance" validate:"omitempty,min=0"`
	// PreferReliability skips the protocol channel outright when the gate
	// reports incompatibility and the CLI is reachable.
	PreferReliability bool `mapstructure:"preferReliability"`
}
