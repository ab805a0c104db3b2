package channel

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/taskglass/taskglass/models"
	"github.com/taskglass/taskglass/types"
)

// Default timeouts for CLI subprocess calls. Mutating subcommands may hit the
// backing tool's own network calls, version probes must stay snappy.
const (
	DefaultCLITimeout     = 30 * time.Second
	DefaultVersionTimeout = 5 * time.Second
)

// Commander executes subprocess commands. The indirection exists so tests
// can run the channel against a fake instead of a real binary.
type Commander interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ShellCommander executes real commands, capturing stdout as the result and
// folding stderr into the error.
type ShellCommander struct{}

func (c *ShellCommander) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("command timed out: %w", ctx.Err())
		}
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return "", fmt.Errorf("%w: %s", err, errMsg)
		}
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}

// CLIChannel drives the backing tool's command-line executable. It can
// mutate but not list: the CLI renders task lists for humans, so reads fall
// through to the document on disk instead of scraping terminal output.
type CLIChannel struct {
	command        string
	commander      Commander
	timeout        time.Duration
	versionTimeout time.Duration
}

// NewCLIChannel creates a CLI channel for the given executable name.
// Zero durations fall back to the defaults.
func NewCLIChannel(command string, timeout, versionTimeout time.Duration) *CLIChannel {
	if timeout <= 0 {
		timeout = DefaultCLITimeout
	}
	if versionTimeout <= 0 {
		versionTimeout = DefaultVersionTimeout
	}
	return &CLIChannel{
		command:        command,
		commander:      &ShellCommander{},
		timeout:        timeout,
		versionTimeout: versionTimeout,
	}
}

// NewCLIChannelWithCommander creates a channel with a custom commander, for
// tests.
func NewCLIChannelWithCommander(command string, commander Commander) *CLIChannel {
	ch := NewCLIChannel(command, 0, 0)
	ch.commander = commander
	return ch
}

func (c *CLIChannel) Name() string { return NameCLI }

// Available reports whether the executable exists on PATH.
func (c *CLIChannel) Available(ctx context.Context) bool {
	_, err := exec.LookPath(c.command)
	return err == nil
}

// Version runs the tool's --version probe under the short timeout.
func (c *CLIChannel) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.versionTimeout)
	defer cancel()
	out, err := c.commander.Run(ctx, c.command, "--version")
	if err != nil {
		return "", &types.ChannelError{Channel: NameCLI, Op: "version", Err: err}
	}
	return parseVersionOutput(out), nil
}

// parseVersionOutput picks the version token out of --version output, which
// ranges from a bare "1.2.3" to a banner line.
func parseVersionOutput(out string) string {
	for _, field := range strings.Fields(out) {
		trimmed := strings.TrimPrefix(field, "v")
		if len(trimmed) > 0 && trimmed[0] >= '0' && trimmed[0] <= '9' && strings.Contains(trimmed, ".") {
			return trimmed
		}
	}
	return strings.TrimSpace(out)
}

// GetTasks is unsupported: the CLI has no machine-readable list output.
func (c *CLIChannel) GetTasks(ctx context.Context, tag string) ([]models.Task, error) {
	return nil, &types.ChannelError{Channel: NameCLI, Op: "get-tasks", Err: types.ErrUnsupported}
}

// SetStatus invokes the set-status subcommand with the backing system's own
// status token.
func (c *CLIChannel) SetStatus(ctx context.Context, id string, status models.TaskStatus, tag string) error {
	args := []string{"set-status", "--id=" + id, "--status=" + models.DenormalizeStatus(status)}
	args = appendTag(args, tag)
	return c.run(ctx, "set-status", args)
}

// AddTask invokes the add-task subcommand with explicit fields.
func (c *CLIChannel) AddTask(ctx context.Context, task models.Task, tag string) error {
	args := []string{"add-task", "--title=" + task.Title}
	if task.Description != "" {
		args = append(args, "--description="+task.Description)
	}
	if task.Priority != "" {
		args = append(args, "--priority="+string(task.Priority))
	}
	if len(task.Dependencies) > 0 {
		args = append(args, "--dependencies="+strings.Join(task.Dependencies, ","))
	}
	args = appendTag(args, tag)
	return c.run(ctx, "add-task", args)
}

// ExpandTask invokes the expand subcommand.
func (c *CLIChannel) ExpandTask(ctx context.Context, id string, force bool, tag string) error {
	args := []string{"expand", "--id=" + id}
	if force {
		args = append(args, "--force")
	}
	args = appendTag(args, tag)
	return c.run(ctx, "expand", args)
}

func (c *CLIChannel) run(ctx context.Context, op string, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if _, err := c.commander.Run(ctx, c.command, args...); err != nil {
		return &types.ChannelError{Channel: NameCLI, Op: op, Err: err}
	}
	return nil
}

func appendTag(args []string, tag string) []string {
	if tag != "" && tag != "master" {
		return append(args, "--tag="+tag)
	}
	return args
}
