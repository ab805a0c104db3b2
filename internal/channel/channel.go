// Package channel talks to the backing task tool over its two transports and
// decides, per operation, which one to trust.
//
// The protocol channel (a structured RPC server spawned as a subprocess) is
// fast but version-skewed installations have shipped incompatible data
// shapes before; the CLI channel is slow but tracks the on-disk format by
// definition. Direct file mutation is the channel of last resort for
// operations neither transport supports.
package channel

import (
	"context"
	"log/slog"

	"github.com/taskglass/taskglass/models"
	"github.com/taskglass/taskglass/types"
)

// Channel names used in logs and errors.
const (
	NameProtocol = "protocol"
	NameCLI      = "cli"
	NameFile     = "file"
)

// TaskChannel is one transport to the backing system. Implementations are
// constructed eagerly and injected; there is no lazy global client handle.
type TaskChannel interface {
	// Name identifies the channel in logs and errors.
	Name() string
	// Available reports whether the channel can be reached at all.
	Available(ctx context.Context) bool
	// Version probes the channel's backing-system version. An empty string
	// with nil error means the channel is reachable but unversioned.
	Version(ctx context.Context) (string, error)

	// GetTasks returns the raw task list for a tag. Results are sanitized by
	// the caller; no channel is trusted to return well-formed data.
	GetTasks(ctx context.Context, tag string) ([]models.Task, error)
	// SetStatus updates one task's status.
	SetStatus(ctx context.Context, id string, status models.TaskStatus, tag string) error
	// AddTask creates a new task.
	AddTask(ctx context.Context, task models.Task, tag string) error
	// ExpandTask asks the backing tool to break a task into subtasks.
	ExpandTask(ctx context.Context, id string, force bool, tag string) error
}

// slogIssue records a sanitizer diagnostic for a dropped task entry.
func slogIssue(op string, issue types.ValidationIssue) {
	slog.Warn("dropped malformed task entry", "op", op, "detail", issue.String())
}
