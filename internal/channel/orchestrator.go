package channel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taskglass/taskglass/internal/hierarchy"
	"github.com/taskglass/taskglass/internal/logger"
	"github.com/taskglass/taskglass/models"
	"github.com/taskglass/taskglass/store"
	"github.com/taskglass/taskglass/types"
)

// Orchestrator is the per-operation channel policy: try the protocol
// channel, fall back to the CLI on failure or version distrust, fall back to
// direct file mutation for what the CLI cannot do. A channel is attempted at
// most once per operation.
type Orchestrator struct {
	protocol TaskChannel
	cli      TaskChannel
	files    *store.FileStore
	gate     *VersionGate
	// preferReliability skips the protocol attempt outright when the gate
	// distrusts it and the CLI is reachable, instead of burning a round trip.
	preferReliability bool
}

// NewOrchestrator wires the channels together. Collaborators are injected
// once at construction; nothing here is a mutable global.
func NewOrchestrator(protocol, cli TaskChannel, files *store.FileStore, gate *VersionGate, preferReliability bool) *Orchestrator {
	return &Orchestrator{
		protocol:          protocol,
		cli:               cli,
		files:             files,
		gate:              gate,
		preferReliability: preferReliability,
	}
}

// Gate exposes the version gate for direct compatibility queries.
func (o *Orchestrator) Gate() *VersionGate { return o.gate }

// Files exposes the document store for read-side container queries (tags).
func (o *Orchestrator) Files() *store.FileStore { return o.files }

// skipProtocol decides whether the protocol attempt should not happen at
// all for this operation.
func (o *Orchestrator) skipProtocol(ctx context.Context, opID, op string) bool {
	if o.protocol == nil || !o.protocol.Available(ctx) {
		logger.Skip(opID, op, NameProtocol, "unavailable")
		return true
	}
	if !o.preferReliability {
		return false
	}
	verdict := o.gate.Check(ctx)
	if !verdict.Compatible && o.cli != nil && o.cli.Available(ctx) {
		logger.Skip(opID, op, NameProtocol, "version gate distrusts protocol channel")
		return true
	}
	return false
}

// attempt is one channel try within an operation.
type attempt struct {
	channel string
	run     func(ctx context.Context) error
}

// execute runs the attempts in order until one succeeds. Every attempt and
// outcome is logged with a shared operation id so a fallback sequence can be
// reconstructed from logs. A NotFoundError aborts the fallback chain: the
// target is missing, not the channel.
func (o *Orchestrator) execute(ctx context.Context, op string, attempts []attempt) error {
	if len(attempts) == 0 {
		return fmt.Errorf("%s: %w", op, types.ErrChannelExhausted)
	}
	opID := uuid.NewString()
	var failures []error
	for _, a := range attempts {
		start := time.Now()
		err := a.run(ctx)
		logger.Attempt(opID, op, a.channel, time.Since(start), err)
		if err == nil {
			return nil
		}
		var notFound *types.NotFoundError
		if errors.As(err, &notFound) {
			return err
		}
		failures = append(failures, err)
	}
	return fmt.Errorf("%s: %w: %w", op, types.ErrChannelExhausted, errors.Join(failures...))
}

// GetTasks resolves the canonical task tree for a tag. Read paths favor
// availability: the protocol channel is tried first, then the raw document
// on disk. Hierarchy reconstruction runs on whichever source answered.
func (o *Orchestrator) GetTasks(ctx context.Context, tag string) ([]models.Task, error) {
	opID := uuid.NewString()
	const op = "get-tasks"

	if !o.skipProtocol(ctx, opID, op) {
		start := time.Now()
		tasks, err := o.protocol.GetTasks(ctx, tag)
		logger.Attempt(opID, op, NameProtocol, time.Since(start), err)
		if err == nil {
			return hierarchy.Build(tasks), nil
		}
	}

	start := time.Now()
	doc, err := o.files.Load(tag)
	logger.Attempt(opID, op, NameFile, time.Since(start), err)
	if err != nil {
		// Irrecoverable read: surface the error alongside an empty, usable
		// result set.
		return []models.Task{}, err
	}
	tasks, issues := doc.CanonicalTasks()
	for _, issue := range issues {
		slogIssue(op, issue)
	}
	return hierarchy.Build(tasks), nil
}

// SetStatus writes a status change through the first channel that takes it.
func (o *Orchestrator) SetStatus(ctx context.Context, id string, status models.TaskStatus, tag string) error {
	opID := uuid.NewString()
	const op = "set-status"
	var attempts []attempt
	if !o.skipProtocol(ctx, opID, op) {
		attempts = append(attempts, attempt{NameProtocol, func(ctx context.Context) error {
			return o.protocol.SetStatus(ctx, id, status, tag)
		}})
	}
	if o.cli != nil && o.cli.Available(ctx) {
		attempts = append(attempts, attempt{NameCLI, func(ctx context.Context) error {
			return o.cli.SetStatus(ctx, id, status, tag)
		}})
	}
	attempts = append(attempts, o.fileAttempt(op, tag, func(doc *store.Document) error {
		return doc.SetStatus(id, status)
	}))
	return o.execute(ctx, op, attempts)
}

// AddTask creates a task through the first channel that takes it. The id the
// file fallback assigns is reported through assignedID when no channel
// returns one.
func (o *Orchestrator) AddTask(ctx context.Context, task models.Task, tag string) (assignedID string, err error) {
	opID := uuid.NewString()
	const op = "add-task"
	var attempts []attempt
	if !o.skipProtocol(ctx, opID, op) {
		attempts = append(attempts, attempt{NameProtocol, func(ctx context.Context) error {
			return o.protocol.AddTask(ctx, task, tag)
		}})
	}
	if o.cli != nil && o.cli.Available(ctx) {
		attempts = append(attempts, attempt{NameCLI, func(ctx context.Context) error {
			return o.cli.AddTask(ctx, task, tag)
		}})
	}
	attempts = append(attempts, o.fileAttempt(op, tag, func(doc *store.Document) error {
		id, err := doc.AddTask(task)
		if err == nil {
			assignedID = id
		}
		return err
	}))
	return assignedID, o.execute(ctx, op, attempts)
}

// ExpandTask is passed through to the backing tool. There is no file
// fallback: subtask generation needs the tool itself.
func (o *Orchestrator) ExpandTask(ctx context.Context, id string, force bool, tag string) error {
	opID := uuid.NewString()
	const op = "expand-task"
	var attempts []attempt
	if !o.skipProtocol(ctx, opID, op) {
		attempts = append(attempts, attempt{NameProtocol, func(ctx context.Context) error {
			return o.protocol.ExpandTask(ctx, id, force, tag)
		}})
	}
	if o.cli != nil && o.cli.Available(ctx) {
		attempts = append(attempts, attempt{NameCLI, func(ctx context.Context) error {
			return o.cli.ExpandTask(ctx, id, force, tag)
		}})
	}
	return o.execute(ctx, op, attempts)
}

// UpdateTask applies a partial update. Neither channel exposes structured
// field updates, so this goes straight to the document.
func (o *Orchestrator) UpdateTask(ctx context.Context, id string, updates store.TaskUpdates, tag string) error {
	const op = "update-task"
	return o.execute(ctx, op, []attempt{o.fileAttempt(op, tag, func(doc *store.Document) error {
		return doc.Update(id, updates)
	})})
}

// AddSubtask appends a subtask under a parent, directly in the document.
func (o *Orchestrator) AddSubtask(ctx context.Context, parentID string, task models.Task, tag string) (assignedID string, err error) {
	const op = "add-subtask"
	err = o.execute(ctx, op, []attempt{o.fileAttempt(op, tag, func(doc *store.Document) error {
		id, err := doc.AddSubtask(parentID, task)
		if err == nil {
			assignedID = id
		}
		return err
	})})
	return assignedID, err
}

// RemoveSubtask removes a direct subtask, directly in the document.
func (o *Orchestrator) RemoveSubtask(ctx context.Context, parentID, subtaskID, tag string) error {
	const op = "remove-subtask"
	return o.execute(ctx, op, []attempt{o.fileAttempt(op, tag, func(doc *store.Document) error {
		return doc.RemoveSubtask(parentID, subtaskID)
	})})
}

// DeleteTask removes a task and its descendants, directly in the document.
func (o *Orchestrator) DeleteTask(ctx context.Context, id, tag string) error {
	const op = "delete-task"
	return o.execute(ctx, op, []attempt{o.fileAttempt(op, tag, func(doc *store.Document) error {
		return doc.DeleteTask(id)
	})})
}

func (o *Orchestrator) fileAttempt(op, tag string, fn func(*store.Document) error) attempt {
	return attempt{NameFile, func(ctx context.Context) error {
		if err := o.files.Mutate(tag, fn); err != nil {
			var notFound *types.NotFoundError
			if errors.As(err, &notFound) {
				return err
			}
			return &types.ChannelError{Channel: NameFile, Op: op, Err: err}
		}
		return nil
	}}
}
