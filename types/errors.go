package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks across packages.
var (
	// ErrChannelExhausted is returned when every channel for an operation
	// failed and no fallback remains.
	ErrChannelExhausted = errors.New("all channels exhausted")
	// ErrUnsupported marks an operation a channel cannot perform. The
	// orchestrator treats it like a failure and moves to the next channel.
	ErrUnsupported = errors.New("operation not supported by channel")
	// ErrProtectedTag guards the master tag, which always exists and cannot
	// be deleted.
	ErrProtectedTag = errors.New("the master tag cannot be deleted")
)

// FormatError reports an unrecognized task document shape. It is not
// recoverable locally: callers must not guess at the container layout.
type FormatError struct {
	Path   string
	Detail string
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("unrecognized task document shape: %s", e.Detail)
	}
	return fmt.Sprintf("unrecognized task document shape in %s: %s", e.Path, e.Detail)
}

// NotFoundError reports a missing task, subtask or tag. Write paths surface
// it to the user; lookup paths swallow it and return nil.
type NotFoundError struct {
	Kind string // "task", "subtask" or "tag"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ChannelError reports a failed protocol or CLI call. The orchestrator
// recovers by falling back to the next channel and only surfaces it once all
// channels are exhausted.
type ChannelError struct {
	Channel string // "protocol", "cli" or "file"
	Op      string
	Err     error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("%s channel: %s: %v", e.Channel, e.Op, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

// ValidationIssue records a malformed task entry that was dropped from a
// batch. It is a diagnostic, not an error: a batch with some invalid entries
// still yields the valid subset.
type ValidationIssue struct {
	Index  int    // position in the source list
	TaskID string // best-effort id, may be empty
	Reason string
}

func (v ValidationIssue) String() string {
	if v.TaskID == "" {
		return fmt.Sprintf("entry %d dropped: %s", v.Index, v.Reason)
	}
	return fmt.Sprintf("entry %d (id %s) dropped: %s", v.Index, v.TaskID, v.Reason)
}
