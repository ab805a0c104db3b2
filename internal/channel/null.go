package channel

import (
	"context"

	"github.com/taskglass/taskglass/models"
	"github.com/taskglass/taskglass/types"
)

// NoProtocol is the null protocol channel used when the protocol server is
// disabled in configuration. Every call reports unsupported; the version
// gate then treats the protocol version as unknown and fails open.
type NoProtocol struct{}

func (NoProtocol) Name() string { return NameProtocol }

func (NoProtocol) Available(ctx context.Context) bool { return false }

func (NoProtocol) Version(ctx context.Context) (string, error) {
	return "", &types.ChannelError{Channel: NameProtocol, Op: "version", Err: types.ErrUnsupported}
}

func (NoProtocol) GetTasks(ctx context.Context, tag string) ([]models.Task, error) {
	return nil, &types.ChannelError{Channel: NameProtocol, Op: "get-tasks", Err: types.ErrUnsupported}
}

func (NoProtocol) SetStatus(ctx context.Context, id string, status models.TaskStatus, tag string) error {
	return &types.ChannelError{Channel: NameProtocol, Op: "set-status", Err: types.ErrUnsupported}
}

func (NoProtocol) AddTask(ctx context.Context, task models.Task, tag string) error {
	return &types.ChannelError{Channel: NameProtocol, Op: "add-task", Err: types.ErrUnsupported}
}

func (NoProtocol) ExpandTask(ctx context.Context, id string, force bool, tag string) error {
	return &types.ChannelError{Channel: NameProtocol, Op: "expand-task", Err: types.ErrUnsupported}
}
