package channel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/taskglass/taskglass/models"
	"github.com/taskglass/taskglass/store"
	"github.com/taskglass/taskglass/types"
)

// fakeChannel is a scriptable TaskChannel that records every call into a
// shared log, so fallback ordering can be asserted.
type fakeChannel struct {
	name      string
	available bool
	version   string
	failWith  error
	tasks     []models.Task
	log       *[]string
}

func (f *fakeChannel) record(op string) {
	*f.log = append(*f.log, f.name+":"+op)
}

func (f *fakeChannel) Name() string                       { return f.name }
func (f *fakeChannel) Available(ctx context.Context) bool { return f.available }

func (f *fakeChannel) Version(ctx context.Context) (string, error) {
	return f.version, nil
}

func (f *fakeChannel) GetTasks(ctx context.Context, tag string) ([]models.Task, error) {
	f.record("get-tasks")
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.tasks, nil
}

func (f *fakeChannel) SetStatus(ctx context.Context, id string, status models.TaskStatus, tag string) error {
	f.record("set-status")
	return f.failWith
}

func (f *fakeChannel) AddTask(ctx context.Context, task models.Task, tag string) error {
	f.record("add-task")
	return f.failWith
}

func (f *fakeChannel) ExpandTask(ctx context.Context, id string, force bool, tag string) error {
	f.record("expand-task")
	return f.failWith
}

func testFileStore(t *testing.T, contents string) *store.FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	if contents != "" {
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return store.NewFileStore(path)
}

func newTestOrchestrator(t *testing.T, protocol, cli *fakeChannel, contents string, preferReliability bool) (*Orchestrator, *store.FileStore) {
	t.Helper()
	files := testFileStore(t, contents)
	var pp, cp versionProber = &fakeProber{}, &fakeProber{}
	if protocol != nil {
		pp = protocol
	}
	if cli != nil {
		cp = cli
	}
	gate := NewVersionGate(cp, pp, time.Hour, DefaultMinorTolerance)
	var p, c TaskChannel
	if protocol != nil {
		p = protocol
	}
	if cli != nil {
		c = cli
	}
	return NewOrchestrator(p, c, files, gate, preferReliability), files
}

func TestSetStatusFallsBackProtocolToCLI(t *testing.T) {
	var log []string
	protocol := &fakeChannel{name: NameProtocol, available: true, failWith: errors.New("server hung up"), log: &log}
	cli := &fakeChannel{name: NameCLI, available: true, log: &log}
	orch, _ := newTestOrchestrator(t, protocol, cli, `{"tasks":[{"id":"1","title":"A"}]}`, false)

	if err := orch.SetStatus(context.Background(), "1", models.StatusCompleted, "master"); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}

	want := []string{"protocol:set-status", "cli:set-status"}
	if strings.Join(log, ",") != strings.Join(want, ",") {
		t.Errorf("call order = %v, want %v (each channel exactly once)", log, want)
	}
}

func TestSetStatusFallsThroughToFile(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	protocol := &fakeChannel{name: NameProtocol, available: true, failWith: boom, log: &log}
	cli := &fakeChannel{name: NameCLI, available: true, failWith: boom, log: &log}
	orch, files := newTestOrchestrator(t, protocol, cli, `{"tasks":[{"id":"1","title":"A","status":"pending"}]}`, false)

	if err := orch.SetStatus(context.Background(), "1", models.StatusCompleted, "master"); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}

	data, _ := os.ReadFile(files.Path())
	if !strings.Contains(string(data), `"done"`) {
		t.Error("file fallback did not persist the status change")
	}
}

func TestNotFoundAbortsFallbackChain(t *testing.T) {
	var log []string
	protocol := &fakeChannel{
		name: NameProtocol, available: true, log: &log,
		failWith: &types.NotFoundError{Kind: "task", ID: "42"},
	}
	cli := &fakeChannel{name: NameCLI, available: true, log: &log}
	orch, _ := newTestOrchestrator(t, protocol, cli, "", false)

	err := orch.SetStatus(context.Background(), "42", models.StatusTodo, "master")
	var notFound *types.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
	// The target is missing, not the channel: no further attempts.
	if len(log) != 1 {
		t.Errorf("calls after not-found = %v, want just the first attempt", log)
	}
}

func TestExhaustedChannelsJoinFailures(t *testing.T) {
	var log []string
	protocol := &fakeChannel{name: NameProtocol, available: true, failWith: errors.New("protocol down"), log: &log}
	cli := &fakeChannel{name: NameCLI, available: true, failWith: errors.New("cli exploded"), log: &log}
	orch, _ := newTestOrchestrator(t, protocol, cli, "", false)

	err := orch.ExpandTask(context.Background(), "1", false, "master")
	if !errors.Is(err, types.ErrChannelExhausted) {
		t.Fatalf("error = %v, want ErrChannelExhausted", err)
	}
	for _, frag := range []string{"protocol down", "cli exploded"} {
		if !strings.Contains(err.Error(), frag) {
			t.Errorf("joined error %q missing %q", err, frag)
		}
	}
}

func TestGetTasksPrefersProtocol(t *testing.T) {
	var log []string
	protocol := &fakeChannel{
		name: NameProtocol, available: true, log: &log,
		tasks: []models.Task{
			models.NewTask("1", "Parent"),
			models.NewTask("1.1", "Child"),
		},
	}
	orch, _ := newTestOrchestrator(t, protocol, nil, `{"tasks":[{"id":"9","title":"stale"}]}`, false)

	got, err := orch.GetTasks(context.Background(), "master")
	if err != nil {
		t.Fatalf("GetTasks() error = %v", err)
	}
	// Hierarchy reconstruction runs on the protocol result too.
	if len(got) != 1 || len(got[0].Subtasks) != 1 || got[0].Subtasks[0].ID != "1.1" {
		t.Errorf("GetTasks() = %+v, want one root with nested 1.1", got)
	}
}

func TestGetTasksFallsBackToFile(t *testing.T) {
	var log []string
	protocol := &fakeChannel{name: NameProtocol, available: true, failWith: errors.New("down"), log: &log}
	orch, _ := newTestOrchestrator(t, protocol, nil, `{"tasks":[{"id":1,"title":"A","status":"pending"}]}`, false)

	got, err := orch.GetTasks(context.Background(), "master")
	if err != nil {
		t.Fatalf("GetTasks() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" || got[0].Status != models.StatusTodo {
		t.Errorf("GetTasks() = %+v, want sanitized file tasks", got)
	}
}

func TestGetTasksIrrecoverableReadReturnsEmptySlice(t *testing.T) {
	orch, _ := newTestOrchestrator(t, nil, nil, `{"not":"a task doc"}`, false)

	got, err := orch.GetTasks(context.Background(), "master")
	if err == nil {
		t.Fatal("expected a format error")
	}
	if got == nil || len(got) != 0 {
		t.Errorf("GetTasks() = %v, want empty non-nil slice alongside the error", got)
	}
}

func TestPreferReliabilitySkipsDistrustedProtocol(t *testing.T) {
	var log []string
	protocol := &fakeChannel{name: NameProtocol, available: true, version: "2.0.0", log: &log}
	cli := &fakeChannel{name: NameCLI, available: true, version: "1.0.0", log: &log}
	orch, _ := newTestOrchestrator(t, protocol, cli, `{"tasks":[{"id":"1","title":"A"}]}`, true)

	if err := orch.SetStatus(context.Background(), "1", models.StatusCompleted, "master"); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if strings.Join(log, ",") != "cli:set-status" {
		t.Errorf("calls = %v, want protocol skipped and cli used once", log)
	}
}

func TestAddTaskReportsFileAssignedID(t *testing.T) {
	orch, _ := newTestOrchestrator(t, nil, nil, `{"tasks":[{"id":"2","title":"A"}]}`, false)

	id, err := orch.AddTask(context.Background(), models.NewTask("", "New"), "master")
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if id != "3" {
		t.Errorf("assigned id = %q, want 3", id)
	}
}
