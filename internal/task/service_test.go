package task

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/taskglass/taskglass/internal/channel"
	"github.com/taskglass/taskglass/internal/notify"
	"github.com/taskglass/taskglass/internal/tag"
	"github.com/taskglass/taskglass/models"
	"github.com/taskglass/taskglass/store"
	"github.com/taskglass/taskglass/types"
)

// newFileOnlyService builds a service whose protocol channel is absent and
// whose CLI binary does not exist, so every operation lands in the document.
func newFileOnlyService(t *testing.T, contents string, notifier *notify.Notifier) (*Service, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	if contents != "" {
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files := store.NewFileStore(path)
	cli := channel.NewCLIChannel("taskglass-test-no-such-binary", time.Second, time.Second)
	gate := channel.NewVersionGate(cli, channel.NoProtocol{}, time.Hour, 0)
	orch := channel.NewOrchestrator(nil, cli, files, gate, true)
	tags := tag.NewStore(afero.NewMemMapFs(), "state.json")
	return NewService(orch, tags, notifier), path
}

func TestGetTasksNormalizesLegacyDocument(t *testing.T) {
	svc, _ := newFileOnlyService(t, `{"tasks":[{"id":1,"title":"A","status":"pending"}]}`, nil)

	tasks, err := svc.GetTasks(context.Background(), "")
	if err != nil {
		t.Fatalf("GetTasks() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(tasks))
	}
	got := tasks[0]
	if got.ID != "1" || got.Title != "A" || got.Status != models.StatusTodo {
		t.Errorf("task = %+v, want id \"1\" title A status todo", got)
	}
}

func TestGetTasksRebuildsHierarchy(t *testing.T) {
	svc, _ := newFileOnlyService(t, `{"tasks":[
		{"id":"1","title":"P"},{"id":"1.1","title":"C"},{"id":"2.5","title":"Orphan"}
	]}`, nil)

	tasks, err := svc.GetTasks(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 {
		t.Fatalf("roots = %d, want 2", len(tasks))
	}
	if len(tasks[0].Subtasks) != 1 || tasks[0].Subtasks[0].ID != "1.1" {
		t.Error("dotted child not nested under parent")
	}
	if tasks[1].ID != "2.5" {
		t.Error("orphan dropped from result")
	}
}

func TestSetTaskStatusPersistsBackingVocabulary(t *testing.T) {
	svc, path := newFileOnlyService(t, `{"tasks":[{"id":"1","title":"A","status":"pending"}]}`, nil)

	if err := svc.SetTaskStatus(context.Background(), "1", models.StatusCompleted); err != nil {
		t.Fatalf("SetTaskStatus() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"done"`) {
		t.Errorf("file should store done, got:\n%s", data)
	}
}

func TestSetSubtaskStatusQualifiesBareID(t *testing.T) {
	svc, path := newFileOnlyService(t, `{"tasks":[{"id":"1","title":"P","subtasks":[{"id":"1.2","title":"S","status":"pending"}]}]}`, nil)

	if err := svc.SetSubtaskStatus(context.Background(), "1", "2", models.StatusInProgress); err != nil {
		t.Fatalf("SetSubtaskStatus() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"in-progress"`) {
		t.Error("subtask status change not persisted")
	}
}

func TestGetTaskDetails(t *testing.T) {
	svc, _ := newFileOnlyService(t, `{"tasks":[{"id":"1","title":"P","subtasks":[{"id":"1.2","title":"S"}]}]}`, nil)
	ctx := context.Background()

	main, err := svc.GetTaskDetails(ctx, "1", "")
	if err != nil || main == nil || main.Title != "P" {
		t.Fatalf("main lookup = %+v, %v", main, err)
	}

	sub, err := svc.GetTaskDetails(ctx, "1", "2")
	if err != nil || sub == nil || sub.ID != "1.2" {
		t.Fatalf("bare subtask lookup = %+v, %v", sub, err)
	}

	sub, err = svc.GetTaskDetails(ctx, "1", "1.2")
	if err != nil || sub == nil || sub.ID != "1.2" {
		t.Fatalf("dotted subtask lookup = %+v, %v", sub, err)
	}

	// Absence is an answer, not an error.
	missing, err := svc.GetTaskDetails(ctx, "99", "")
	if err != nil || missing != nil {
		t.Errorf("missing lookup = %+v, %v; want nil, nil", missing, err)
	}
}

func TestAddTaskAndSubtask(t *testing.T) {
	svc, _ := newFileOnlyService(t, `{"tasks":[{"id":"1","title":"A"}]}`, nil)
	ctx := context.Background()

	id, err := svc.AddTask(ctx, models.NewTask("", "B"))
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if id != "2" {
		t.Errorf("assigned id = %q, want 2", id)
	}

	subID, err := svc.AddSubtask(ctx, "2", models.NewTask("", "B child"))
	if err != nil {
		t.Fatalf("AddSubtask() error = %v", err)
	}
	if subID != "2.1" {
		t.Errorf("assigned subtask id = %q, want 2.1", subID)
	}

	tasks, err := svc.GetTasks(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 || len(tasks[1].Subtasks) != 1 {
		t.Errorf("tree after adds = %+v", tasks)
	}
}

func TestDeleteTaskKeepsDanglingDependencies(t *testing.T) {
	svc, path := newFileOnlyService(t, `{"tasks":[
		{"id":"1","title":"A"},
		{"id":"2","title":"B","dependencies":["1"]}
	]}`, nil)

	if err := svc.DeleteTask(context.Background(), "1"); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"dependencies"`) {
		t.Error("dependency reference to the deleted task should stay")
	}
}

func TestNextTaskHonorsDependenciesAndPriority(t *testing.T) {
	svc, _ := newFileOnlyService(t, `{"tasks":[
		{"id":"1","title":"Done","status":"done"},
		{"id":"2","title":"Blocked by 3","status":"pending","dependencies":["3"]},
		{"id":"3","title":"Ready low","status":"pending","priority":"low","dependencies":["1"]},
		{"id":"4","title":"Ready high","status":"pending","priority":"high"}
	]}`, nil)

	next, err := svc.NextTask(context.Background())
	if err != nil {
		t.Fatalf("NextTask() error = %v", err)
	}
	if next == nil || next.ID != "4" {
		t.Errorf("NextTask() = %+v, want task 4 (ready, highest priority)", next)
	}
}

func TestNextTaskNilWhenNothingReady(t *testing.T) {
	svc, _ := newFileOnlyService(t, `{"tasks":[{"id":"1","title":"A","status":"done"}]}`, nil)
	next, err := svc.NextTask(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if next != nil {
		t.Errorf("NextTask() = %+v, want nil", next)
	}
}

func TestGetTaskProgressCountsMainAndAll(t *testing.T) {
	svc, _ := newFileOnlyService(t, `{"tasks":[
		{"id":"1","title":"A","status":"done","subtasks":[
			{"id":"1.1","title":"S1","status":"done"},
			{"id":"1.2","title":"S2","status":"pending"}
		]},
		{"id":"2","title":"B","status":"in-progress"}
	]}`, nil)

	p, err := svc.GetTaskProgress(context.Background())
	if err != nil {
		t.Fatalf("GetTaskProgress() error = %v", err)
	}
	if p.MainTasks.Total != 2 || p.MainTasks.Completed != 1 || p.MainTasks.InProgress != 1 {
		t.Errorf("main counts = %+v", p.MainTasks)
	}
	if p.AllItems.Total != 4 || p.AllItems.Completed != 2 || p.AllItems.Todo != 1 {
		t.Errorf("all counts = %+v", p.AllItems)
	}
}

func TestSwitchTag(t *testing.T) {
	contents := `{"tags":{"master":{"tasks":[{"id":"1","title":"M"}]},"feature":{"tasks":[{"id":"9","title":"F"}]}}}`
	fired := make(chan struct{}, 1)
	notifier := notify.NewNotifier(time.Hour, func() { fired <- struct{}{} })
	defer notifier.Close()
	svc, _ := newFileOnlyService(t, contents, notifier)
	ctx := context.Background()

	if err := svc.SwitchTag(ctx, "feature"); err != nil {
		t.Fatalf("SwitchTag() error = %v", err)
	}
	select {
	case <-fired:
	default:
		t.Error("tag switch must trigger an immediate refresh")
	}

	tasks, err := svc.GetTasks(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].ID != "9" {
		t.Errorf("tasks after switch = %+v, want feature tag's task", tasks)
	}

	err = svc.SwitchTag(ctx, "no-such-tag")
	var notFound *types.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("SwitchTag(unknown) error = %v, want NotFoundError", err)
	}
}

func TestCreateAndDeleteTag(t *testing.T) {
	contents := `{"tags":{"master":{"tasks":[]}}}`
	svc, _ := newFileOnlyService(t, contents, nil)
	ctx := context.Background()

	if err := svc.CreateTag(ctx, "feature"); err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	if err := svc.SwitchTag(ctx, "feature"); err != nil {
		t.Fatalf("SwitchTag() error = %v", err)
	}

	// Deleting the current tag drops the session back to master.
	if err := svc.DeleteTag(ctx, "feature"); err != nil {
		t.Fatalf("DeleteTag() error = %v", err)
	}
	tc, err := svc.TagContext(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if tc.CurrentTag != store.MasterTag {
		t.Errorf("current tag after delete = %q, want master", tc.CurrentTag)
	}

	if err := svc.DeleteTag(ctx, store.MasterTag); !errors.Is(err, types.ErrProtectedTag) {
		t.Errorf("DeleteTag(master) error = %v, want ErrProtectedTag", err)
	}
}

func TestTagContextOnLegacyDocument(t *testing.T) {
	svc, _ := newFileOnlyService(t, `{"tasks":[{"id":"1","title":"A"}]}`, nil)
	tc, err := svc.TagContext(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if tc.CurrentTag != "master" || tc.IsTaggedFormat {
		t.Errorf("TagContext() = %+v, want untagged master", tc)
	}
	if len(tc.AvailableTags) != 1 || tc.AvailableTags[0] != "master" {
		t.Errorf("AvailableTags = %v, want [master]", tc.AvailableTags)
	}
}
