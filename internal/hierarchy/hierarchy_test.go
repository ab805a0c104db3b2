package hierarchy

import (
	"testing"

	"github.com/taskglass/taskglass/models"
)

func flat(ids ...string) []models.Task {
	tasks := make([]models.Task, 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, models.NewTask(id, "Task "+id))
	}
	return tasks
}

func TestBuildNestsDottedIDs(t *testing.T) {
	got := Build(flat("1", "1.1", "1.2", "1.2.1", "2"))

	if len(got) != 2 {
		t.Fatalf("roots = %d, want 2", len(got))
	}
	one := got[0]
	if one.ID != "1" || len(one.Subtasks) != 2 {
		t.Fatalf("task 1 subtasks = %d, want 2", len(one.Subtasks))
	}
	if one.Subtasks[0].ID != "1.1" || one.Subtasks[1].ID != "1.2" {
		t.Errorf("subtask order = %s, %s", one.Subtasks[0].ID, one.Subtasks[1].ID)
	}
	deep := one.Subtasks[1].Subtasks
	if len(deep) != 1 || deep[0].ID != "1.2.1" {
		t.Fatalf("task 1.2 subtasks = %+v, want [1.2.1]", deep)
	}
	if deep[0].ParentID != "1.2" {
		t.Errorf("ParentID = %q, want 1.2", deep[0].ParentID)
	}
}

func TestBuildIsOrderIndependent(t *testing.T) {
	a := Build(flat("1", "1.1", "1.2", "1.2.1", "2"))
	b := Build(flat("1.2.1", "2", "1.2", "1", "1.1"))

	if len(a) != len(b) {
		t.Fatalf("root counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || len(a[i].Subtasks) != len(b[i].Subtasks) {
			t.Errorf("root %d differs between input orders", i)
		}
	}
}

func TestBuildKeepsOrphansAsRoots(t *testing.T) {
	got := Build(flat("1", "2.5"))
	if len(got) != 2 {
		t.Fatalf("roots = %d, want 2 (orphan must survive)", len(got))
	}
	if got[1].ID != "2.5" {
		t.Errorf("orphan id = %q, want 2.5", got[1].ID)
	}
	if got[1].ParentID != "" {
		t.Errorf("orphan ParentID = %q, want empty", got[1].ParentID)
	}
}

func TestBuildSkipsPreStructuredLists(t *testing.T) {
	parent := models.NewTask("1", "P")
	parent.Subtasks = []models.Task{models.NewTask("1.1", "S")}
	in := []models.Task{parent, models.NewTask("1.1", "Dup flat copy")}

	got := Build(in)
	// Any existing subtasks mean the list passes through untouched, even if
	// dotted ids are also present at the top level.
	if len(got) != 2 {
		t.Fatalf("pre-structured list was rebuilt: %d roots", len(got))
	}
}

func TestBuildSkipsFlatLists(t *testing.T) {
	in := flat("3", "1", "2")
	got := Build(in)
	// No dotted ids: input order is preserved, nothing is sorted.
	for i := range in {
		if got[i].ID != in[i].ID {
			t.Errorf("undotted list reordered: %v", got)
		}
	}
}

func TestBuildNumericSiblingOrder(t *testing.T) {
	got := Build(flat("1", "1.10", "1.2", "1.9"))
	subs := got[0].Subtasks
	want := []string{"1.2", "1.9", "1.10"}
	for i := range want {
		if subs[i].ID != want[i] {
			t.Fatalf("sibling order = %v, want %v", ids(subs), want)
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	if got := Build(nil); len(got) != 0 {
		t.Errorf("Build(nil) = %v, want empty", got)
	}
}

func ids(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
