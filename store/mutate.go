package store

import (
	"fmt"

	"github.com/taskglass/taskglass/models"
	"github.com/taskglass/taskglass/types"
)

// TaskUpdates carries the mutable fields of an update operation. Nil pointers
// leave the field untouched.
type TaskUpdates struct {
	Title        *string
	Description  *string
	Details      *string
	TestStrategy *string
	Priority     *models.TaskPriority
	Category     *string
	Dependencies *[]string
}

// locate finds the mutation target for id. Main tasks are searched by exact
// id first so a main task always wins over a subtask that happens to carry
// the same id value; only then are subtask trees searched recursively. The
// returned parent is nil for main tasks.
func locate(nodes []*TaskNode, id string) (node, parent *TaskNode) {
	for _, n := range nodes {
		if n.ID() == id {
			return n, nil
		}
	}
	for _, n := range nodes {
		if found, p := locateSub(n, id); found != nil {
			return found, p
		}
	}
	return nil, nil
}

func locateSub(parent *TaskNode, id string) (node, owner *TaskNode) {
	for _, sub := range parent.Subtasks() {
		if sub.ID() == id {
			return sub, parent
		}
		if found, p := locateSub(sub, id); found != nil {
			return found, p
		}
	}
	return nil, nil
}

// SetStatus updates a task's status in place, refreshing its updated
// timestamp and, for subtasks, the parent's as well.
func (d *Document) SetStatus(id string, status models.TaskStatus) error {
	node, parent := locate(d.Tasks, id)
	if node == nil {
		return &types.NotFoundError{Kind: "task", ID: id}
	}
	node.SetStatus(status)
	node.Touch()
	if parent != nil {
		parent.Touch()
	}
	return nil
}

// Update applies a partial update to a task.
func (d *Document) Update(id string, updates TaskUpdates) error {
	node, parent := locate(d.Tasks, id)
	if node == nil {
		return &types.NotFoundError{Kind: "task", ID: id}
	}
	if updates.Title != nil {
		node.SetString("title", *updates.Title)
	}
	if updates.Description != nil {
		node.SetString("description", *updates.Description)
	}
	if updates.Details != nil {
		node.SetString("details", *updates.Details)
	}
	if updates.TestStrategy != nil {
		node.SetString("testStrategy", *updates.TestStrategy)
	}
	if updates.Priority != nil {
		node.SetString("priority", string(*updates.Priority))
	}
	if updates.Category != nil {
		node.SetString("category", *updates.Category)
	}
	if updates.Dependencies != nil {
		if err := node.Set("dependencies", *updates.Dependencies); err != nil {
			return err
		}
	}
	node.Touch()
	if parent != nil {
		parent.Touch()
	}
	return nil
}

// AddTask appends a new main task, assigning the next integer id when the
// task carries none. The assigned id is returned.
func (d *Document) AddTask(task models.Task) (string, error) {
	if task.ID == "" {
		task.ID = nextRootID(d.Tasks)
	} else if existing, _ := locate(d.Tasks, task.ID); existing != nil {
		return "", fmt.Errorf("task with id %q already exists", task.ID)
	}
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if err := task.Validate(); err != nil {
		return "", err
	}
	d.Tasks = append(d.Tasks, NewTaskNode(task))
	return task.ID, nil
}

// AddSubtask appends a new subtask under parentID, assigning the next dotted
// id. The parent's updated timestamp is refreshed.
func (d *Document) AddSubtask(parentID string, task models.Task) (string, error) {
	parent, _ := locate(d.Tasks, parentID)
	if parent == nil {
		return "", &types.NotFoundError{Kind: "task", ID: parentID}
	}
	if task.ID == "" {
		task.ID = nextSubtaskID(parent)
	}
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if err := task.Validate(); err != nil {
		return "", err
	}
	parent.AddSubtask(NewTaskNode(task))
	parent.Touch()
	return task.ID, nil
}

// RemoveSubtask removes a direct subtask of parentID. Removing a parent
// removes its whole subtree, since subtasks are owned by their parent.
func (d *Document) RemoveSubtask(parentID, subtaskID string) error {
	parent, _ := locate(d.Tasks, parentID)
	if parent == nil {
		return &types.NotFoundError{Kind: "task", ID: parentID}
	}
	if !parent.RemoveSubtask(subtaskID) {
		return &types.NotFoundError{Kind: "subtask", ID: subtaskID}
	}
	parent.Touch()
	return nil
}

// DeleteTask removes a task and, for parents, all of its descendants.
// Dependency references held by other tasks are left dangling on purpose;
// the backing tool behaves the same way and cleaning them up here would make
// our writes diverge from its own.
func (d *Document) DeleteTask(id string) error {
	for i, n := range d.Tasks {
		if n.ID() == id {
			d.Tasks = append(d.Tasks[:i], d.Tasks[i+1:]...)
			return nil
		}
	}
	// Not a main task; try it as a nested subtask.
	node, parent := locate(d.Tasks, id)
	if node == nil || parent == nil {
		return &types.NotFoundError{Kind: "task", ID: id}
	}
	if !parent.RemoveSubtask(id) {
		return &types.NotFoundError{Kind: "task", ID: id}
	}
	parent.Touch()
	return nil
}
