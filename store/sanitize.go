package store

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/taskglass/taskglass/models"
	"github.com/taskglass/taskglass/types"
)

// rawTask is the loosely-typed wire/file shape of a task before
// sanitization. Ids and dependency entries arrive as strings in some
// documents and numbers in others.
type rawTask struct {
	ID           any       `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Details      string    `json:"details"`
	TestStrategy string    `json:"testStrategy"`
	Status       string    `json:"status"`
	Priority     string    `json:"priority"`
	Category     string    `json:"category"`
	Dependencies []any     `json:"dependencies"`
	Subtasks     []rawTask `json:"subtasks"`
	Created      string    `json:"created"`
	Updated      string    `json:"updated"`
}

// SanitizeJSON decodes a raw JSON task array (as returned by the protocol
// channel) and sanitizes it. The protocol channel is not trusted to return
// well-formed data, so its results pass the exact same pipeline as
// file-sourced tasks.
func SanitizeJSON(data []byte) ([]models.Task, []types.ValidationIssue, error) {
	var raw []rawTask
	if err := json.Unmarshal(data, &raw); err != nil {
		// Some servers wrap the list in {"tasks": [...]}.
		var wrapped struct {
			Tasks []rawTask `json:"tasks"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil || wrapped.Tasks == nil {
			return nil, nil, fmt.Errorf("task payload is not a task array: %w", err)
		}
		raw = wrapped.Tasks
	}
	tasks, issues := sanitizeBatch(raw)
	return tasks, issues, nil
}

// CanonicalTasks converts the document's raw task list into sanitized
// canonical tasks: null ids dropped, ids coerced to strings, statuses
// normalized, subtasks processed recursively. Malformed entries are dropped
// with a diagnostic record; the valid remainder survives.
func (d *Document) CanonicalTasks() ([]models.Task, []types.ValidationIssue) {
	raw := make([]rawTask, 0, len(d.Tasks))
	for _, n := range d.Tasks {
		data, err := n.marshal()
		if err != nil {
			continue
		}
		var rt rawTask
		if err := json.Unmarshal(data, &rt); err != nil {
			continue
		}
		raw = append(raw, rt)
	}
	return sanitizeBatch(raw)
}

func sanitizeBatch(raw []rawTask) ([]models.Task, []types.ValidationIssue) {
	tasks := make([]models.Task, 0, len(raw))
	var issues []types.ValidationIssue
	for i, rt := range raw {
		task, issue := sanitizeOne(rt, i)
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, issues
}

func sanitizeOne(rt rawTask, index int) (models.Task, *types.ValidationIssue) {
	id, ok := coerceID(rt.ID)
	if !ok {
		return models.Task{}, &types.ValidationIssue{Index: index, Reason: "missing or null id"}
	}
	if rt.Title == "" {
		return models.Task{}, &types.ValidationIssue{Index: index, TaskID: id, Reason: "missing title"}
	}

	task := models.Task{
		ID:           id,
		Title:        rt.Title,
		Description:  rt.Description,
		Details:      rt.Details,
		TestStrategy: rt.TestStrategy,
		Status:       models.NormalizeStatus(rt.Status),
		Priority:     coercePriority(rt.Priority),
		Category:     rt.Category,
		Created:      rt.Created,
		Updated:      rt.Updated,
	}

	for _, dep := range rt.Dependencies {
		if s, ok := coerceID(dep); ok {
			task.Dependencies = append(task.Dependencies, s)
		}
	}

	// Subtasks run through the same three steps recursively. Issues from a
	// subtask batch are folded away: the parent stays valid.
	subs, _ := sanitizeBatch(rt.Subtasks)
	task.Subtasks = subs

	return task, nil
}

// coerceID turns a decoded JSON id value into its string form. Numbers keep
// their decimal text; anything else is rejected.
func coerceID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case float64:
		if id == float64(int64(id)) {
			return strconv.FormatInt(int64(id), 10), true
		}
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case json.Number:
		return id.String(), true
	default:
		return "", false
	}
}

func coercePriority(raw string) models.TaskPriority {
	switch p := models.TaskPriority(raw); p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical:
		return p
	}
	return models.PriorityMedium
}
