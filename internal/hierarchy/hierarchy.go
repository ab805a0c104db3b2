// Package hierarchy reconstructs parent/child task trees from flat lists
// whose ids encode ancestry in dotted notation ("1", "1.2", "1.2.3").
package hierarchy

import (
	"sort"
	"strconv"
	"strings"

	"github.com/taskglass/taskglass/models"
)

// Build turns a flat task list into root tasks with nested subtasks.
//
// Two inputs pass through untouched: lists where any task already carries
// subtasks (the data is pre-structured, re-deriving it would double-nest)
// and lists without a single dotted id (already flat and unambiguous).
//
// Otherwise every dotted task is attached under the task whose id is
// everything before its last dot segment. A dotted task whose parent is
// absent stays in the result as a root task; dropping data is never an
// acceptable outcome of reconstruction. Output order is deterministic for a
// given input set regardless of input order.
func Build(tasks []models.Task) []models.Task {
	if len(tasks) == 0 {
		return []models.Task{}
	}
	needsBuild := false
	for _, t := range tasks {
		if len(t.Subtasks) > 0 {
			return tasks
		}
		if strings.Contains(t.ID, ".") {
			needsBuild = true
		}
	}
	if !needsBuild {
		return tasks
	}

	byID := make(map[string]*models.Task, len(tasks))
	order := make([]string, 0, len(tasks))
	for i := range tasks {
		t := tasks[i]
		t.Subtasks = nil
		byID[t.ID] = &t
		order = append(order, t.ID)
	}

	// Sort by nesting depth first and natural numeric order second. The sort
	// is a total order, so tree structure and sibling order cannot depend on
	// input order.
	sort.Slice(order, func(i, j int) bool {
		di, dj := strings.Count(order[i], "."), strings.Count(order[j], ".")
		if di != dj {
			return di < dj
		}
		return naturalLess(order[i], order[j])
	})

	// Attach deepest levels first so that by the time a task is copied into
	// its own parent, its Subtasks slice is already complete. Within one
	// depth the sorted order keeps sibling attachment deterministic.
	maxDepth := 0
	for _, id := range order {
		if d := strings.Count(id, "."); d > maxDepth {
			maxDepth = d
		}
	}
	attached := make(map[string]bool, len(tasks))
	for depth := maxDepth; depth >= 1; depth-- {
		for _, id := range order {
			if strings.Count(id, ".") != depth {
				continue
			}
			parentID := models.ParentOf(id)
			parent, ok := byID[parentID]
			if !ok {
				continue // orphan, stays a root below
			}
			child := byID[id]
			child.ParentID = parentID
			parent.Subtasks = append(parent.Subtasks, *child)
			attached[id] = true
		}
	}

	// Collect roots: undotted ids plus orphans, in sorted order.
	roots := make([]models.Task, 0, len(tasks))
	for _, id := range order {
		if attached[id] {
			continue
		}
		roots = append(roots, *byID[id])
	}
	return roots
}

// naturalLess compares dotted ids segment by segment, numerically where both
// segments are numbers ("2" < "10") and lexically otherwise.
func naturalLess(a, b string) bool {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		ai, errA := strconv.Atoi(as[i])
		bi, errB := strconv.Atoi(bs[i])
		if errA == nil && errB == nil {
			return ai < bi
		}
		return as[i] < bs[i]
	}
	return len(as) < len(bs)
}
