package task

import (
	"context"

	"github.com/taskglass/taskglass/models"
)

// Counts breaks a set of tasks down by working status.
type Counts struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Todo       int `json:"todo"`
	Blocked    int `json:"blocked"`
}

func (c *Counts) add(t models.Task) {
	c.Total++
	switch t.Status {
	case models.StatusCompleted:
		c.Completed++
	case models.StatusInProgress:
		c.InProgress++
	case models.StatusTodo:
		c.Todo++
	case models.StatusBlocked:
		c.Blocked++
	}
}

// Progress summarizes the current tag: main tasks only, and every item
// including nested subtasks.
type Progress struct {
	MainTasks Counts `json:"mainTasks"`
	AllItems  Counts `json:"allItems"`
}

// GetTaskProgress computes completion counts over the current tag.
func (s *Service) GetTaskProgress(ctx context.Context) (Progress, error) {
	tasks, err := s.GetTasks(ctx, "")
	if err != nil {
		return Progress{}, err
	}
	var p Progress
	for _, t := range tasks {
		p.MainTasks.add(t)
	}
	countAll(tasks, &p.AllItems)
	return p, nil
}

func countAll(tasks []models.Task, c *Counts) {
	for _, t := range tasks {
		c.add(t)
		countAll(t.Subtasks, c)
	}
}
