// Package task exposes the resolved task model to consumers: canonical
// trees, mutations, tag management and version compatibility. Everything
// here goes through the channel orchestrator; nothing caches task lists
// across calls.
package task

import (
	"context"
	"strings"

	"github.com/taskglass/taskglass/internal/channel"
	"github.com/taskglass/taskglass/internal/notify"
	"github.com/taskglass/taskglass/internal/tag"
	"github.com/taskglass/taskglass/models"
	"github.com/taskglass/taskglass/store"
	"github.com/taskglass/taskglass/types"
)

// Service is the façade consumed by the presentation layer. Collaborators
// are injected at construction.
type Service struct {
	orch     *channel.Orchestrator
	tags     *tag.Store
	notifier *notify.Notifier // optional
}

// NewService wires the façade. The notifier may be nil when no presentation
// layer is listening.
func NewService(orch *channel.Orchestrator, tags *tag.Store, notifier *notify.Notifier) *Service {
	return &Service{orch: orch, tags: tags, notifier: notifier}
}

// resolveTag maps an empty tag to the session's current one.
func (s *Service) resolveTag(tagName string) string {
	if tagName != "" {
		return tagName
	}
	return s.tags.Current()
}

func (s *Service) refresh() {
	if s.notifier != nil {
		s.notifier.Request()
	}
}

// GetTasks returns the canonical task tree for a tag (the current one when
// tagName is empty): root tasks with nested subtasks.
func (s *Service) GetTasks(ctx context.Context, tagName string) ([]models.Task, error) {
	return s.orch.GetTasks(ctx, s.resolveTag(tagName))
}

// GetTaskDetails looks up one task, optionally narrowing to a subtask.
// Lookup misses return nil without error; absence is an answer here, not a
// failure.
func (s *Service) GetTaskDetails(ctx context.Context, mainID, subtaskID string) (*models.Task, error) {
	tasks, err := s.GetTasks(ctx, "")
	if err != nil {
		return nil, err
	}
	main := findByID(tasks, mainID)
	if main == nil {
		return nil, nil
	}
	if subtaskID == "" {
		return main, nil
	}
	sub := findByID(main.Subtasks, qualifySubtaskID(mainID, subtaskID))
	if sub == nil {
		// Bare subtask ids ("2" under parent "1") appear in some documents.
		sub = findByID(main.Subtasks, subtaskID)
	}
	return sub, nil
}

func findByID(tasks []models.Task, id string) *models.Task {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
		if found := findByID(tasks[i].Subtasks, id); found != nil {
			return found
		}
	}
	return nil
}

// qualifySubtaskID joins a parent id and a possibly-bare subtask id into the
// dotted form ("1" + "2" -> "1.2"). Already-dotted ids pass through.
func qualifySubtaskID(parentID, subtaskID string) string {
	if strings.HasPrefix(subtaskID, parentID+".") {
		return subtaskID
	}
	return parentID + "." + subtaskID
}

// SetTaskStatus updates one task's status in the current tag.
func (s *Service) SetTaskStatus(ctx context.Context, id string, status models.TaskStatus) error {
	if err := s.orch.SetStatus(ctx, id, status, s.resolveTag("")); err != nil {
		return err
	}
	s.refresh()
	return nil
}

// SetSubtaskStatus updates a subtask's status, addressing it by parent and
// subtask id.
func (s *Service) SetSubtaskStatus(ctx context.Context, parentID, subtaskID string, status models.TaskStatus) error {
	return s.SetTaskStatus(ctx, qualifySubtaskID(parentID, subtaskID), status)
}

// UpdateTask applies a partial update to a task in the current tag.
func (s *Service) UpdateTask(ctx context.Context, id string, updates store.TaskUpdates) error {
	if err := s.orch.UpdateTask(ctx, id, updates, s.resolveTag("")); err != nil {
		return err
	}
	s.refresh()
	return nil
}

// AddTask creates a task in the current tag and returns its id when one was
// assigned locally ("" when a channel assigned it server-side).
func (s *Service) AddTask(ctx context.Context, task models.Task) (string, error) {
	id, err := s.orch.AddTask(ctx, task, s.resolveTag(""))
	if err != nil {
		return "", err
	}
	s.refresh()
	return id, nil
}

// AddSubtask creates a subtask under parentID and returns its assigned id.
func (s *Service) AddSubtask(ctx context.Context, parentID string, task models.Task) (string, error) {
	id, err := s.orch.AddSubtask(ctx, parentID, task, s.resolveTag(""))
	if err != nil {
		return "", err
	}
	s.refresh()
	return id, nil
}

// RemoveSubtask removes a direct subtask of parentID.
func (s *Service) RemoveSubtask(ctx context.Context, parentID, subtaskID string) error {
	if err := s.orch.RemoveSubtask(ctx, parentID, subtaskID, s.resolveTag("")); err != nil {
		return err
	}
	s.refresh()
	return nil
}

// DeleteTask removes a task and all of its descendants. Dependency
// references other tasks hold toward the deleted id stay behind, matching
// the backing tool.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if err := s.orch.DeleteTask(ctx, id, s.resolveTag("")); err != nil {
		return err
	}
	s.refresh()
	return nil
}

// ExpandTask asks the backing tool to break a task into subtasks.
func (s *Service) ExpandTask(ctx context.Context, id string, force bool) error {
	if err := s.orch.ExpandTask(ctx, id, force, s.resolveTag("")); err != nil {
		return err
	}
	s.refresh()
	return nil
}

// NextTask returns the first task that is ready to work on: status todo with
// every dependency completed, higher priorities first. Nil when nothing
// qualifies.
func (s *Service) NextTask(ctx context.Context) (*models.Task, error) {
	tasks, err := s.GetTasks(ctx, "")
	if err != nil {
		return nil, err
	}
	done := map[string]bool{}
	collectCompleted(tasks, done)

	var best *models.Task
	for i := range tasks {
		t := &tasks[i]
		if t.Status != models.StatusTodo || !depsSatisfied(t, done) {
			continue
		}
		if best == nil || priorityRank(t.Priority) > priorityRank(best.Priority) {
			best = t
		}
	}
	return best, nil
}

func collectCompleted(tasks []models.Task, done map[string]bool) {
	for _, t := range tasks {
		if t.Status == models.StatusCompleted {
			done[t.ID] = true
		}
		collectCompleted(t.Subtasks, done)
	}
}

func depsSatisfied(t *models.Task, done map[string]bool) bool {
	for _, dep := range t.Dependencies {
		if !done[dep] {
			return false
		}
	}
	return true
}

func priorityRank(p models.TaskPriority) int {
	switch p {
	case models.PriorityCritical:
		return 3
	case models.PriorityHigh:
		return 2
	case models.PriorityMedium, "":
		return 1
	}
	return 0
}

// CheckVersionCompatibility returns the gate's current verdict.
func (s *Service) CheckVersionCompatibility(ctx context.Context) channel.CompatResult {
	return s.orch.Gate().Check(ctx)
}

// TagContext reports the active tag and what else the document offers.
func (s *Service) TagContext(ctx context.Context) (tag.Context, error) {
	doc, err := s.orch.Files().Load(s.tags.Current())
	if err != nil {
		return tag.Context{CurrentTag: s.tags.Current(), AvailableTags: []string{store.MasterTag}}, err
	}
	return tag.Context{
		CurrentTag:     s.tags.Current(),
		AvailableTags:  doc.TagNames(),
		IsTaggedFormat: doc.Tagged(),
	}, nil
}

// SwitchTag makes a different tag current. The refresh bypasses debouncing;
// a tag switch must be visible instantly.
func (s *Service) SwitchTag(ctx context.Context, name string) error {
	tc, err := s.TagContext(ctx)
	if err != nil {
		return err
	}
	if !containsTag(tc.AvailableTags, name) {
		return &types.NotFoundError{Kind: "tag", ID: name}
	}
	if err := s.tags.SetCurrent(name); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.Immediate()
	}
	return nil
}

// CreateTag adds a new empty tag to the document.
func (s *Service) CreateTag(ctx context.Context, name string) error {
	err := s.orch.Files().Mutate(store.MasterTag, func(doc *store.Document) error {
		return doc.CreateTag(name)
	})
	if err != nil {
		return err
	}
	s.refresh()
	return nil
}

// DeleteTag removes a tag and its tasks. Deleting master is refused. When
// the deleted tag was current, the session falls back to master.
func (s *Service) DeleteTag(ctx context.Context, name string) error {
	err := s.orch.Files().Mutate(store.MasterTag, func(doc *store.Document) error {
		return doc.DeleteTag(name)
	})
	if err != nil {
		return err
	}
	if s.tags.Current() == name {
		_ = s.tags.SetCurrent(store.MasterTag)
	}
	s.refresh()
	return nil
}

func containsTag(tags []string, name string) bool {
	for _, t := range tags {
		if t == name {
			return true
		}
	}
	return false
}
