package store

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/taskglass/taskglass/models"
)

// TaskNode is one raw task in a document, decoded just far enough to be
// mutable. Fields we never touch stay as raw JSON so write-back cannot lose
// or reshape them; subtasks are decoded recursively because mutations have to
// reach them.
type TaskNode struct {
	fields map[string]json.RawMessage
	subs   []*TaskNode
	// hasSubs remembers whether the source carried a "subtasks" key at all,
	// so write-back does not invent an empty array on tasks that had none.
	hasSubs bool
}

// decodeTaskArray decodes a JSON array of task objects into nodes.
// Non-object entries are dropped rather than failing the whole document.
func decodeTaskArray(data json.RawMessage) ([]*TaskNode, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	nodes := make([]*TaskNode, 0, len(raw))
	for _, item := range raw {
		node, err := decodeTaskNode(item)
		if err != nil {
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func decodeTaskNode(data json.RawMessage) (*TaskNode, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	node := &TaskNode{fields: fields}
	if raw, ok := fields["subtasks"]; ok {
		node.hasSubs = true
		delete(fields, "subtasks")
		if isArray(raw) {
			subs, err := decodeTaskArray(raw)
			if err == nil {
				node.subs = subs
			}
		}
	}
	return node, nil
}

// marshalTaskArray re-encodes nodes, subtasks included, as a JSON array.
func marshalTaskArray(nodes []*TaskNode) (json.RawMessage, error) {
	items := make([]json.RawMessage, 0, len(nodes))
	for _, n := range nodes {
		item, err := n.marshal()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return json.Marshal(items)
}

func (n *TaskNode) marshal() (json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(n.fields)+1)
	for k, v := range n.fields {
		out[k] = v
	}
	if n.hasSubs || len(n.subs) > 0 {
		subs, err := marshalTaskArray(n.subs)
		if err != nil {
			return nil, err
		}
		out["subtasks"] = subs
	}
	return json.Marshal(out)
}

// ID returns the task id coerced to a string. Numeric ids ("id": 1) come
// back as their decimal text; a missing or null id yields "".
func (n *TaskNode) ID() string {
	raw, ok := n.fields["id"]
	if !ok {
		return ""
	}
	return coerceRawID(raw)
}

func coerceRawID(raw json.RawMessage) string {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 || string(t) == "null" {
		return ""
	}
	if t[0] == '"' {
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return ""
		}
		return s
	}
	// Bare JSON number: its text is already the id.
	if (t[0] >= '0' && t[0] <= '9') || t[0] == '-' {
		return string(t)
	}
	return ""
}

// Title returns the task title, or "" when absent or not a string.
func (n *TaskNode) Title() string {
	return n.stringField("title")
}

// StatusRaw returns the stored status token without normalization.
func (n *TaskNode) StatusRaw() string {
	return n.stringField("status")
}

func (n *TaskNode) stringField(key string) string {
	raw, ok := n.fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Subtasks returns the node's children. The slice is live: appending through
// AddSubtask or removing through RemoveSubtask is reflected in write-back.
func (n *TaskNode) Subtasks() []*TaskNode {
	return n.subs
}

// SetString sets a string-valued field.
func (n *TaskNode) SetString(key, value string) {
	raw, _ := json.Marshal(value)
	n.fields[key] = raw
}

// Set marshals any value into a field.
func (n *TaskNode) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	n.fields[key] = raw
	return nil
}

// SetStatus writes the backing system's token for a canonical status.
func (n *TaskNode) SetStatus(status models.TaskStatus) {
	n.SetString("status", models.DenormalizeStatus(status))
}

// Touch refreshes the updated timestamp.
func (n *TaskNode) Touch() {
	n.SetString("updated", models.Timestamp())
}

// AddSubtask appends a child node.
func (n *TaskNode) AddSubtask(child *TaskNode) {
	n.hasSubs = true
	n.subs = append(n.subs, child)
}

// RemoveSubtask removes the direct child with the given id. The id may be
// fully dotted ("3.2") or the bare trailing segment ("2").
func (n *TaskNode) RemoveSubtask(id string) bool {
	for i, sub := range n.subs {
		sid := sub.ID()
		if sid == id || sid == n.ID()+"."+id || strings.TrimPrefix(sid, n.ID()+".") == id {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			return true
		}
	}
	return false
}

// NewTaskNode builds a node from a canonical task. The status is written in
// the backing system's vocabulary.
func NewTaskNode(t models.Task) *TaskNode {
	n := &TaskNode{fields: map[string]json.RawMessage{}}
	n.SetString("id", t.ID)
	n.SetString("title", t.Title)
	n.SetString("status", models.DenormalizeStatus(t.Status))
	if t.Description != "" {
		n.SetString("description", t.Description)
	}
	if t.Details != "" {
		n.SetString("details", t.Details)
	}
	if t.TestStrategy != "" {
		n.SetString("testStrategy", t.TestStrategy)
	}
	if t.Priority != "" {
		n.SetString("priority", string(t.Priority))
	}
	if t.Category != "" {
		n.SetString("category", t.Category)
	}
	if len(t.Dependencies) > 0 {
		_ = n.Set("dependencies", t.Dependencies)
	}
	created := t.Created
	if created == "" {
		created = models.Timestamp()
	}
	n.SetString("created", created)
	n.SetString("updated", created)
	for _, sub := range t.Subtasks {
		n.AddSubtask(NewTaskNode(sub))
	}
	return n
}

// nextRootID returns the next integer id for a new top-level task: one past
// the highest numeric root id already present.
func nextRootID(nodes []*TaskNode) string {
	max := 0
	for _, n := range nodes {
		if v, err := strconv.Atoi(n.ID()); err == nil && v > max {
			max = v
		}
	}
	return strconv.Itoa(max + 1)
}

// nextSubtaskID returns an id for a new child of parent: parent.id joined
// with the child's 1-based index, bumped past any collision.
func nextSubtaskID(parent *TaskNode) string {
	taken := make(map[string]bool, len(parent.subs))
	for _, sub := range parent.subs {
		taken[sub.ID()] = true
	}
	for i := len(parent.subs) + 1; ; i++ {
		id := parent.ID() + "." + strconv.Itoa(i)
		if !taken[id] {
			return id
		}
	}
}
