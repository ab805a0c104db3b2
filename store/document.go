// Package store reads and writes the backing system's task documents.
//
// The backing tool has gone through several on-disk layouts and never
// migrates old files, so all four are still in the wild: a bare task array, a
// legacy {"tasks":[...]} wrapper, a direct-tag object keyed by tag name, and
// a nested-tag object under a "tags" key. Detection picks the shape, the
// Document remembers it, and every write-back re-serializes through the same
// shape so a file round-tripped through this layer never changes layout.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/taskglass/taskglass/types"
)

// Shape identifies one of the four supported document layouts.
type Shape int

const (
	// ShapeFlat is a bare top-level JSON array of tasks.
	ShapeFlat Shape = iota
	// ShapeLegacy is {"tasks": [...]} with optional sibling metadata.
	ShapeLegacy
	// ShapeDirectTag keys tag names directly at the top level:
	// {"master": {"tasks": [...]}, "featureX": {"tasks": [...]}}.
	ShapeDirectTag
	// ShapeNestedTag nests the tag map under a "tags" key:
	// {"tags": {"master": {"tasks": [...]}}}.
	ShapeNestedTag
)

func (s Shape) String() string {
	switch s {
	case ShapeFlat:
		return "flat"
	case ShapeLegacy:
		return "legacy"
	case ShapeDirectTag:
		return "direct-tag"
	case ShapeNestedTag:
		return "nested-tag"
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// MasterTag is the tag that always exists and cannot be deleted.
const MasterTag = "master"

// Document is a parsed task document with enough structural memory to be
// re-serialized in its original shape. Only the active tag's task list is
// materialized; every other key (and every other tag) is kept as raw JSON and
// written back untouched.
type Document struct {
	Shape Shape
	// Tag is the tag whose task list was extracted. "master" for untagged
	// shapes.
	Tag string
	// Tasks is the active tag's task list as a mutable tree.
	Tasks []*TaskNode

	root map[string]json.RawMessage // object container; nil for ShapeFlat
	tags map[string]json.RawMessage // inner map for ShapeNestedTag
}

// Tagged reports whether the document shape supports multiple tags.
func (d *Document) Tagged() bool {
	return d.Shape == ShapeDirectTag || d.Shape == ShapeNestedTag
}

// Extract parses data and pulls out the task list for wantTag. Shapes are
// tried in a fixed order and the first match wins. For tagged shapes, a
// wantTag that is missing or has no tasks falls back to master. An empty
// wantTag means master. Unknown container layouts fail with a FormatError;
// callers must not guess.
func Extract(data []byte, wantTag string) (*Document, error) {
	if wantTag == "" {
		wantTag = MasterTag
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, &types.FormatError{Detail: "empty document"}
	}

	if trimmed[0] == '[' {
		tasks, err := decodeTaskArray(data)
		if err != nil {
			return nil, &types.FormatError{Detail: fmt.Sprintf("top-level array: %v", err)}
		}
		return &Document{Shape: ShapeFlat, Tag: MasterTag, Tasks: tasks}, nil
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, &types.FormatError{Detail: fmt.Sprintf("not an object or array: %v", err)}
	}

	// Direct-tag: the master tag entry sits straight at the top level.
	if entryHasTasks(root[MasterTag]) {
		tag := resolveTag(root, wantTag)
		tasks, err := entryTasks(root[tag])
		if err != nil {
			return nil, &types.FormatError{Detail: fmt.Sprintf("tag %q: %v", tag, err)}
		}
		return &Document{Shape: ShapeDirectTag, Tag: tag, Tasks: tasks, root: root}, nil
	}

	// Nested-tag: tag map lives under "tags".
	if raw, ok := root["tags"]; ok {
		var tags map[string]json.RawMessage
		if err := json.Unmarshal(raw, &tags); err == nil {
			tag := resolveTag(tags, wantTag)
			tasks, err := entryTasks(tags[tag])
			if err != nil {
				return nil, &types.FormatError{Detail: fmt.Sprintf("tag %q: %v", tag, err)}
			}
			return &Document{Shape: ShapeNestedTag, Tag: tag, Tasks: tasks, root: root, tags: tags}, nil
		}
	}

	// Legacy: a plain tasks array with optional metadata siblings.
	if raw, ok := root["tasks"]; ok && isArray(raw) {
		tasks, err := decodeTaskArray(raw)
		if err != nil {
			return nil, &types.FormatError{Detail: fmt.Sprintf("legacy tasks array: %v", err)}
		}
		return &Document{Shape: ShapeLegacy, Tag: MasterTag, Tasks: tasks, root: root}, nil
	}

	return nil, &types.FormatError{Detail: "no recognizable task container"}
}

// resolveTag picks wantTag if it exists and carries tasks, otherwise master.
func resolveTag(entries map[string]json.RawMessage, wantTag string) string {
	if entryHasTasks(entries[wantTag]) {
		return wantTag
	}
	return MasterTag
}

func isArray(raw json.RawMessage) bool {
	t := bytes.TrimLeft(raw, " \t\r\n")
	return len(t) > 0 && t[0] == '['
}

// entryHasTasks reports whether raw decodes to an object carrying a "tasks"
// array.
func entryHasTasks(raw json.RawMessage) bool {
	if raw == nil {
		return false
	}
	var entry map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entry); err != nil {
		return false
	}
	t, ok := entry["tasks"]
	return ok && isArray(t)
}

// entryTasks decodes the task list of a tag entry. A missing entry yields an
// empty list, which happens when a brand-new tag has been created but never
// written to.
func entryTasks(raw json.RawMessage) ([]*TaskNode, error) {
	if raw == nil {
		return []*TaskNode{}, nil
	}
	var entry map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	t, ok := entry["tasks"]
	if !ok {
		return []*TaskNode{}, nil
	}
	return decodeTaskArray(t)
}

// Marshal re-serializes the document in its original shape. Sibling keys and
// non-active tags come back byte-for-byte from the raw container.
func (d *Document) Marshal() ([]byte, error) {
	tasksJSON, err := marshalTaskArray(d.Tasks)
	if err != nil {
		return nil, fmt.Errorf("marshal task list: %w", err)
	}

	switch d.Shape {
	case ShapeFlat:
		return indentJSON(tasksJSON)
	case ShapeLegacy:
		d.root["tasks"] = tasksJSON
		return marshalObject(d.root)
	case ShapeDirectTag:
		entry, err := setEntryTasks(d.root[d.Tag], tasksJSON)
		if err != nil {
			return nil, err
		}
		d.root[d.Tag] = entry
		return marshalObject(d.root)
	case ShapeNestedTag:
		entry, err := setEntryTasks(d.tags[d.Tag], tasksJSON)
		if err != nil {
			return nil, err
		}
		d.tags[d.Tag] = entry
		tagsJSON, err := json.Marshal(d.tags)
		if err != nil {
			return nil, err
		}
		d.root["tags"] = tagsJSON
		return marshalObject(d.root)
	}
	return nil, fmt.Errorf("cannot marshal document shape %s", d.Shape)
}

// setEntryTasks replaces the "tasks" key of a tag entry, preserving its
// siblings (per-tag metadata like descriptions or creation dates).
func setEntryTasks(raw json.RawMessage, tasksJSON json.RawMessage) (json.RawMessage, error) {
	entry := map[string]json.RawMessage{}
	if raw != nil {
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("tag entry is not an object: %w", err)
		}
	}
	entry["tasks"] = tasksJSON
	return json.Marshal(entry)
}

func marshalObject(obj map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return indentJSON(data)
}

func indentJSON(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// TagNames lists the tags present in the document, sorted, master first.
// Untagged shapes report just master.
func (d *Document) TagNames() []string {
	var names []string
	switch d.Shape {
	case ShapeDirectTag:
		for name, raw := range d.root {
			if entryHasTasks(raw) {
				names = append(names, name)
			}
		}
	case ShapeNestedTag:
		for name := range d.tags {
			names = append(names, name)
		}
	default:
		return []string{MasterTag}
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == MasterTag {
			return true
		}
		if names[j] == MasterTag {
			return false
		}
		return names[i] < names[j]
	})
	return names
}

// CreateTag adds an empty tag entry. The document must be a tagged shape.
func (d *Document) CreateTag(name string) error {
	if name == "" {
		return fmt.Errorf("tag name must not be empty")
	}
	if !d.Tagged() {
		return fmt.Errorf("document shape %s does not support tags", d.Shape)
	}
	entries := d.tagEntries()
	if _, exists := entries[name]; exists {
		return fmt.Errorf("tag %q already exists", name)
	}
	empty, _ := json.Marshal(map[string]any{"tasks": []any{}})
	entries[name] = empty
	return nil
}

// DeleteTag removes a tag and all of its tasks. Deleting master is refused.
func (d *Document) DeleteTag(name string) error {
	if name == MasterTag {
		return types.ErrProtectedTag
	}
	if !d.Tagged() {
		return fmt.Errorf("document shape %s does not support tags", d.Shape)
	}
	entries := d.tagEntries()
	raw, exists := entries[name]
	if !exists || (d.Shape == ShapeDirectTag && !entryHasTasks(raw)) {
		return &types.NotFoundError{Kind: "tag", ID: name}
	}
	delete(entries, name)
	return nil
}

func (d *Document) tagEntries() map[string]json.RawMessage {
	if d.Shape == ShapeNestedTag {
		return d.tags
	}
	return d.root
}
