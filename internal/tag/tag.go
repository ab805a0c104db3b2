// Package tag tracks which named task collection is active. The current tag
// lives in a small persisted state file next to the task document and is
// re-read on every tag-scoped operation, because the backing tool switches
// tags behind our back.
package tag

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/taskglass/taskglass/store"
)

// Context reports the active tag and what else is available.
type Context struct {
	CurrentTag     string   `json:"currentTag"`
	AvailableTags  []string `json:"availableTags"`
	IsTaggedFormat bool     `json:"isTaggedFormat"`
}

// sessionState is the persisted state file's shape. Unknown siblings are
// preserved on write.
type sessionState map[string]json.RawMessage

const currentTagKey = "currentTag"

// Store reads and writes the persisted session state.
type Store struct {
	fs   afero.Fs
	path string
}

// NewStore creates a session-state store at path on the given filesystem.
func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// Current returns the active tag name. A missing or unreadable state file
// means master; tag resolution must never fail a read.
func (s *Store) Current() string {
	state, err := s.load()
	if err != nil {
		return store.MasterTag
	}
	raw, ok := state[currentTagKey]
	if !ok {
		return store.MasterTag
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil || name == "" {
		return store.MasterTag
	}
	return name
}

// SetCurrent persists a new active tag, keeping any sibling state intact.
func (s *Store) SetCurrent(name string) error {
	if name == "" {
		return fmt.Errorf("tag name must not be empty")
	}
	state, err := s.load()
	if err != nil {
		state = sessionState{}
	}
	raw, _ := json.Marshal(name)
	state[currentTagKey] = raw
	return s.save(state)
}

func (s *Store) load() (sessionState, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return sessionState{}, nil
		}
		return nil, err
	}
	var state sessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("malformed session state %s: %w", s.path, err)
	}
	return state, nil
}

func (s *Store) save(state sessionState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(s.fs, s.path, append(data, '\n'), 0o644)
}
