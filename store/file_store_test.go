package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taskglass/taskglass/models"
)

func tempStore(t *testing.T, contents string) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	if contents != "" {
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return NewFileStore(path)
}

func TestLoadMissingFileYieldsEmptyDocument(t *testing.T) {
	s := tempStore(t, "")
	doc, err := s.Load(MasterTag)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Shape != ShapeFlat || len(doc.Tasks) != 0 {
		t.Errorf("want empty flat document, got shape %s with %d tasks", doc.Shape, len(doc.Tasks))
	}
}

func TestLoadAttachesPathToFormatError(t *testing.T) {
	s := tempStore(t, `{"nope":true}`)
	_, err := s.Load(MasterTag)
	if err == nil || !strings.Contains(err.Error(), "tasks.json") {
		t.Errorf("Load() error = %v, want FormatError naming the file", err)
	}
}

func TestMutateReloadsAndWritesAtomically(t *testing.T) {
	s := tempStore(t, `{"tasks":[{"id":"1","title":"A","status":"pending"}],"meta":{"v":1}}`)

	err := s.Mutate(MasterTag, func(doc *Document) error {
		return doc.SetStatus("1", models.StatusCompleted)
	})
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, `"done"`) {
		t.Error("status change not persisted")
	}
	if !strings.Contains(text, `"meta"`) {
		t.Error("sibling metadata lost on write-back")
	}
	if !strings.HasSuffix(text, "\n") {
		t.Error("output missing trailing newline")
	}
	if _, err := os.Stat(s.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestMutateCreatesDocumentOnFirstWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasks.json")
	s := NewFileStore(path)

	var id string
	err := s.Mutate(MasterTag, func(doc *Document) error {
		var err error
		id, err = doc.AddTask(models.NewTask("", "First"))
		return err
	})
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}
	if id != "1" {
		t.Errorf("assigned id = %q, want 1", id)
	}

	doc, err := s.Load(MasterTag)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Tasks) != 1 || doc.Tasks[0].Title() != "First" {
		t.Error("written task not readable back")
	}
}

func TestMutateErrorLeavesFileUntouched(t *testing.T) {
	original := `{"tasks":[{"id":"1","title":"A"}]}`
	s := tempStore(t, original)

	err := s.Mutate(MasterTag, func(doc *Document) error {
		return doc.SetStatus("missing", models.StatusTodo)
	})
	if err == nil {
		t.Fatal("Mutate() should propagate the callback error")
	}
	data, _ := os.ReadFile(s.Path())
	if string(data) != original {
		t.Error("file changed although the mutation failed")
	}
}

func TestTags(t *testing.T) {
	s := tempStore(t, `{"tags":{"master":{"tasks":[]},"feature":{"tasks":[]}}}`)
	tags, err := s.Tags()
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 || tags[0] != "master" || tags[1] != "feature" {
		t.Errorf("Tags() = %v, want [master feature]", tags)
	}
}
