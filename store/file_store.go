package store

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/taskglass/taskglass/types"
)

// FileStore reads and writes one task document with file-level locking.
// Every operation re-reads from disk rather than caching tasks across calls:
// the backing tool mutates the same file, and a stale in-memory copy is a
// worse hazard than the extra read.
type FileStore struct {
	path string
	flk  *flock.Flock
}

// NewFileStore creates a store for the document at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		flk:  flock.New(path),
	}
}

// Path returns the document path.
func (s *FileStore) Path() string {
	return s.path
}

// ensureDir creates the document's directory. Locking creates the file, so
// the directory has to exist before the first lock is taken.
func (s *FileStore) ensureDir() error {
	dir := filepath.Dir(s.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads and extracts the document for wantTag. A missing file yields an
// empty flat document so first reads before the backing tool has written
// anything do not fail.
func (s *FileStore) Load(wantTag string) (*Document, error) {
	if err := s.ensureDir(); err != nil {
		return nil, fmt.Errorf("could not create directory for %s: %w", s.path, err)
	}
	if err := s.flk.Lock(); err != nil {
		return nil, fmt.Errorf("could not lock %s: %w", s.path, err)
	}
	defer func() { _ = s.flk.Unlock() }()
	return s.loadLocked(wantTag)
}

func (s *FileStore) loadLocked(wantTag string) (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Document{Shape: ShapeFlat, Tag: MasterTag, Tasks: []*TaskNode{}}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	// Acquiring the lock can create an empty file; treat it like a missing one.
	if len(bytes.TrimSpace(data)) == 0 {
		return &Document{Shape: ShapeFlat, Tag: MasterTag, Tasks: []*TaskNode{}}, nil
	}
	doc, err := Extract(data, wantTag)
	if err != nil {
		var fe *types.FormatError
		if errors.As(err, &fe) {
			fe.Path = s.path
		}
		return nil, err
	}
	return doc, nil
}

// Mutate loads the document for wantTag, applies fn and writes the result
// back in the original shape. The whole sequence runs under the file lock,
// and the write is atomic (temp file plus rename) so a crash never leaves a
// half-written document behind.
func (s *FileStore) Mutate(wantTag string, fn func(*Document) error) error {
	if err := s.ensureDir(); err != nil {
		return fmt.Errorf("could not create directory for %s: %w", s.path, err)
	}
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("could not lock %s for mutation: %w", s.path, err)
	}
	defer func() { _ = s.flk.Unlock() }()

	doc, err := s.loadLocked(wantTag)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.saveLocked(doc)
}

func (s *FileStore) saveLocked(doc *Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	tempPath := s.path + ".tmp"
	defer func() { _ = os.Remove(tempPath) }()

	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary file %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// Tags lists the tags present in the document.
func (s *FileStore) Tags() ([]string, error) {
	doc, err := s.Load(MasterTag)
	if err != nil {
		return nil, err
	}
	return doc.TagNames(), nil
}
