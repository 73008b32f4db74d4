// Package database provides the flat-file collection store and the
// optional Redis client. The store owns all disk I/O for entity
// collections; repositories sit on top of it and handle entity semantics
// (including field encryption) before data reaches this layer.
package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store persists each entity collection as one pretty-printed JSON
// document in the data directory (characters.json, chats.json, ...).
// Reads and writes of the same collection are serialized with a
// per-collection mutex, and writes go through a temp file + rename so a
// crash mid-write never leaves a truncated document. Two server processes
// on the same data directory are not supported.
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dir, err)
	}
	return &Store{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Dir returns the data directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Read unmarshals the named collection into v. A collection that has never
// been written leaves v at its zero value -- an empty list or map, not an
// error.
func (s *Store) Read(name string, v any) error {
	lock := s.lock(name)
	lock.Lock()
	defer lock.Unlock()

	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading collection %s: %w", name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing collection %s: %w", name, err)
	}
	return nil
}

// Write marshals v and atomically replaces the named collection document.
func (s *Store) Write(name string, v any) error {
	lock := s.lock(name)
	lock.Lock()
	defer lock.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding collection %s: %w", name, err)
	}

	// Write to a temp file in the same directory, then rename over the
	// target. Rename is atomic on the same filesystem.
	tmp, err := os.CreateTemp(s.dir, name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing collection %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file for %s: %w", name, err)
	}

	if err := os.Rename(tmpName, s.path(name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing collection %s: %w", name, err)
	}
	return nil
}

// path returns the on-disk filename for a collection.
func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// lock returns the mutex for a collection, creating it on first use.
func (s *Store) lock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}
