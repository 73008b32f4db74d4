package database

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
)

type testRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestStoreReadMissingCollection(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var records []testRecord
	if err := s.Read("characters", &records); err != nil {
		t.Fatalf("reading a never-written collection: %v", err)
	}
	if records != nil {
		t.Errorf("expected zero value, got %v", records)
	}
}

func TestStoreWriteReadRoundTrip(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	in := []testRecord{
		{ID: "1", Name: "Elyra"},
		{ID: "2", Name: "Captain Vex"},
	}
	if err := s.Write("characters", in); err != nil {
		t.Fatal(err)
	}

	var out []testRecord
	if err := s.Read("characters", &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Errorf("round trip mismatch: got %v want %v", out, in)
	}
}

func TestStoreWriteIsAtomicOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Write("settings", map[string]string{"k": "v"}); err != nil {
		t.Fatal(err)
	}

	// No temp files may remain after a successful write.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}

func TestStoreConcurrentWriters(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = s.Write("chats", []testRecord{{ID: strconv.Itoa(n)}})
		}(i)
	}
	wg.Wait()

	// The document must still be valid JSON holding one of the writes.
	var out []testRecord
	if err := s.Read("chats", &out); err != nil {
		t.Fatalf("document corrupted by concurrent writes: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("expected one record, got %d", len(out))
	}
}
