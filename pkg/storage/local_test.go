package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStorageReadWrite(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create local storage: %v", err)
	}

	if err := s.Write(ctx, "snapshot.json", []byte(`{"users":{}}`)); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	data, err := s.Read(ctx, "snapshot.json")
	if err != nil {
		t.Fatalf("Failed to read: %v", err)
	}
	if string(data) != `{"users":{}}` {
		t.Errorf("Unexpected content: %s", data)
	}

	exists, err := s.Exists(ctx, "snapshot.json")
	if err != nil {
		t.Fatalf("Failed to stat: %v", err)
	}
	if !exists {
		t.Error("Expected file to exist")
	}

	exists, err = s.Exists(ctx, "missing.json")
	if err != nil {
		t.Fatalf("Failed to stat missing file: %v", err)
	}
	if exists {
		t.Error("Expected missing file to not exist")
	}
}

func TestLocalStorageReadMissing(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create local storage: %v", err)
	}

	_, err = s.Read(context.Background(), "missing.json")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLocalStorageWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("Failed to create local storage: %v", err)
	}

	if err := s.Write(context.Background(), "nested/snapshot.json", []byte("{}")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "nested", "*.tmp"))
	if err != nil {
		t.Fatalf("Failed to glob: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Temp files left behind: %v", matches)
	}
	if _, err := os.Stat(filepath.Join(dir, "nested", "snapshot.json")); err != nil {
		t.Errorf("Expected final file to exist: %v", err)
	}
}

func TestLocalStorageWriteOverwrites(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create local storage: %v", err)
	}

	if err := s.Write(ctx, "f.json", []byte("one")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if err := s.Write(ctx, "f.json", []byte("two")); err != nil {
		t.Fatalf("Failed to overwrite: %v", err)
	}
	data, err := s.Read(ctx, "f.json")
	if err != nil {
		t.Fatalf("Failed to read: %v", err)
	}
	if string(data) != "two" {
		t.Errorf("Expected overwritten content, got %s", data)
	}
}
