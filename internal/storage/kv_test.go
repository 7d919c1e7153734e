package storage

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
)

// backends returns a fresh instance of every KV implementation
func backends(t *testing.T) map[string]KV {
	t.Helper()

	sqliteKV, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	fileKV, err := NewFileKV(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatalf("Failed to open file store: %v", err)
	}

	kvs := map[string]KV{
		"memory": NewMemoryKV(),
		"sqlite": sqliteKV,
		"file":   fileKV,
	}
	t.Cleanup(func() {
		for _, kv := range kvs {
			kv.Close()
		}
	})
	return kvs
}

func TestKVContract(t *testing.T) {
	ctx := context.Background()

	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := kv.Get(ctx, "missing"); !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("Expected ErrKeyNotFound, got %v", err)
			}

			if err := kv.Put(ctx, "k", []byte("first")); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			if err := kv.Put(ctx, "k", []byte("second")); err != nil {
				t.Fatalf("Put failed: %v", err)
			}

			got, err := kv.Get(ctx, "k")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if !bytes.Equal(got, []byte("second")) {
				t.Errorf("Expected second, got %q", got)
			}

			if err := kv.Delete(ctx, "k"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if _, err := kv.Get(ctx, "k"); !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("Expected ErrKeyNotFound after delete, got %v", err)
			}
			if err := kv.Delete(ctx, "k"); err != nil {
				t.Errorf("Deleting a missing key should succeed, got %v", err)
			}
		})
	}
}

func TestMemoryKVCopiesValues(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	value := []byte("abc")
	if err := kv.Put(ctx, "k", value); err != nil {
		t.Fatal(err)
	}
	value[0] = 'x'

	got, _ := kv.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("Expected stored value to be isolated, got %q", got)
	}
}

func TestFileKVPersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFileKV(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Put(ctx, SetsKey, []byte("[]")); err != nil {
		t.Fatal(err)
	}

	second, err := NewFileKV(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, err := second.Get(ctx, SetsKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "[]" {
		t.Errorf("Expected [], got %q", got)
	}
}

func TestSQLitePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cardfactory.db")

	first, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	if err := first.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer second.Close()

	got, err := second.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Expected v, got %q (%v)", got, err)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "memory", cfg: Config{Backend: BackendMemory}},
		{name: "memory with breaker", cfg: Config{Backend: BackendMemory, Breaker: true}},
		{name: "file", cfg: Config{Backend: BackendFile, Path: t.TempDir()}},
		{name: "sqlite", cfg: Config{Backend: BackendSQLite, Path: filepath.Join(t.TempDir(), "db.sqlite")}},
		{name: "unknown", cfg: Config{Backend: "redis"}, wantErr: ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv, err := Open(tt.cfg, nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer kv.Close()

			if err := kv.Put(context.Background(), "k", []byte("v")); err != nil {
				t.Errorf("Put failed: %v", err)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&WriteError{Key: SetsKey, Err: cause})

	if !errors.Is(err, ErrWriteFailure) {
		t.Error("WriteError should match ErrWriteFailure")
	}
	if !errors.Is(err, cause) {
		t.Error("WriteError should unwrap to its cause")
	}
}
