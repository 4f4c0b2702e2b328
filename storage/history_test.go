package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHistoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".arena-dl-history.json")

	store, err := OpenHistory(path)
	if err != nil {
		t.Fatalf("OpenHistory: %v", err)
	}

	rec := &RunRecord{
		Slug:       "sea-walls",
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
		Total:      12,
		Downloaded: 10,
		Failed:     1,
		NoImage:    1,
	}
	if err := store.RecordRun(rec); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if rec.ID == "" {
		t.Error("RecordRun did not assign an ID")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen and read back.
	store, err = OpenHistory(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	got, err := store.LastRun("sea-walls")
	if err != nil {
		t.Fatalf("LastRun: %v", err)
	}
	if got.Downloaded != 10 || got.Failed != 1 || got.NoImage != 1 {
		t.Errorf("LastRun counters = %+v", got)
	}
	if got.ID != rec.ID {
		t.Errorf("LastRun ID = %q, want %q", got.ID, rec.ID)
	}
}

func TestHistoryLastRunNotFound(t *testing.T) {
	store, err := OpenHistory(filepath.Join(t.TempDir(), "history.json"))
	if err != nil {
		t.Fatalf("OpenHistory: %v", err)
	}
	defer store.Close()

	if _, err := store.LastRun("never-synced"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LastRun error = %v, want ErrNotFound", err)
	}
}

func TestHistoryKeepsLatestRunPerSlug(t *testing.T) {
	store, err := OpenHistory(filepath.Join(t.TempDir(), "history.json"))
	if err != nil {
		t.Fatalf("OpenHistory: %v", err)
	}
	defer store.Close()

	if err := store.RecordRun(&RunRecord{Slug: "x", Downloaded: 1}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := store.RecordRun(&RunRecord{Slug: "x", Downloaded: 7}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	got, err := store.LastRun("x")
	if err != nil {
		t.Fatalf("LastRun: %v", err)
	}
	if got.Downloaded != 7 {
		t.Errorf("LastRun Downloaded = %d, want 7 (latest run)", got.Downloaded)
	}
}

func TestHistoryCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := OpenHistory(path)
	if !errors.Is(err, ErrStorageCorrupt) {
		t.Errorf("OpenHistory error = %v, want ErrStorageCorrupt", err)
	}
}

func TestAtomicWriterCommit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "file.bin")

	w, err := NewAtomicWriter(path)
	if err != nil {
		t.Fatalf("NewAtomicWriter: %v", err)
	}
	if _, err := w.Write([]byte("payload")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("file content = %q, want payload", string(data))
	}
}

func TestAtomicWriterAbortLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.bin")

	w, err := NewAtomicWriter(path)
	if err != nil {
		t.Fatalf("NewAtomicWriter: %v", err)
	}
	w.Write([]byte("partial"))
	if err := w.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("target file exists after Abort")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("directory not empty after Abort: %v", entries)
	}
}

func TestFileLockBlocksSecondHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	first := NewFileLock(path)
	if err := first.Lock(time.Second); err != nil {
		t.Fatalf("first Lock: %v", err)
	}
	defer first.Unlock()

	second := NewFileLock(path)
	if err := second.Lock(50 * time.Millisecond); !errors.Is(err, ErrLockTimeout) {
		t.Errorf("second Lock error = %v, want ErrLockTimeout", err)
	}
}
