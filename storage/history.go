// Package storage persists run history and provides atomic file primitives.
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	schemaVersion = "1.0"
	lockTimeout   = 5 * time.Second
)

// RunRecord is the persisted outcome of one sync run against a channel.
type RunRecord struct {
	// ID is the internal unique identifier (UUID).
	ID string `json:"id"`
	// Slug is the channel the run targeted.
	Slug string `json:"slug"`
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`
	// FinishedAt is when the run settled.
	FinishedAt time.Time `json:"finished_at"`
	// DryRun indicates no bytes were fetched or written.
	DryRun bool `json:"dry_run"`

	// Counters from the run.
	Total      int `json:"total"`
	Downloaded int `json:"downloaded"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
	NoImage    int `json:"no_image"`
}

// HistoryStore keeps the most recent RunRecord per channel slug in a single
// JSON file. It exists so watch mode can report what changed since the last
// cycle; losing it costs nothing but that delta.
type HistoryStore struct {
	path string
	lock *FileLock
	data *historyData
	mu   sync.RWMutex
}

// historyData is the top-level JSON structure.
type historyData struct {
	Version   string                `json:"version"`
	UpdatedAt time.Time             `json:"updated_at"`
	Runs      map[string]*RunRecord `json:"runs"` // slug -> most recent run
}

// OpenHistory opens (or creates) the history store at the given path and
// acquires its advisory file lock.
func OpenHistory(path string) (*HistoryStore, error) {
	s := &HistoryStore{
		path: path,
		lock: NewFileLock(path),
	}

	if err := s.lock.Lock(lockTimeout); err != nil {
		return nil, err
	}

	if err := s.load(); err != nil {
		s.lock.Unlock()
		return nil, err
	}
	return s, nil
}

// load reads the JSON file into memory. Creates empty data if the file does
// not exist yet.
func (s *HistoryStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.data = &historyData{
				Version: schemaVersion,
				Runs:    make(map[string]*RunRecord),
			}
			return nil
		}
		return &StorageError{Op: "read", Entity: "history", Err: err}
	}

	s.data = &historyData{}
	if err := json.Unmarshal(data, s.data); err != nil {
		return &StorageError{Op: "read", Entity: "history", Err: ErrStorageCorrupt}
	}
	if s.data.Runs == nil {
		s.data.Runs = make(map[string]*RunRecord)
	}
	return nil
}

// save persists the data to disk atomically.
func (s *HistoryStore) save() error {
	s.data.Version = schemaVersion
	s.data.UpdatedAt = time.Now()

	writer, err := NewAtomicWriter(s.path)
	if err != nil {
		return &StorageError{Op: "write", Entity: "history", Err: err}
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.data); err != nil {
		writer.Abort()
		return &StorageError{Op: "write", Entity: "history", Err: err}
	}

	if err := writer.Commit(); err != nil {
		return &StorageError{Op: "write", Entity: "history", Err: err}
	}
	return nil
}

// LastRun returns the most recent run recorded for a slug.
// Returns ErrNotFound if the channel has never been synced.
func (s *HistoryStore) LastRun(slug string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data.Runs[slug]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

// RecordRun stores the run as the most recent one for its slug, assigning an
// ID if the record has none, and persists the store.
func (s *HistoryStore) RecordRun(rec *RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	copied := *rec
	s.data.Runs[rec.Slug] = &copied
	return s.save()
}

// Close releases the store's file lock.
func (s *HistoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lock.Unlock()
}
