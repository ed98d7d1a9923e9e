// Package profile persists submitted planning requests to an append-only
// JSON log used for audit and history, never for decisioning.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one logged submission.
type Entry struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Store appends profile submissions to a single JSON array file. The
// file is read-modify-written, so appends are serialized by a mutex;
// entries are never mutated or deleted.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a Store writing to path. The file is created on first
// append.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Append logs a raw submission and returns the new entry's id.
func (s *Store) Append(data json.RawMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readAll()
	if err != nil {
		return "", err
	}

	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	entries = append(entries, entry)

	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("profile: marshal log: %w", err)
	}
	if err := os.WriteFile(s.path, out, 0o644); err != nil {
		return "", fmt.Errorf("profile: write log %s: %w", s.path, err)
	}
	return entry.ID, nil
}

// LoadAll returns all logged entries in append order.
func (s *Store) LoadAll() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

func (s *Store) readAll() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("profile: read log %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("profile: parse log %s: %w", s.path, err)
	}
	return entries, nil
}
