// Package memory implements the process-wide key/value memory store: a
// string-to-string map persisted as a single JSON file and flushed on
// every mutation.
package memory

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Store is a serialized read-modify-write map backed by a JSON file.
type Store struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// Open loads the store from path, or starts empty if the file does not
// exist or its content is malformed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create memory directory: %w", err)
	}

	s := &Store{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read memory file: %w", err)
	}

	var data map[string]string
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Printf("WARN: memory file at %s is malformed, starting empty: %v", path, err)
		return s, nil
	}
	s.data = data
	return s, nil
}

// Save writes key=value and flushes immediately.
func (s *Store) Save(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.flush()
}

// Read returns the value for key and whether it was present.
func (s *Store) Read(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// List returns a snapshot of every key currently stored.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// Delete removes key, if present, and flushes immediately.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flush()
}

// flush backs up the current file, then overwrites it with s.data.
// Caller must hold s.mu.
func (s *Store) flush() error {
	if _, err := os.Stat(s.path); err == nil {
		backupPath := s.path + ".bak"
		if raw, err := os.ReadFile(s.path); err == nil {
			if err := os.WriteFile(backupPath, raw, 0o644); err != nil {
				log.Printf("WARN: memory: failed to write backup %s: %v", backupPath, err)
			}
		}
	}

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal memory: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write memory file: %w", err)
	}
	return nil
}
