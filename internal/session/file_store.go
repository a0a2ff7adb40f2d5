package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type fileEntry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// FileStore is the default persistent tier. Entries survive process
// restarts, like browser local storage survives browser restarts.
type FileStore struct {
	mu    sync.Mutex
	path  string
	items map[string]fileEntry
}

func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:  path,
		items: make(map[string]fileEntry),
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.items); err != nil {
		// A corrupt file is an empty store, not a startup failure.
		s.items = make(map[string]fileEntry)
	}
	return s, nil
}

func (s *FileStore) Name() string { return "local" }

func (s *FileStore) persistLocked() error {
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Set(_ context.Context, name, value string, ttl time.Duration) error {
	entry := fileEntry{Value: value}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[name] = entry
	if err := s.persistLocked(); err != nil {
		return fmt.Errorf("session: persist %s: %w", filepath.Base(s.path), err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[name]
	if !ok {
		return "", false, nil
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		delete(s.items, name)
		_ = s.persistLocked()
		return "", false, nil
	}
	return entry.Value, true, nil
}

func (s *FileStore) Remove(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[name]; !ok {
		return nil
	}
	delete(s.items, name)
	if err := s.persistLocked(); err != nil {
		return fmt.Errorf("session: persist %s: %w", filepath.Base(s.path), err)
	}
	return nil
}
