package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ginclub-dev/ginclub/backend/internal/service"
	internal_errors "github.com/ginclub-dev/ginclub/shared/errors"
)

// Storage persists the gate state as a single JSON file. Writes go through a
// temp file and rename, so readers never see a half-written file.
type Storage struct {
	path string
	mu   sync.Mutex
}

var _ service.KeyValue = (*Storage)(nil)

func New(path string) (*Storage, error) {
	p := filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory for %s: %w", p, err)
	}

	return &Storage{path: p}, nil
}

func (s *Storage) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	state := map[string]string{}
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("state file is corrupt: %w", err)
	}
	return state, nil
}

func (s *Storage) save(state map[string]string) error {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp) // best effort
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

func (s *Storage) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return "", err
	}
	value, ok := state[key]
	if !ok {
		return "", internal_errors.NotFound("Key not found")
	}
	return value, nil
}

func (s *Storage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	state[key] = value
	return s.save(state)
}

func (s *Storage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	delete(state, key)
	return s.save(state)
}

func (s *Storage) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}
