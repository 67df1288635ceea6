package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	stateFileName = "skim_state.json"
	appDirName    = "skim"
)

// ErrNotFound is returned by Get for keys that were never set.
var ErrNotFound = errors.New("key not found")

// Store is a small persistent key-value store backed by one JSON file.
// Values are JSON documents.
type Store struct {
	path string
	data map[string]json.RawMessage
	mu   sync.RWMutex
}

// NewStore creates or loads the store in XDG_STATE_HOME/skim/.
func NewStore() (*Store, error) {
	return Open(Dir())
}

// Open creates or loads the store in dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	store := &Store{
		path: filepath.Join(dir, stateFileName),
		data: make(map[string]json.RawMessage),
	}
	if err := store.load(); err != nil {
		// Non-fatal - start with empty state
		store.data = make(map[string]json.RawMessage)
	}
	return store, nil
}

// Dir returns XDG_STATE_HOME/skim or ~/.local/state/skim
func Dir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", appDirName)
}

// HashText generates a content hash used as document identity.
func HashText(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:16]) // First 16 bytes = 32 hex chars
}

// Get decodes the value stored under key into v.
func (s *Store) Get(key string, v any) error {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Set stores v under key and writes the file.
func (s *Store) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = raw
	return s.save()
}

// Delete removes keys and writes the file.
func (s *Store) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return s.save()
}

// Size returns the encoded size of the value under key, or 0.
func (s *Store) Size(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[key])
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &s.data)
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
