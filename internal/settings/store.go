package settings

import (
	"errors"

	"github.com/metcalfc/skim/internal/state"
)

const storeKey = "settings"

// persisted holds the values changed while reading. Fields that were never
// changed stay nil so the config file keeps control of them.
type persisted struct {
	WordsPerMinute *int `json:"wpm,omitempty"`
}

// Store persists runtime setting changes in the state store.
type Store struct {
	kv *state.Store
}

func NewStore(kv *state.Store) *Store {
	return &Store{kv: kv}
}

// Apply overlays persisted values onto base.
func (s *Store) Apply(base Settings) Settings {
	var p persisted
	if err := s.kv.Get(storeKey, &p); err != nil {
		return base
	}
	if p.WordsPerMinute != nil {
		base.WordsPerMinute = base.ClampSpeed(*p.WordsPerMinute)
	}
	return base
}

// SaveSpeed records the reading speed.
func (s *Store) SaveSpeed(wpm int) error {
	var p persisted
	if err := s.kv.Get(storeKey, &p); err != nil && !errors.Is(err, state.ErrNotFound) {
		p = persisted{}
	}
	p.WordsPerMinute = &wpm
	return s.kv.Set(storeKey, p)
}

// Reset forgets every persisted value.
func (s *Store) Reset() error {
	return s.kv.Delete(storeKey)
}

// Resolve layers defaults, the config file at path and persisted values.
func Resolve(path string, store *Store) (Settings, error) {
	s, err := LoadFile(path, Defaults())
	if err != nil {
		return Defaults(), err
	}
	if store != nil {
		s = store.Apply(s)
	}
	return s, nil
}
