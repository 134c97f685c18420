// Package appstate persists the single piece of cross-session state
// this engine cares about: the name of the last successfully loaded
// instrument folder (spec.md §3 "App State", §6). It is not part of
// the real-time path; it is read once at startup and written from the
// control thread on load success.
package appstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	// AppDirName is the subdirectory under the platform config dir
	// holding both the state file and the instruments root, mirroring
	// the teacher's own use of a single named config subdirectory.
	AppDirName = "rakund"
	stateFile  = "state.json"
)

// State is the persisted record, one field wide (spec.md §6).
type State struct {
	LastInstrument string `json:"last_instrument"`
}

// Store guards reads and writes of the persisted state file with a
// mutex, matching the teacher's config package discipline for
// filesystem-backed settings.
type Store struct {
	mu   sync.Mutex
	path string
}

// New creates a Store backed by dir/rakund/state.json (dir is normally
// os.UserConfigDir()). The directory is created on first write, not on
// construction.
func New(dir string) *Store {
	return &Store{path: filepath.Join(dir, AppDirName, stateFile)}
}

// Load reads the persisted state. A missing file is not an error; it
// reports the zero State (no last instrument).
func (s *Store) Load() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("read app state: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("parse app state: %w", err)
	}
	return st, nil
}

// SetLastInstrument persists folder as the last-used instrument,
// overwriting any previous value.
func (s *Store) SetLastInstrument(folder string) error {
	return s.write(State{LastInstrument: folder})
}

// Clear removes the last-used instrument record (spec.md §6
// `clear_last_instrument`).
func (s *Store) Clear() error {
	return s.write(State{})
}

// write persists st atomically: write to a temp file in the same
// directory, then rename over the target, so a crash mid-write never
// leaves a truncated state.json.
func (s *Store) write(st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create app state dir: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode app state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp app state file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp app state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp app state file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename app state file: %w", err)
	}
	return nil
}
