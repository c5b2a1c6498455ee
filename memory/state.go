package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// State is the agent's durable counters, persisted as a small JSON file and
// rewritten whole on every save.
type State struct {
	Name           string    `json:"name"`
	Started        time.Time `json:"started"`
	Cycles         int       `json:"cycles"`
	TasksCompleted int       `json:"tasks_completed"`
	LastCycle      time.Time `json:"last_cycle"`

	path string
}

// LoadState reads state from path, or returns a fresh state for name when
// the file is missing or unreadable. State is advisory; a corrupt file
// resets the counters rather than blocking startup.
func LoadState(path, name string) *State {
	st := &State{Name: name, Started: time.Now().UTC(), path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return st
	}
	var loaded State
	if err := json.Unmarshal(data, &loaded); err != nil {
		return st
	}
	loaded.path = path
	if loaded.Name == "" {
		loaded.Name = name
	}
	if loaded.Started.IsZero() {
		loaded.Started = time.Now().UTC()
	}
	return &loaded
}

// Save rewrites the state file.
func (s *State) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// BumpCycle records one completed run cycle.
func (s *State) BumpCycle() {
	s.Cycles++
	s.LastCycle = time.Now().UTC()
}
