// Package memory persists the agent's long-lived context: an append-only
// JSONL record log and a small JSON state document.
package memory

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Record is one memory entry.
type Record struct {
	Timestamp  time.Time `json:"timestamp"`
	Kind       string    `json:"kind"`
	Content    string    `json:"content"`
	Importance int       `json:"importance"`
}

// Store is an append-only memory log backed by a JSONL file. Records are
// never rewritten; the in-memory slice mirrors the file.
type Store struct {
	path    string
	records []Record
	log     *slog.Logger
	mu      sync.Mutex
}

// Open loads an existing memory file, or starts empty when it is missing.
// Lines that fail to parse are skipped with a warning: a torn write at the
// tail must not make the whole history unreadable.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		log:  slog.With("component", "memory"),
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open memory: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			s.log.Warn("skipping corrupt memory line", "line", lineNo, "error", err)
			continue
		}
		s.records = append(s.records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read memory: %w", err)
	}
	return s, nil
}

// Append writes one record to the log and the in-memory mirror.
func (s *Store) Append(kind, content string, importance int) error {
	rec := Record{
		Timestamp:  time.Now().UTC(),
		Kind:       kind,
		Content:    content,
		Importance: importance,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("append memory: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("append memory: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("append memory: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append memory: %w", err)
	}

	s.records = append(s.records, rec)
	return nil
}

// Recent returns the last n records, oldest first. A non-empty kind filters
// by record kind before taking the tail.
func (s *Store) Recent(n int, kind string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pool []Record
	if kind == "" {
		pool = s.records
	} else {
		for _, rec := range s.records {
			if rec.Kind == kind {
				pool = append(pool, rec)
			}
		}
	}

	if n <= 0 || n > len(pool) {
		n = len(pool)
	}
	out := make([]Record, n)
	copy(out, pool[len(pool)-n:])
	return out
}

// Len returns the number of loaded records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
