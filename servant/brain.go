// Package servant wires memory, knowledge, and the think loop into the
// autonomous agent: it scans the workspace for task files, processes each
// through the loop, and persists results and memory.
package servant

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultIdentity is used when the brain has no core.md.
const DefaultIdentity = `You are ClawServant, an autonomous assistant working inside a local workspace.
You complete tasks thoroughly and keep your answers concise.
You can call tools by emitting <tool>{"tool":"<name>","params":{...}}</tool> spans in your response.`

// Brain holds the agent's identity and knowledge, loaded from the brain
// directory: core.md is the identity, every other .md/.txt file is a
// knowledge section. Files whose names start with "_" are drafts and are
// skipped.
type Brain struct {
	dir       string
	identity  string
	knowledge string
	mtimes    map[string]time.Time
	log       *slog.Logger
}

// NewBrain creates a brain over dir. Call Load before use; an empty or
// missing directory yields the default identity and no knowledge.
func NewBrain(dir string) *Brain {
	return &Brain{
		dir:    dir,
		mtimes: make(map[string]time.Time),
		log:    slog.With("component", "brain"),
	}
}

// Identity returns the loaded identity text.
func (b *Brain) Identity() string {
	if b.identity == "" {
		return DefaultIdentity
	}
	return b.identity
}

// Knowledge returns the concatenated knowledge sections.
func (b *Brain) Knowledge() string { return b.knowledge }

// Load reads the brain directory. Unreadable files are skipped with a
// warning so one bad file never empties the whole brain.
func (b *Brain) Load() error {
	files, err := b.scan()
	if err != nil {
		return err
	}

	b.identity = ""
	b.mtimes = make(map[string]time.Time, len(files))

	var sections []string
	for _, f := range files {
		b.mtimes[f.name] = f.mtime
		data, err := os.ReadFile(filepath.Join(b.dir, f.name))
		if err != nil {
			b.log.Warn("skipping unreadable brain file", "file", f.name, "error", err)
			continue
		}
		content := strings.TrimSpace(string(data))
		if content == "" {
			continue
		}
		if f.name == "core.md" {
			b.identity = content
			continue
		}
		sections = append(sections, fmt.Sprintf("## %s\n%s", f.name, content))
	}
	b.knowledge = strings.Join(sections, "\n\n")
	return nil
}

// Stale reports whether the directory's file set or mtimes changed since
// the last Load.
func (b *Brain) Stale() bool {
	files, err := b.scan()
	if err != nil {
		return false
	}
	if len(files) != len(b.mtimes) {
		return true
	}
	for _, f := range files {
		if prev, ok := b.mtimes[f.name]; !ok || !prev.Equal(f.mtime) {
			return true
		}
	}
	return false
}

type brainFile struct {
	name  string
	mtime time.Time
}

func (b *Brain) scan() ([]brainFile, error) {
	entries, err := os.ReadDir(b.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan brain: %w", err)
	}

	var files []brainFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") {
			continue
		}
		ext := filepath.Ext(name)
		if ext != ".md" && ext != ".txt" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, brainFile{name: name, mtime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, nil
}
