package servant

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mayur-dot-ai/ClawServant/llm"
)

func writeTask(t *testing.T, workspace, name, body string) string {
	t.Helper()
	path := filepath.Join(workspace, "tasks", name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCycleProcessesAndDeletesTasks(t *testing.T) {
	cfg := testConfig(t)
	caller := &scriptedCaller{responses: []string{"handled"}}
	s, err := New(cfg, caller)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	a := writeTask(t, cfg.Workspace, "01-first.md", "do the first thing")
	b := writeTask(t, cfg.Workspace, "02-second.md", "do the second thing")

	s.Cycle(context.Background())

	for _, path := range []string{a, b} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s still exists after processing", filepath.Base(path))
		}
	}
	results, _ := filepath.Glob(filepath.Join(cfg.Workspace, "results", "task_*.json"))
	if len(results) != 2 {
		t.Errorf("result files = %d, want 2", len(results))
	}
	if s.state.Cycles != 1 {
		t.Errorf("cycles = %d, want 1", s.state.Cycles)
	}
	if s.state.TasksCompleted != 2 {
		t.Errorf("tasks completed = %d, want 2", s.state.TasksCompleted)
	}
	// Two tasks plus the reflection turn.
	if caller.calls != 3 {
		t.Errorf("model calls = %d, want 3", caller.calls)
	}
}

func TestCycleKeepsTaskOnProviderExhaustion(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, &scriptedCaller{err: &llm.NoProviderError{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	path := writeTask(t, cfg.Workspace, "stuck.md", "needs a provider")
	s.Cycle(context.Background())

	if _, err := os.Stat(path); err != nil {
		t.Error("task file should survive provider exhaustion for retry")
	}
	if s.state.TasksCompleted != 0 {
		t.Errorf("tasks completed = %d, want 0", s.state.TasksCompleted)
	}
}

func TestCycleRecordsReflection(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, &scriptedCaller{responses: []string{"a quiet thought"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	s.Cycle(context.Background())

	thoughts := s.Memory().Recent(5, "thought")
	if len(thoughts) != 1 || thoughts[0].Content != "a quiet thought" {
		t.Errorf("thoughts = %+v", thoughts)
	}
}

func TestCycleReloadsChangedBrain(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, &scriptedCaller{responses: []string{"ok"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(cfg.Workspace, "brain", "core.md"), []byte("New identity."), 0o644); err != nil {
		t.Fatal(err)
	}

	s.Cycle(context.Background())

	if s.brain.Identity() != "New identity." {
		t.Errorf("identity = %q, brain not reloaded", s.brain.Identity())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, &scriptedCaller{responses: []string{"ok"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx, 0); err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if s.state.Cycles != 1 {
		t.Errorf("cycles = %d, want exactly one before stopping", s.state.Cycles)
	}
}
