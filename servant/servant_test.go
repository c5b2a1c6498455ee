package servant

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mayur-dot-ai/ClawServant/config"
	"github.com/mayur-dot-ai/ClawServant/llm"
)

// scriptedCaller returns canned responses in order, then repeats the last.
type scriptedCaller struct {
	responses []string
	err       error
	calls     int
	systems   []string
	users     []string
}

func (c *scriptedCaller) Call(ctx context.Context, req llm.CallRequest) (string, string, error) {
	c.calls++
	c.systems = append(c.systems, req.System)
	c.users = append(c.users, req.User)
	if c.err != nil {
		return "", "", c.err
	}
	i := c.calls - 1
	if i >= len(c.responses) {
		i = len(c.responses) - 1
	}
	return c.responses[i], "fake", nil
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Workspace = t.TempDir()
	return cfg
}

func TestNewCreatesWorkspaceLayout(t *testing.T) {
	cfg := testConfig(t)
	if _, err := New(cfg, &scriptedCaller{responses: []string{"ok"}}); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for _, sub := range []string{"tasks", "results", "brain"} {
		if _, err := os.Stat(filepath.Join(cfg.Workspace, sub)); err != nil {
			t.Errorf("missing %s/: %v", sub, err)
		}
	}
}

func TestSystemPromptAssembly(t *testing.T) {
	cfg := testConfig(t)
	brainDir := filepath.Join(cfg.Workspace, "brain")
	os.MkdirAll(brainDir, 0o755)
	os.WriteFile(filepath.Join(brainDir, "core.md"), []byte("I am a test servant."), 0o644)
	os.WriteFile(filepath.Join(brainDir, "facts.md"), []byte("Water is wet."), 0o644)
	os.WriteFile(filepath.Join(brainDir, "_draft.md"), []byte("unfinished"), 0o644)

	s, err := New(cfg, &scriptedCaller{responses: []string{"ok"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s.Memory().Append("task", strings.Repeat("long memory ", 30), 5)

	prompt := s.SystemPrompt()
	if !strings.Contains(prompt, "I am a test servant.") {
		t.Error("identity missing from prompt")
	}
	if !strings.Contains(prompt, "Water is wet.") {
		t.Error("knowledge missing from prompt")
	}
	if strings.Contains(prompt, "unfinished") {
		t.Error("underscore-prefixed brain file should be skipped")
	}
	if !strings.Contains(prompt, "Tasks completed: 0") {
		t.Error("current context missing")
	}
	if !strings.Contains(prompt, "...") {
		t.Error("long memory content should be truncated")
	}
}

func TestSystemPromptDefaultIdentity(t *testing.T) {
	s, err := New(testConfig(t), &scriptedCaller{responses: []string{"ok"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !strings.Contains(s.SystemPrompt(), "ClawServant") {
		t.Error("default identity missing with empty brain")
	}
}

func TestProcessTaskWritesResultAndMemory(t *testing.T) {
	cfg := testConfig(t)
	caller := &scriptedCaller{responses: []string{"the answer"}}
	s, err := New(cfg, caller)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := s.ProcessTask(context.Background(), "compute the answer")
	if err != nil {
		t.Fatalf("ProcessTask() error = %v", err)
	}
	if result.Response != "the answer" || result.Provider != "fake" {
		t.Errorf("result = %+v", result)
	}

	files, _ := filepath.Glob(filepath.Join(cfg.Workspace, "results", "task_*.json"))
	if len(files) != 1 {
		t.Fatalf("result files = %d, want 1", len(files))
	}
	data, _ := os.ReadFile(files[0])
	var persisted TaskResult
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("result file not valid JSON: %v", err)
	}
	if persisted.Task != "compute the answer" || persisted.Response != "the answer" {
		t.Errorf("persisted = %+v", persisted)
	}

	recs := s.Memory().Recent(10, "")
	if len(recs) != 2 || recs[0].Kind != "task" || recs[1].Kind != "result" {
		t.Errorf("memory = %+v", recs)
	}
}

func TestProcessTaskPersistsState(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, &scriptedCaller{responses: []string{"done"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := s.ProcessTask(context.Background(), "one task"); err != nil {
		t.Fatalf("ProcessTask() error = %v", err)
	}

	// The counter survives without a Cycle; single-task mode saves too.
	data, err := os.ReadFile(filepath.Join(cfg.Workspace, "state.json"))
	if err != nil {
		t.Fatalf("state.json not written: %v", err)
	}
	var persisted struct {
		TasksCompleted int `json:"tasks_completed"`
	}
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("state.json not valid JSON: %v", err)
	}
	if persisted.TasksCompleted != 1 {
		t.Errorf("tasks_completed = %d, want 1", persisted.TasksCompleted)
	}
}

func TestProcessTaskEmpty(t *testing.T) {
	s, err := New(testConfig(t), &scriptedCaller{responses: []string{"x"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := s.ProcessTask(context.Background(), "  \n "); err == nil {
		t.Error("ProcessTask() should reject an empty task")
	}
}

func TestProcessTaskPropagatesExhaustion(t *testing.T) {
	s, err := New(testConfig(t), &scriptedCaller{err: &llm.NoProviderError{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := s.ProcessTask(context.Background(), "anything"); err == nil {
		t.Error("ProcessTask() should propagate provider exhaustion")
	}
}

func TestStatus(t *testing.T) {
	s, err := New(testConfig(t), &scriptedCaller{responses: []string{"ok"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	status := s.Status()
	if !strings.Contains(status, "clawservant") || !strings.Contains(status, "cycles: 0") {
		t.Errorf("Status() = %q", status)
	}
}
