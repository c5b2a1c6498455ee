package servant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mayur-dot-ai/ClawServant/agent"
	"github.com/mayur-dot-ai/ClawServant/config"
	"github.com/mayur-dot-ai/ClawServant/memory"
)

// recentMemoryCount is how many records the system prompt carries.
const recentMemoryCount = 5

// recentMemoryChars truncates each carried record's content.
const recentMemoryChars = 100

// Servant is the assembled agent: workspace, brain, memory, state, and the
// tool-augmented think loop.
type Servant struct {
	cfg   config.Config
	ws    *agent.Workspace
	loop  *agent.Loop
	brain *Brain
	store *memory.Store
	state *memory.State
	log   *slog.Logger
}

// New builds a servant over its workspace. The workspace subdirectories
// (tasks/, results/, brain/) are created if missing.
func New(cfg config.Config, caller agent.Caller) (*Servant, error) {
	ws := agent.NewWorkspace(cfg.Workspace)
	if err := ws.Init(); err != nil {
		return nil, fmt.Errorf("init workspace: %w", err)
	}
	for _, sub := range []string{"tasks", "results", "brain"} {
		if err := os.MkdirAll(filepath.Join(ws.Root(), sub), 0o755); err != nil {
			return nil, fmt.Errorf("init workspace: %w", err)
		}
	}

	store, err := memory.Open(filepath.Join(ws.Root(), "memory.jsonl"))
	if err != nil {
		return nil, err
	}

	brain := NewBrain(filepath.Join(ws.Root(), "brain"))
	if err := brain.Load(); err != nil {
		return nil, err
	}

	tools := agent.NewRegistry(agent.WithToolTimeout(cfg.ToolTimeout))
	agent.RegisterCoreTools(tools, ws, agent.CoreToolOptions{
		EnableShell:  cfg.EnableShell,
		ShellTimeout: cfg.ToolTimeout,
	})

	return &Servant{
		cfg:   cfg,
		ws:    ws,
		loop:  agent.NewLoop(caller, tools),
		brain: brain,
		store: store,
		state: memory.LoadState(filepath.Join(ws.Root(), "state.json"), cfg.Name),
		log:   slog.With("component", "servant", "name", cfg.Name),
	}, nil
}

// Memory exposes the servant's memory store.
func (s *Servant) Memory() *memory.Store { return s.store }

// SystemPrompt assembles the model's system instruction: identity,
// knowledge, current context, and recent memory.
func (s *Servant) SystemPrompt() string {
	var sb strings.Builder
	sb.WriteString(s.brain.Identity())

	if know := s.brain.Knowledge(); know != "" {
		sb.WriteString("\n\n# Knowledge\n")
		sb.WriteString(know)
	}

	fmt.Fprintf(&sb, "\n\n# Current context\nTime: %s\nCycle: %d\nTasks completed: %d\n",
		time.Now().UTC().Format(time.RFC3339), s.state.Cycles, s.state.TasksCompleted)

	recent := s.store.Recent(recentMemoryCount, "")
	if len(recent) > 0 {
		sb.WriteString("\n# Recent memory\n")
		for _, rec := range recent {
			content := rec.Content
			if len(content) > recentMemoryChars {
				content = content[:recentMemoryChars] + "..."
			}
			fmt.Fprintf(&sb, "- [%s] %s\n", rec.Kind, content)
		}
	}
	return sb.String()
}

// TaskResult is the persisted outcome of one processed task.
type TaskResult struct {
	ID              string    `json:"id"`
	Task            string    `json:"task"`
	Response        string    `json:"response"`
	Provider        string    `json:"provider"`
	Iterations      int       `json:"iterations"`
	HitIterationCap bool      `json:"hit_iteration_cap"`
	Timestamp       time.Time `json:"timestamp"`
}

// ProcessTask runs one task through the think loop, persists the result
// under results/, and records both task and response in memory.
func (s *Servant) ProcessTask(ctx context.Context, task string) (*TaskResult, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return nil, fmt.Errorf("empty task")
	}

	if err := s.store.Append("task", task, 7); err != nil {
		s.log.Warn("failed to record task", "error", err)
	}

	res, err := s.loop.Think(ctx, agent.ThinkRequest{
		System:            s.SystemPrompt(),
		User:              task,
		MaxTokens:         s.cfg.MaxTokens,
		AllowTools:        true,
		MaxToolIterations: s.cfg.MaxToolIterations,
	})
	if err != nil {
		return nil, fmt.Errorf("process task: %w", err)
	}

	result := &TaskResult{
		ID:              uuid.New().String()[:8],
		Task:            task,
		Response:        res.Text,
		Provider:        res.Provider,
		Iterations:      res.Iterations,
		HitIterationCap: res.HitIterationCap,
		Timestamp:       time.Now().UTC(),
	}
	if err := s.writeResult(result); err != nil {
		s.log.Warn("failed to write result file", "error", err)
	}
	if err := s.store.Append("result", res.Text, 5); err != nil {
		s.log.Warn("failed to record result", "error", err)
	}

	s.state.TasksCompleted++
	if err := s.state.Save(); err != nil {
		s.log.Warn("state save failed", "error", err)
	}
	return result, nil
}

func (s *Servant) writeResult(result *TaskResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	name := fmt.Sprintf("task_%d_%s.json", result.Timestamp.Unix(), result.ID)
	return os.WriteFile(filepath.Join(s.ws.Root(), "results", name), data, 0o644)
}

// Status summarizes the servant's persisted state for the CLI.
func (s *Servant) Status() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "name: %s\n", s.state.Name)
	fmt.Fprintf(&sb, "started: %s\n", s.state.Started.Format(time.RFC3339))
	fmt.Fprintf(&sb, "cycles: %d\n", s.state.Cycles)
	fmt.Fprintf(&sb, "tasks completed: %d\n", s.state.TasksCompleted)
	if !s.state.LastCycle.IsZero() {
		fmt.Fprintf(&sb, "last cycle: %s\n", s.state.LastCycle.Format(time.RFC3339))
	}
	fmt.Fprintf(&sb, "memory records: %d\n", s.store.Len())
	fmt.Fprintf(&sb, "workspace: %s\n", s.ws.Root())
	return sb.String()
}
