package servant

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mayur-dot-ai/ClawServant/agent"
	"github.com/mayur-dot-ai/ClawServant/llm"
)

// reflectionPrompt drives the idle think cycle between tasks.
const reflectionPrompt = `Reflect briefly on your recent activity. ` +
	`Note anything worth remembering in one or two sentences.`

// Run executes the continuous cycle: reload the brain when it changed,
// process pending task files, reflect, persist, sleep. It returns when ctx
// is cancelled or the optional duration elapses.
func (s *Servant) Run(ctx context.Context, duration time.Duration) error {
	s.log.Info("starting run loop", "interval", s.cfg.Interval, "duration", duration)

	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	for {
		s.Cycle(ctx)

		select {
		case <-ctx.Done():
			s.log.Info("run loop stopping", "reason", ctx.Err())
			return nil
		case <-time.After(s.cfg.Interval):
		}
	}
}

// Cycle runs one iteration of the loop: brain reload, task processing, a
// reflective think, and state persistence. Provider exhaustion is logged
// and the cycle still completes; the next cycle tries again.
func (s *Servant) Cycle(ctx context.Context) {
	if s.brain.Stale() {
		s.log.Info("brain changed, reloading")
		if err := s.brain.Load(); err != nil {
			s.log.Warn("brain reload failed", "error", err)
		}
	}

	for _, path := range s.pendingTasks() {
		if ctx.Err() != nil {
			return
		}
		if err := s.processTaskFile(ctx, path); err != nil {
			s.log.Error("task failed", "file", filepath.Base(path), "error", err)
			if isProviderExhaustion(err) {
				// Leave the file in place; the task retries once a
				// provider comes back.
				break
			}
		}
	}

	s.reflect(ctx)

	s.state.BumpCycle()
	if err := s.state.Save(); err != nil {
		s.log.Warn("state save failed", "error", err)
	}
}

// pendingTasks lists task files in name order, so numbered tasks process
// predictably.
func (s *Servant) pendingTasks() []string {
	matches, err := filepath.Glob(filepath.Join(s.ws.Root(), "tasks", "*.md"))
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}

// processTaskFile reads, processes, and deletes one task file. The file is
// removed only after a successful run.
func (s *Servant) processTaskFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read task: %w", err)
	}

	s.log.Info("processing task", "file", filepath.Base(path))
	result, err := s.ProcessTask(ctx, string(data))
	if err != nil {
		return err
	}
	s.log.Info("task done", "file", filepath.Base(path),
		"provider", result.Provider, "iterations", result.Iterations)

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove task: %w", err)
	}
	return nil
}

// reflect runs one tool-free think and records the thought. Failures are
// logged and dropped: reflection is best-effort.
func (s *Servant) reflect(ctx context.Context) {
	res, err := s.loop.Think(ctx, agent.ThinkRequest{
		System:    s.SystemPrompt(),
		User:      reflectionPrompt,
		MaxTokens: s.cfg.MaxTokens,
	})
	if err != nil {
		s.log.Debug("reflection skipped", "error", err)
		return
	}
	if err := s.store.Append("thought", res.Text, 3); err != nil {
		s.log.Warn("failed to record thought", "error", err)
	}
}

func isProviderExhaustion(err error) bool {
	var noProv *llm.NoProviderError
	return errors.As(err, &noProv)
}
