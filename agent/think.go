package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mayur-dot-ai/ClawServant/llm"
)

// DefaultMaxToolIterations bounds how many model calls one Think makes.
const DefaultMaxToolIterations = 10

// Caller is the LLM surface the loop needs. *llm.Registry satisfies it.
type Caller interface {
	Call(ctx context.Context, req llm.CallRequest) (text string, provider string, err error)
}

// ThinkRequest is one think invocation.
type ThinkRequest struct {
	System    string
	User      string
	MaxTokens int

	// AllowTools enables tool extraction and execution. When false the
	// request is a single model call.
	AllowTools bool

	// MaxToolIterations caps model calls per Think; zero means
	// DefaultMaxToolIterations.
	MaxToolIterations int
}

// ThinkResult is the outcome of a completed think session.
type ThinkResult struct {
	// Text is the model's final response. When HitIterationCap is set it is
	// the last raw response and may still contain tool-call spans.
	Text string

	// HitIterationCap reports that the loop stopped because the model was
	// still requesting tools at the cap. A normal outcome, not an error.
	HitIterationCap bool

	// Iterations is the number of model calls made.
	Iterations int

	// Provider produced the final response.
	Provider string

	// SessionID identifies this think session in events and logs.
	SessionID string
}

// Loop drives the think cycle: call the model, execute any tool calls in
// order, feed results back, repeat until the model answers without tools or
// the iteration cap is hit.
type Loop struct {
	caller  Caller
	tools   *Registry
	emitter *EventEmitter
	log     *slog.Logger
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithEmitter attaches an event emitter for session observability.
func WithEmitter(e *EventEmitter) LoopOption {
	return func(l *Loop) { l.emitter = e }
}

// NewLoop creates a think loop over a caller and a tool registry.
func NewLoop(caller Caller, tools *Registry, opts ...LoopOption) *Loop {
	l := &Loop{
		caller: caller,
		tools:  tools,
		log:    slog.With("component", "agent"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loop) emit(sessionID string, kind EventKind, data map[string]any) {
	if l.emitter != nil {
		l.emitter.Emit(sessionID, kind, data)
	}
}

// Think runs one session. The only hard failure is the caller erroring
// (every provider exhausted, or ctx cancelled); tool failures and the
// iteration cap are reported in the result.
func (l *Loop) Think(ctx context.Context, req ThinkRequest) (*ThinkResult, error) {
	maxIters := req.MaxToolIterations
	if maxIters <= 0 {
		maxIters = DefaultMaxToolIterations
	}

	sessionID := uuid.New().String()[:8]
	log := l.log.With("session", sessionID)
	l.emit(sessionID, EventSessionStart, map[string]any{"allow_tools": req.AllowTools})

	prompt := req.User
	var signatures []string

	for iter := 1; ; iter++ {
		text, provider, err := l.caller.Call(ctx, llm.CallRequest{
			System:    req.System,
			User:      prompt,
			MaxTokens: req.MaxTokens,
		})
		if err != nil {
			l.emit(sessionID, EventSessionEnd, map[string]any{"error": err.Error()})
			return nil, err
		}
		l.emit(sessionID, EventProviderCall, map[string]any{"provider": provider, "iteration": iter})

		if !req.AllowTools {
			l.emit(sessionID, EventSessionEnd, nil)
			return &ThinkResult{Text: text, Iterations: iter, Provider: provider, SessionID: sessionID}, nil
		}

		calls := ParseToolCalls(text)
		if len(calls) == 0 {
			l.emit(sessionID, EventSessionEnd, nil)
			return &ThinkResult{Text: text, Iterations: iter, Provider: provider, SessionID: sessionID}, nil
		}

		// Strictly sequential, in extraction order. A failed call does not
		// stop the ones after it.
		results := make([]ToolResult, 0, len(calls))
		for _, call := range calls {
			l.emit(sessionID, EventToolStart, map[string]any{"tool": call.Tool})
			res := l.tools.Execute(ctx, call)
			l.emit(sessionID, EventToolEnd, map[string]any{"tool": call.Tool, "ok": res.OK})
			results = append(results, res)
			signatures = append(signatures, callSignature(call))
		}

		// The cap is checked only after the batch ran: tool calls in the
		// final response still take effect, their results just never reach
		// the model.
		if iter >= maxIters {
			log.Info("iteration cap reached with pending tool calls", "iterations", iter, "executed", len(results))
			l.emit(sessionID, EventIterationCap, map[string]any{"iterations": iter})
			l.emit(sessionID, EventSessionEnd, nil)
			return &ThinkResult{
				Text:            text,
				HitIterationCap: true,
				Iterations:      iter,
				Provider:        provider,
				SessionID:       sessionID,
			}, nil
		}

		looping := DetectLoop(signatures, loopWindow)
		if looping {
			log.Warn("repeating tool calls detected, steering")
			l.emit(sessionID, EventLoopDetected, nil)
		}
		prompt = continuationPrompt(req.User, results, looping)
	}
}

// continuationPrompt folds the original request and the latest tool results
// into the next user turn.
func continuationPrompt(original string, results []ToolResult, looping bool) string {
	var sb strings.Builder
	sb.WriteString(original)
	sb.WriteString("\n\nTool results:\n")
	for _, r := range results {
		status := "ok"
		if !r.OK {
			status = "failed"
		}
		fmt.Fprintf(&sb, "[%s] %s: %s\n", status, r.Tool, r.Output)
	}
	if looping {
		sb.WriteString("\nThe recent tool calls are repeating. Try a different approach or give your final answer.\n")
	}
	sb.WriteString("\nContinue. Use the tool results above to finish the task, or answer directly.")
	return sb.String()
}
