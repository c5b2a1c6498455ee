package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultToolTimeout bounds one handler invocation.
const DefaultToolTimeout = 60 * time.Second

// Handler executes one tool call. Handlers return the textual output the
// model will see, or an error; they should honor ctx cancellation.
type Handler func(ctx context.Context, params map[string]any) (string, error)

// ToolResult is the outcome of one tool execution. OK=false never carries
// an error value: the failure text travels in Output so the model can read
// it and adjust.
type ToolResult struct {
	Tool   string `json:"tool"`
	OK     bool   `json:"ok"`
	Output string `json:"output"`
}

// Registry maps tool names to handlers. Registration is expected at startup
// but is safe at any time.
type Registry struct {
	handlers map[string]Handler
	timeout  time.Duration
	log      *slog.Logger
	mu       sync.RWMutex
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithToolTimeout sets the per-handler execution timeout.
func WithToolTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewRegistry creates an empty tool registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		handlers: make(map[string]Handler),
		timeout:  DefaultToolTimeout,
		log:      slog.With("component", "agent"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds or replaces a handler.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Names returns the registered tool names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// Execute runs one tool call and always returns a result: unknown tools,
// handler errors, panics, and timeouts all become OK=false with the
// diagnostic in Output. Nothing escapes to the caller, so one bad call
// never aborts a think iteration.
func (r *Registry) Execute(ctx context.Context, call ToolCall) ToolResult {
	r.mu.RLock()
	h, ok := r.handlers[call.Tool]
	r.mu.RUnlock()
	if !ok {
		return ToolResult{Tool: call.Tool, Output: "tool not found: " + call.Tool}
	}

	execCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type outcome struct {
		output string
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{err: fmt.Errorf("tool panicked: %v", rec)}
			}
		}()
		out, err := h(execCtx, call.Params)
		done <- outcome{output: out, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			r.log.Warn("tool failed", "tool", call.Tool, "error", o.err)
			return ToolResult{Tool: call.Tool, Output: "tool failed: " + o.err.Error()}
		}
		return ToolResult{Tool: call.Tool, OK: true, Output: TruncateToolOutput(o.output, call.Tool)}
	case <-execCtx.Done():
		// A handler that ignores ctx keeps running in its goroutine; the
		// loop moves on regardless.
		r.log.Warn("tool timed out", "tool", call.Tool, "timeout", r.timeout)
		return ToolResult{Tool: call.Tool, Output: fmt.Sprintf("tool timed out after %s", r.timeout)}
	}
}

// GetStringParam extracts a string parameter.
func GetStringParam(params map[string]any, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetIntParam extracts an integer parameter. JSON numbers decode as
// float64; both forms are accepted.
func GetIntParam(params map[string]any, key string) (int, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

// GetBoolParam extracts a boolean parameter.
func GetBoolParam(params map[string]any, key string) (bool, bool) {
	v, ok := params[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
