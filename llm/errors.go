package llm

import (
	"fmt"
	"strings"
)

// ProviderError is returned when a backend call fails. It carries the
// backend's diagnostic so the fallback log stays useful to operators.
type ProviderError struct {
	Provider   string
	Message    string
	StatusCode int // 0 when the failure never reached an HTTP status
	Retryable  bool
	Cause      error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("[%s] %s (status=%d)", e.Provider, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("[%s] %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// UnavailableError reports that a provider's minimum configuration is
// missing. It is detected without a network call and never retried.
type UnavailableError struct {
	Provider string
	Reason   string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("[%s] unavailable: %s", e.Provider, e.Reason)
}

// Attempt records why one fallback candidate did not produce a result.
type Attempt struct {
	Provider string
	Reason   string // set when the candidate was skipped without a call
	Err      error  // set when the call itself failed
}

func (a Attempt) String() string {
	if a.Err != nil {
		return fmt.Sprintf("%s: %v", a.Provider, a.Err)
	}
	return fmt.Sprintf("%s: %s", a.Provider, a.Reason)
}

// NoProviderError is the terminal failure when every candidate in the
// fallback order was exhausted. It names each provider tried and why it
// was skipped or failed.
type NoProviderError struct {
	Attempts []Attempt
}

func (e *NoProviderError) Error() string {
	if len(e.Attempts) == 0 {
		return "no LLM providers available: fallback order is empty"
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.String()
	}
	return "no LLM providers available: " + strings.Join(parts, "; ")
}

// IsRetryable reports whether err represents a transient failure. The
// registry does not retry a provider, but hosts use this to decide whether
// a whole think invocation is worth repeating later.
func IsRetryable(err error) bool {
	switch e := err.(type) {
	case *ProviderError:
		return e.Retryable
	case *UnavailableError:
		return false
	case *NoProviderError:
		for _, a := range e.Attempts {
			if a.Err != nil && IsRetryable(a.Err) {
				return true
			}
		}
		return false
	default:
		return err != nil
	}
}

// errorFromStatus maps an HTTP status code from a backend to a
// ProviderError with the right retryability.
func errorFromStatus(provider string, status int, message string, cause error) *ProviderError {
	retryable := false
	switch status {
	case 408, 429, 500, 502, 503, 504:
		retryable = true
	case 400, 401, 403, 404, 413, 422:
		retryable = false
	default:
		// Unknown statuses default to retryable so fallback diagnostics
		// don't discourage a later re-run.
		retryable = true
	}
	return &ProviderError{
		Provider:   provider,
		Message:    message,
		StatusCode: status,
		Retryable:  retryable,
		Cause:      cause,
	}
}

// classifyMessage builds a ProviderError from an error whose only signal is
// its message text. Used for backends (gollm) that do not expose a typed
// error hierarchy.
func classifyMessage(provider string, err error) *ProviderError {
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "401"), strings.Contains(lower, "unauthorized"), strings.Contains(lower, "invalid api key"):
		return errorFromStatus(provider, 401, msg, err)
	case strings.Contains(lower, "403"), strings.Contains(lower, "forbidden"):
		return errorFromStatus(provider, 403, msg, err)
	case strings.Contains(lower, "404"), strings.Contains(lower, "not found"):
		return errorFromStatus(provider, 404, msg, err)
	case strings.Contains(lower, "429"), strings.Contains(lower, "rate limit"):
		return errorFromStatus(provider, 429, msg, err)
	case strings.Contains(lower, "context length"), strings.Contains(lower, "too many tokens"):
		return errorFromStatus(provider, 413, msg, err)
	case strings.Contains(lower, "500"), strings.Contains(lower, "internal server"):
		return errorFromStatus(provider, 500, msg, err)
	default:
		return &ProviderError{Provider: provider, Message: msg, Retryable: true, Cause: err}
	}
}

// parseFailure wraps a malformed backend response.
func parseFailure(provider, detail string) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Message:   "malformed response: " + detail,
		Retryable: true,
	}
}
