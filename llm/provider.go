package llm

import "context"

// Provider is the interface every backend adapter must implement.
type Provider interface {
	// Name returns the provider identifier (e.g. "bedrock", "anthropic").
	Name() string

	// Available reports whether the provider has the minimum configuration
	// to attempt a call. It must be cheap; only the local Ollama adapter
	// probes its daemon, since reachability is that backend's only
	// credential.
	Available() bool

	// Call performs one blocking request/response exchange and returns the
	// generated text. Failures are *ProviderError values carrying the
	// backend's diagnostic message.
	Call(ctx context.Context, req CallRequest) (string, error)
}

// Factory constructs a Provider from its configuration block.
type Factory func(cfg ProviderConfig) (Provider, error)

// builtinFactories is the startup-time table of known provider types.
// Registration is configuration-driven: NewRegistry instantiates only the
// providers that appear in the credentials document.
var builtinFactories = map[string]Factory{
	"bedrock":   newBedrockProvider,
	"anthropic": newAnthropicProvider,
	"openai":    newOpenAIProvider,
	"ollama":    newOllamaProvider,
	"custom":    newGollmProvider,
}
