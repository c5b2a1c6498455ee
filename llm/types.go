package llm

// CallRequest is the input to a single provider exchange.
type CallRequest struct {
	// System is the system instruction. Each adapter places it where its
	// backend expects: Bedrock and Anthropic use a dedicated field, OpenAI
	// prepends a system-role turn, Ollama concatenates it as plain text.
	System string

	// User is the user prompt for this turn.
	User string

	// MaxTokens bounds the generated output. Zero means DefaultMaxTokens.
	MaxTokens int
}

// DefaultMaxTokens is used when a CallRequest leaves MaxTokens unset.
const DefaultMaxTokens = 500

func (r CallRequest) maxTokens() int {
	if r.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return r.MaxTokens
}

// ProviderConfig describes one configured backend. Immutable once loaded.
type ProviderConfig struct {
	Name string `json:"name"`

	// Enabled defaults to true when absent, so hand-written credential
	// files that omit the field keep working.
	Enabled *bool `json:"enabled,omitempty"`

	// Settings holds backend-specific keys: region, model, api_key,
	// access_key, secret_key, base_url, temperature, top_p, provider.
	Settings map[string]any `json:"config"`
}

// IsEnabled reports whether the provider may be instantiated.
func (c ProviderConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// String returns a string-valued setting, or fallback when the key is
// absent or not a string.
func (c ProviderConfig) String(key, fallback string) string {
	if v, ok := c.Settings[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// Float returns a float-valued setting. JSON numbers decode as float64;
// integer values are accepted too.
func (c ProviderConfig) Float(key string) (float64, bool) {
	switch v := c.Settings[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Credentials is the parsed credentials document.
//
// Every name in FallbackOrder should reference an entry in Providers; a
// name with no matching enabled, available provider is skipped during
// fallback, never fatal.
type Credentials struct {
	Providers     []ProviderConfig `json:"providers"`
	FallbackOrder []string         `json:"fallback_order"`
}

// DefaultFallbackOrder is used when the credentials document does not
// declare one.
var DefaultFallbackOrder = []string{"bedrock", "anthropic", "openai", "ollama"}
