package llm

// ModelInfo describes a known model, enough to pick sane defaults.
type ModelInfo struct {
	ID            string
	Provider      string
	ContextWindow int
}

// models is the built-in catalog consulted when a provider's configuration
// omits a model identifier.
var models = []ModelInfo{
	{ID: "anthropic.claude-haiku-4-5-20251001-v1:0", Provider: "bedrock", ContextWindow: 200000},
	{ID: "claude-3-5-sonnet-20241022", Provider: "anthropic", ContextWindow: 200000},
	{ID: "gpt-4o-mini", Provider: "openai", ContextWindow: 128000},
	{ID: "llama2", Provider: "ollama", ContextWindow: 4096},
}

// DefaultModel returns the catalog's first model for a provider, or "".
func DefaultModel(provider string) string {
	for _, m := range models {
		if m.Provider == provider {
			return m.ID
		}
	}
	return ""
}

// LookupModel returns catalog info for a model ID, or nil.
func LookupModel(id string) *ModelInfo {
	for i := range models {
		if models[i].ID == id {
			return &models[i]
		}
	}
	return nil
}

// ClampMaxTokens caps a requested output budget at the model's context
// window when the model is in the catalog. Backends reject budgets beyond
// the window; clamping here keeps an oversized config from failing every
// call. Unknown models pass through unchanged.
func ClampMaxTokens(model string, n int) int {
	if info := LookupModel(model); info != nil && n > info.ContextWindow {
		return info.ContextWindow
	}
	return n
}
