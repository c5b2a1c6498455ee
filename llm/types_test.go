package llm

import (
	"encoding/json"
	"testing"
)

func TestCredentialsUnmarshal(t *testing.T) {
	doc := `{
		"providers": [
			{"name": "anthropic", "config": {"api_key": "sk-test", "temperature": 0.5}},
			{"name": "bedrock", "enabled": false, "config": {"region": "eu-west-1"}}
		],
		"fallback_order": ["anthropic", "bedrock"]
	}`

	var creds Credentials
	if err := json.Unmarshal([]byte(doc), &creds); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if len(creds.Providers) != 2 {
		t.Fatalf("providers = %d, want 2", len(creds.Providers))
	}

	anthropic := creds.Providers[0]
	if !anthropic.IsEnabled() {
		t.Error("provider without enabled field should default to enabled")
	}
	if got := anthropic.String("api_key", ""); got != "sk-test" {
		t.Errorf("api_key = %q", got)
	}
	if temp, ok := anthropic.Float("temperature"); !ok || temp != 0.5 {
		t.Errorf("temperature = %v, %v", temp, ok)
	}

	bedrock := creds.Providers[1]
	if bedrock.IsEnabled() {
		t.Error("enabled: false should disable the provider")
	}
	if got := bedrock.String("region", "us-east-1"); got != "eu-west-1" {
		t.Errorf("region = %q", got)
	}

	if len(creds.FallbackOrder) != 2 || creds.FallbackOrder[0] != "anthropic" {
		t.Errorf("fallback_order = %v", creds.FallbackOrder)
	}
}

func TestProviderConfigFallbacks(t *testing.T) {
	cfg := ProviderConfig{Name: "openai", Settings: map[string]any{"model": ""}}

	if got := cfg.String("model", "gpt-4o-mini"); got != "gpt-4o-mini" {
		t.Errorf("empty setting should fall back, got %q", got)
	}
	if got := cfg.String("missing", "default"); got != "default" {
		t.Errorf("missing setting should fall back, got %q", got)
	}
	if _, ok := cfg.Float("missing"); ok {
		t.Error("Float on missing key should report false")
	}
}

func TestCallRequestMaxTokensDefault(t *testing.T) {
	if got := (CallRequest{}).maxTokens(); got != DefaultMaxTokens {
		t.Errorf("maxTokens() = %d, want %d", got, DefaultMaxTokens)
	}
	if got := (CallRequest{MaxTokens: 1024}).maxTokens(); got != 1024 {
		t.Errorf("maxTokens() = %d, want 1024", got)
	}
}
