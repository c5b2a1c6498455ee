package llm

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

func TestBedrockAvailability(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		want     bool
	}{
		{
			name: "full credentials",
			settings: map[string]any{
				"access_key": "AKIA",
				"secret_key": "shh",
				"model_id":   "us.anthropic.claude-haiku-4-5-20251001-v1:0",
			},
			want: true,
		},
		{
			name:     "no credentials",
			settings: map[string]any{"model_id": "us.anthropic.claude-haiku-4-5-20251001-v1:0"},
			want:     false,
		},
		{
			name:     "missing secret",
			settings: map[string]any{"access_key": "AKIA", "model_id": "m"},
			want:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newBedrockProvider(ProviderConfig{Name: "bedrock", Settings: tt.settings})
			if err != nil {
				t.Fatalf("newBedrockProvider() error = %v", err)
			}
			if got := p.Available(); got != tt.want {
				t.Errorf("Available() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBedrockFactoryDefaults(t *testing.T) {
	p, err := newBedrockProvider(ProviderConfig{Name: "bedrock", Settings: map[string]any{}})
	if err != nil {
		t.Fatalf("newBedrockProvider() error = %v", err)
	}
	bp := p.(*BedrockProvider)
	if bp.region != "us-east-1" {
		t.Errorf("region = %q, want us-east-1", bp.region)
	}
	if bp.temperature != 1 {
		t.Errorf("temperature = %v, want 1", bp.temperature)
	}
}

func TestBedrockClassifyThroughputMode(t *testing.T) {
	p := &BedrockProvider{modelID: "anthropic.claude-haiku-4-5-20251001-v1:0"}

	err := p.classify(&brtypes.ValidationException{
		Message: aws.String("Invocation of model ID anthropic.claude-haiku-4-5-20251001-v1:0 with on-demand throughput isn't supported. Retry your request with the ID or ARN of an inference profile that contains this model."),
	})
	provErr, ok := err.(*ProviderError)
	if !ok {
		t.Fatalf("classify() = %T, want *ProviderError", err)
	}
	if provErr.Retryable {
		t.Error("throughput-mode misconfiguration should not be retryable")
	}
	if provErr.StatusCode != 400 {
		t.Errorf("StatusCode = %d, want 400", provErr.StatusCode)
	}
}

func TestBedrockClassifyThrottling(t *testing.T) {
	p := &BedrockProvider{modelID: "m"}

	err := p.classify(&brtypes.ThrottlingException{Message: aws.String("too many requests")})
	provErr, ok := err.(*ProviderError)
	if !ok {
		t.Fatalf("classify() = %T, want *ProviderError", err)
	}
	if !provErr.Retryable {
		t.Error("throttling should be retryable")
	}
	if provErr.StatusCode != 429 {
		t.Errorf("StatusCode = %d, want 429", provErr.StatusCode)
	}
}

func TestBedrockClassifyGenericValidation(t *testing.T) {
	p := &BedrockProvider{modelID: "m"}

	err := p.classify(&brtypes.ValidationException{Message: aws.String("messages must not be empty")})
	provErr, ok := err.(*ProviderError)
	if !ok {
		t.Fatalf("classify() = %T, want *ProviderError", err)
	}
	if provErr.Retryable {
		t.Error("validation errors should not be retryable")
	}
}
