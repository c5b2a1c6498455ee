package llm

import (
	"context"
	"fmt"

	"github.com/teilomillet/gollm"
)

// GollmProvider is the escape hatch for backends outside the built-in set.
// It delegates to gollm, which carries its own provider matrix (groq,
// mistral, deepseek, and friends); the credentials entry names the backend
// in its config block.
type GollmProvider struct {
	backend string
	llm     gollm.LLM
}

func newGollmProvider(cfg ProviderConfig) (Provider, error) {
	backend := cfg.String("provider", "")
	if backend == "" {
		return nil, fmt.Errorf("custom provider: config.provider is required")
	}
	model := cfg.String("model", "")
	if model == "" {
		return nil, fmt.Errorf("custom provider: config.model is required")
	}

	gollmOpts := []gollm.ConfigOption{
		gollm.SetProvider(backend),
		gollm.SetModel(model),
		gollm.SetMaxTokens(DefaultMaxTokens),
		gollm.SetMaxRetries(0), // the registry owns failure handling
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if apiKey := cfg.String("api_key", ""); apiKey != "" {
		gollmOpts = append(gollmOpts, gollm.SetAPIKey(apiKey))
	}
	if t, ok := cfg.Float("temperature"); ok {
		gollmOpts = append(gollmOpts, gollm.SetTemperature(t))
	}

	llm, err := gollm.NewLLM(gollmOpts...)
	if err != nil {
		return nil, fmt.Errorf("custom provider %q: %w", backend, err)
	}
	return &GollmProvider{backend: backend, llm: llm}, nil
}

func (p *GollmProvider) Name() string { return "custom" }

func (p *GollmProvider) Available() bool { return p.llm != nil }

func (p *GollmProvider) Call(ctx context.Context, req CallRequest) (string, error) {
	promptOpts := []gollm.PromptOption{
		gollm.WithMaxLength(req.maxTokens()),
	}
	if req.System != "" {
		promptOpts = append(promptOpts, gollm.WithSystemPrompt(req.System, gollm.CacheTypeEphemeral))
	}
	prompt := gollm.NewPrompt(req.User, promptOpts...)

	text, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		return "", classifyMessage("custom", err)
	}
	if text == "" {
		return "", parseFailure("custom", "empty generation")
	}
	return text, nil
}
