package llm

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider speaks the Anthropic messages API through the official
// SDK. The system instruction travels in the dedicated System field, never
// as a conversation turn.
type AnthropicProvider struct {
	client      anthropic.Client
	apiKey      string
	model       string
	temperature *float64
	topP        *float64
	log         *slog.Logger
}

func newAnthropicProvider(cfg ProviderConfig) (Provider, error) {
	apiKey := cfg.String("api_key", os.Getenv("ANTHROPIC_API_KEY"))
	model := cfg.String("model", DefaultModel("anthropic"))

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL := cfg.String("base_url", ""); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	p := &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		apiKey: apiKey,
		model:  model,
		log:    slog.With("component", "llm", "provider", "anthropic"),
	}

	// The messages API rejects requests that set both temperature and
	// top_p. Temperature wins; a configured top_p is dropped here instead
	// of surfacing the backend rejection on every call.
	t, hasTemp := cfg.Float("temperature")
	topP, hasTopP := cfg.Float("top_p")
	switch {
	case hasTemp && hasTopP:
		p.temperature = &t
		p.log.Debug("both temperature and top_p configured; dropping top_p")
	case hasTemp:
		p.temperature = &t
	case hasTopP:
		p.topP = &topP
	}

	return p, nil
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Available() bool { return p.apiKey != "" }

func (p *AnthropicProvider) Call(ctx context.Context, req CallRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(ClampMaxTokens(p.model, req.maxTokens())),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if p.temperature != nil {
		params.Temperature = anthropic.Float(*p.temperature)
	} else if p.topP != nil {
		params.TopP = anthropic.Float(*p.topP)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) {
			return "", errorFromStatus("anthropic", apierr.StatusCode, apierr.Error(), err)
		}
		return "", &ProviderError{Provider: "anthropic", Message: err.Error(), Retryable: true, Cause: err}
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	if sb.Len() == 0 {
		return "", parseFailure("anthropic", "no text content in message")
	}
	return sb.String(), nil
}
