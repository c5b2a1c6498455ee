package llm

import (
	"context"
	"errors"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider speaks the chat-completions API through the official SDK.
// The system instruction is prepended as the first conversation turn with
// the "system" role marker, which is where this backend expects it.
type OpenAIProvider struct {
	client openai.Client
	apiKey string
	model  string
}

func newOpenAIProvider(cfg ProviderConfig) (Provider, error) {
	apiKey := cfg.String("api_key", os.Getenv("OPENAI_API_KEY"))
	model := cfg.String("model", DefaultModel("openai"))

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL := cfg.String("base_url", ""); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		apiKey: apiKey,
		model:  model,
	}, nil
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Available() bool { return p.apiKey != "" }

func (p *OpenAIProvider) Call(ctx context.Context, req CallRequest) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.User))

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(p.model),
		Messages:  messages,
		MaxTokens: openai.Int(int64(ClampMaxTokens(p.model, req.maxTokens()))),
	})
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			return "", errorFromStatus("openai", apierr.StatusCode, apierr.Error(), err)
		}
		return "", &ProviderError{Provider: "openai", Message: err.Error(), Retryable: true, Cause: err}
	}

	if len(resp.Choices) == 0 {
		return "", parseFailure("openai", "response contained no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
