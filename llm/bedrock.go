package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// BedrockProvider speaks the AWS Bedrock converse API. Credentials come
// from the credentials document only (static keys), keeping the agent
// folder self-contained; the ambient AWS credential chain is deliberately
// not consulted.
//
// Content blocks are the plain-text union member — the converse API rejects
// payloads that carry an auxiliary type tag next to the text.
type BedrockProvider struct {
	client      *bedrockruntime.Client
	region      string
	modelID     string
	temperature float64
}

func newBedrockProvider(cfg ProviderConfig) (Provider, error) {
	p := &BedrockProvider{
		region:      cfg.String("region", "us-east-1"),
		modelID:     cfg.String("model_id", ""),
		temperature: 1,
	}
	if t, ok := cfg.Float("temperature"); ok {
		p.temperature = t
	}

	accessKey := cfg.String("access_key", "")
	secretKey := cfg.String("secret_key", "")
	if accessKey != "" && secretKey != "" {
		p.client = bedrockruntime.New(bedrockruntime.Options{
			Region:      p.region,
			Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		})
	}
	return p, nil
}

func (p *BedrockProvider) Name() string { return "bedrock" }

func (p *BedrockProvider) Available() bool { return p.client != nil && p.modelID != "" }

func (p *BedrockProvider) Call(ctx context.Context, req CallRequest) (string, error) {
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(p.modelID),
		Messages: []brtypes.Message{{
			Role: brtypes.ConversationRoleUser,
			Content: []brtypes.ContentBlock{
				&brtypes.ContentBlockMemberText{Value: req.User},
			},
		}},
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens:   aws.Int32(int32(ClampMaxTokens(p.modelID, req.maxTokens()))),
			Temperature: aws.Float32(float32(p.temperature)),
		},
	}
	if req.System != "" {
		input.System = []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: req.System},
		}
	}

	out, err := p.client.Converse(ctx, input)
	if err != nil {
		return "", p.classify(err)
	}

	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", parseFailure("bedrock", "converse output carried no message")
	}
	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if tb, ok := block.(*brtypes.ContentBlockMemberText); ok {
			sb.WriteString(tb.Value)
		}
	}
	if sb.Len() == 0 {
		return "", parseFailure("bedrock", "message contained no text blocks")
	}
	return sb.String(), nil
}

// classify converts Bedrock's typed exceptions into the provider error
// taxonomy.
func (p *BedrockProvider) classify(err error) error {
	var validation *brtypes.ValidationException
	if errors.As(err, &validation) {
		msg := validation.ErrorMessage()
		if isThroughputModeError(msg) {
			return &ProviderError{
				Provider: "bedrock",
				Message: fmt.Sprintf(
					"unsupported throughput mode for model %q: on-demand invocation requires a region-prefixed inference profile ID (e.g. %q)",
					p.modelID, "us."+p.modelID),
				StatusCode: 400,
				Retryable:  false,
				Cause:      err,
			}
		}
		return errorFromStatus("bedrock", 400, msg, err)
	}

	var throttled *brtypes.ThrottlingException
	if errors.As(err, &throttled) {
		return errorFromStatus("bedrock", 429, throttled.ErrorMessage(), err)
	}
	var unavailable *brtypes.ServiceUnavailableException
	if errors.As(err, &unavailable) {
		return errorFromStatus("bedrock", 503, unavailable.ErrorMessage(), err)
	}
	var internal *brtypes.InternalServerException
	if errors.As(err, &internal) {
		return errorFromStatus("bedrock", 500, internal.ErrorMessage(), err)
	}
	var denied *brtypes.AccessDeniedException
	if errors.As(err, &denied) {
		return errorFromStatus("bedrock", 403, denied.ErrorMessage(), err)
	}
	var notFound *brtypes.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return errorFromStatus("bedrock", 404, notFound.ErrorMessage(), err)
	}

	return &ProviderError{Provider: "bedrock", Message: err.Error(), Retryable: true, Cause: err}
}

// isThroughputModeError recognizes the validation message Bedrock returns
// when a bare foundation-model ID is used where an inference profile is
// required.
func isThroughputModeError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "on-demand throughput") ||
		strings.Contains(lower, "inference profile")
}
