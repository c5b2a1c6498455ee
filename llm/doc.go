// Package llm provides a provider-agnostic LLM access layer.
//
// Every backend (AWS Bedrock, Anthropic, OpenAI, a local Ollama daemon, or
// any gollm-supported gateway) is wrapped in an adapter satisfying the
// Provider interface, and a Registry tries configured providers in a
// declared fallback order until one succeeds.
//
// # Architecture
//
//   - Provider: the uniform contract every backend adapter implements
//   - Concrete providers: bedrock.go, anthropic.go, openai.go, ollama.go,
//     gollm.go — each translates the contract into the backend's exact
//     request/response shape
//   - Registry: ordered fallback selection, first successful call wins
//   - Error taxonomy: ProviderError, UnavailableError, NoProviderError
//
// # Quick start
//
//	creds, _ := config.LoadCredentials("credentials.json") // or build llm.Credentials directly
//	registry := llm.NewRegistry(creds)
//
//	text, provider, err := registry.Call(ctx, llm.CallRequest{
//	    System:    "You are a helpful assistant.",
//	    User:      "Explain fallback ordering in one sentence.",
//	    MaxTokens: 500,
//	})
package llm
