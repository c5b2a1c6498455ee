package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const ollamaProbeTimeout = 2 * time.Second

// OllamaProvider talks to a local Ollama server over its native HTTP API.
// There is no official SDK dependency worth carrying for two endpoints; the
// JSON surface is tiny and stable.
type OllamaProvider struct {
	baseURL string
	model   string
	httpc   *http.Client
}

func newOllamaProvider(cfg ProviderConfig) (Provider, error) {
	baseURL := strings.TrimRight(cfg.String("base_url", "http://localhost:11434"), "/")
	return &OllamaProvider{
		baseURL: baseURL,
		model:   cfg.String("model", DefaultModel("ollama")),
		httpc:   &http.Client{},
	}, nil
}

func (p *OllamaProvider) Name() string { return "ollama" }

// Available probes the server's tag listing. This is the one provider whose
// availability check touches the network: a local daemon either answers in
// milliseconds or is not running at all.
func (p *OllamaProvider) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), ollamaProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := p.httpc.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	NumPredict int `json:"num_predict"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (p *OllamaProvider) Call(ctx context.Context, req CallRequest) (string, error) {
	// The generate endpoint takes a single prompt string, so the system
	// instruction is folded in ahead of the user text.
	prompt := req.User
	if req.System != "" {
		prompt = req.System + "\n\n" + req.User
	}

	body, err := json.Marshal(ollamaGenerateRequest{
		Model:   p.model,
		Prompt:  prompt,
		Stream:  false,
		Options: ollamaOptions{NumPredict: ClampMaxTokens(p.model, req.maxTokens())},
	})
	if err != nil {
		return "", &ProviderError{Provider: "ollama", Message: fmt.Sprintf("encode request: %v", err), Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", &ProviderError{Provider: "ollama", Message: fmt.Sprintf("build request: %v", err), Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpc.Do(httpReq)
	if err != nil {
		return "", &ProviderError{Provider: "ollama", Message: fmt.Sprintf("request failed: %v", err), Retryable: true, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", errorFromStatus("ollama", resp.StatusCode, strings.TrimSpace(string(detail)), nil)
	}

	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", parseFailure("ollama", fmt.Sprintf("decode response: %v", err))
	}
	if out.Response == "" {
		return "", parseFailure("ollama", "empty response field")
	}
	return out.Response, nil
}
