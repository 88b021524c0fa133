package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"vizify/internal/util/jsonutil"
)

// OpenAIClient calls an OpenAI-compatible chat completions API. Pointing
// BaseURL at an Ollama server gives local models over the same wire format.
type OpenAIClient struct {
	http    *http.Client
	name    string
	apiKey  string
	model   string
	baseURL string
	org     string
	project string
}

// OpenAIOptions tune the client; zero values pick the usual defaults.
type OpenAIOptions struct {
	BaseURL string
	Timeout time.Duration
}

// NewOpenAIClient creates a remote client. An empty apiKey falls back to
// OPENAI_API_KEY; without either there is nothing to call.
func NewOpenAIClient(apiKey, model string, opts OpenAIOptions) (*OpenAIClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, &ConfigError{Missing: "OPENAI_API_KEY"}
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	base := opts.BaseURL
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &OpenAIClient{
		http:    &http.Client{Timeout: timeout},
		name:    "OpenAI:" + model,
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(base, "/"),
		org:     firstEnv("OPENAI_ORG", "OPENAI_ORG_ID"),
		project: os.Getenv("OPENAI_PROJECT"),
	}, nil
}

// NewOllamaClient targets a local OpenAI-compatible server. Ollama ignores
// the key but requires one on the wire.
func NewOllamaClient(baseURL, model string, opts OpenAIOptions) *OpenAIClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1"
	}
	if model == "" {
		model = "gemma3:4b"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &OpenAIClient{
		http:    &http.Client{Timeout: timeout},
		name:    "Ollama:" + model,
		apiKey:  "ollama",
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *OpenAIClient) Name() string { return c.name }
func (c *OpenAIClient) Close() error { return nil }

// reasoningModel reports model families that reject temperature and
// response_format parameters.
func reasoningModel(model string) bool {
	return strings.HasPrefix(model, "o1") ||
		strings.HasPrefix(model, "o3") ||
		strings.HasPrefix(model, "gpt-5")
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatReq struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    *float32          `json:"temperature,omitempty"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateJSON sends prompt as the system message, input as a JSON user
// message, and asks for JSON output where the model supports it.
func (c *OpenAIClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	in, _ := json.MarshalIndent(input, "", "  ")
	reqBody := chatReq{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: "[INPUT JSON]\n" + string(in)},
		},
	}
	if !reasoningModel(c.model) {
		zero := float32(0)
		reqBody.Temperature = &zero
		reqBody.ResponseFormat = map[string]string{"type": "json_object"}
	}
	content, err := c.chat(ctx, reqBody)
	if err != nil {
		return nil, err
	}
	raw := jsonutil.StripFences([]byte(content))
	var scratch any
	if err := json.Unmarshal(raw, &scratch); err != nil {
		return nil, ErrInvalidJSON
	}
	return json.RawMessage(raw), nil
}

// GenerateText runs a plain completion, used for Mermaid source.
func (c *OpenAIClient) GenerateText(ctx context.Context, treq TextRequest) (string, error) {
	var msgs []chatMessage
	if treq.System != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: treq.System})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: treq.Prompt})
	reqBody := chatReq{Model: c.model, Messages: msgs, MaxTokens: treq.MaxTokens}
	if !reasoningModel(c.model) && treq.Temperature > 0 {
		t := treq.Temperature
		reqBody.Temperature = &t
	}
	return c.chat(ctx, reqBody)
}

func (c *OpenAIClient) chat(ctx context.Context, reqBody chatReq) (string, error) {
	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.org != "" {
		req.Header.Set("OpenAI-Organization", c.org)
	}
	if c.project != "" {
		req.Header.Set("OpenAI-Project", c.project)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &ProviderError{Backend: c.name, Op: "chat", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		const max = 2048
		if len(body) > max {
			body = body[:max]
		}
		return "", &ProviderError{
			Backend: c.name,
			Op:      "chat",
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("%s", strings.TrimSpace(string(body))),
		}
	}
	var out chatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &ProviderError{Backend: c.name, Op: "chat", Err: err}
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", &ProviderError{Backend: c.name, Op: "chat", Err: errors.New("empty completion")}
	}
	return out.Choices[0].Message.Content, nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
