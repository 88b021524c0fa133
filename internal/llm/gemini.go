package llm

import (
	"context"
	"encoding/json"

	genai "google.golang.org/genai"

	"vizify/internal/util/jsonutil"
)

// GeminiClient is a thin wrapper around the official genai client. It only
// focuses on the API call itself; cross-cutting concerns are applied via
// Middleware.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient builds a Gemini-backed client. The genai client reads
// GEMINI_API_KEY from the environment.
func NewGeminiClient(ctx context.Context, model string) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

// GenerateJSON concatenates prompt and input and asks for application/json.
func (g *GeminiClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	in, _ := json.MarshalIndent(input, "", "  ")
	full := prompt + "\n\n[INPUT JSON]\n" + string(in)

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return nil, &ProviderError{Backend: g.Name(), Op: "generate", Err: err}
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrInvalidJSON
	}
	raw := jsonutil.StripFences([]byte(resp.Candidates[0].Content.Parts[0].Text))
	var scratch any
	if err := json.Unmarshal(raw, &scratch); err != nil {
		return nil, ErrInvalidJSON
	}
	return json.RawMessage(raw), nil
}

// GenerateText runs a plain completion.
func (g *GeminiClient) GenerateText(ctx context.Context, treq TextRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if treq.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: treq.System}}}
	}
	if treq.Temperature > 0 {
		t := treq.Temperature
		cfg.Temperature = &t
	}
	if treq.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(treq.MaxTokens)
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: treq.Prompt}}}},
		cfg,
	)
	if err != nil {
		return "", &ProviderError{Backend: g.Name(), Op: "generate", Err: err}
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &ProviderError{Backend: g.Name(), Op: "generate", Err: ErrInvalidJSON}
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
