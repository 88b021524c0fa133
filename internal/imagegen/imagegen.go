// Package imagegen turns a command into a rendered image element via the
// OpenAI images API. Like entity resolution it is best effort: any failure
// is a miss and interpretation moves on to the next source.
package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"vizify/internal/spec"
)

// Generator produces a ready-to-render spec for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*spec.VisualizationSpec, bool)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (*spec.VisualizationSpec, bool)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (*spec.VisualizationSpec, bool) {
	return f(ctx, prompt)
}

// Store mirrors generated images to durable storage and returns a URL.
type Store interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// OpenAI calls the images endpoint, trying the configured model first and
// falling back to dall-e-3.
type OpenAI struct {
	http    *http.Client
	apiKey  string
	baseURL string
	org     string
	project string
	models  []string
	size    string
	store   Store
}

// Options tune the generator; zero values pick the usual defaults.
type Options struct {
	BaseURL string
	Model   string
	Size    string
	Timeout time.Duration
	// Store, when set, mirrors each generated image and rewrites the
	// element src to the stored URL. Mirror failures keep the data URL.
	Store Store
}

// NewOpenAI creates a generator. An empty apiKey falls back to
// OPENAI_API_KEY; without either image generation is unavailable.
func NewOpenAI(apiKey string, opts Options) (*OpenAI, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("imagegen: missing OPENAI_API_KEY")
	}
	base := opts.BaseURL
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	model := opts.Model
	if model == "" {
		model = os.Getenv("OPENAI_IMAGE_MODEL")
	}
	if model == "" {
		model = "gpt-image-1"
	}
	models := []string{model}
	if model != "dall-e-3" {
		models = append(models, "dall-e-3")
	}
	size := opts.Size
	if size == "" {
		size = os.Getenv("OPENAI_IMAGE_SIZE")
	}
	if size == "" {
		size = "512x512"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAI{
		http:    &http.Client{Timeout: timeout},
		apiKey:  apiKey,
		baseURL: strings.TrimRight(base, "/"),
		org:     os.Getenv("OPENAI_ORG"),
		project: os.Getenv("OPENAI_PROJECT"),
		models:  models,
		size:    size,
		store:   opts.Store,
	}, nil
}

// Generate renders the prompt as a single image element. A miss means no
// model produced an image.
func (g *OpenAI) Generate(ctx context.Context, prompt string) (*spec.VisualizationSpec, bool) {
	enhanced := "Create a clear, professional educational diagram to " + prompt +
		". Include labels, arrows, and visual elements. Style: clean infographic with good contrast and readability. Educational and informative."

	for _, model := range g.models {
		b64, err := g.generate(ctx, model, enhanced)
		if err != nil {
			log.Printf("[imagegen] %s failed: %v", model, err)
			continue
		}
		if b64 == "" {
			continue
		}
		src := "data:image/png;base64," + b64
		if g.store != nil {
			if url, ok := g.mirror(ctx, b64); ok {
				src = url
			}
		}
		el := spec.Element{
			Type:   "image",
			X:      100,
			Y:      60,
			Width:  spec.Int(512),
			Height: spec.Int(512),
			Src:    src,
		}
		return &spec.VisualizationSpec{Kind: spec.KindConceptual, Elements: []spec.Element{el}}, true
	}
	return nil, false
}

func (g *OpenAI) generate(ctx context.Context, model, prompt string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"model":           model,
		"prompt":          prompt,
		"size":            g.size,
		"response_format": "b64_json",
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	if g.org != "" {
		req.Header.Set("OpenAI-Organization", g.org)
	}
	if g.project != "" {
		req.Header.Set("OpenAI-Project", g.project)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	var out struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Data) == 0 {
		return "", nil
	}
	return out.Data[0].B64JSON, nil
}

func (g *OpenAI) mirror(ctx context.Context, b64 string) (string, bool) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", false
	}
	name := fmt.Sprintf("generated/%d.png", time.Now().UnixNano())
	url, err := g.store.Put(ctx, name, data, "image/png")
	if err != nil {
		log.Printf("[imagegen] mirror failed: %v", err)
		return "", false
	}
	if url == "" {
		return "", false
	}
	return url, true
}
