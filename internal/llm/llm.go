// Package llm holds the language-model clients behind the interpreter: an
// OpenAI-compatible chat client that also serves local Ollama servers, a
// Gemini client, the tier catalog mapping subscription tiers onto models,
// and a deterministic fake for tests.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidJSON means the model answered but not with usable JSON.
var ErrInvalidJSON = errors.New("invalid json from LLM")

// Client is one model backend. GenerateJSON sends the instruction text as
// the system message and the input as a JSON user message; GenerateText is
// for plain output such as Mermaid source.
type Client interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	GenerateText(ctx context.Context, req TextRequest) (string, error)
	Close() error
}

// TextRequest is a plain completion request.
type TextRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// ProviderError reports an upstream model failure. Status carries the HTTP
// status when one exists.
type ProviderError struct {
	Backend string
	Op      string
	Status  int
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Backend, e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ConfigError reports a backend that cannot be constructed at all, usually
// because a key is missing from the environment.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string { return "llm: missing " + e.Missing }

// Middleware decorates a Client to inject cross-cutting concerns.
type Middleware func(Client) Client

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner)).
func Wrap(inner Client, mws ...Middleware) Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}
