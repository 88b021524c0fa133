package llm

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// FakeClient returns deterministic, minimal payloads for offline use and
// tests. Set Response, Text or Err to override the canned behavior; call
// counters record how often each method ran.
type FakeClient struct {
	Response json.RawMessage
	Text     string
	Err      error

	mu        sync.Mutex
	jsonCalls int
	textCalls int
	prompts   []string
}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

// Calls returns the total number of generation calls so far.
func (f *FakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jsonCalls + f.textCalls
}

// Prompts returns a copy of every prompt seen so far.
func (f *FakeClient) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.prompts))
	copy(out, f.prompts)
	return out
}

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	f.mu.Lock()
	f.jsonCalls++
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	if f.Response != nil {
		return f.Response, nil
	}

	// Sniff the input envelope only: the instruction prompt names every
	// route and would match anything.
	in, _ := json.Marshal(input)
	probe := strings.ToLower(string(in))
	var obj map[string]any
	switch {
	case strings.Contains(probe, "compare") || strings.Contains(probe, " vs "):
		obj = map[string]any{
			"visualType": "plotly",
			"plotlySpec": map[string]any{
				"data":   []any{map[string]any{"type": "bar", "x": []string{"A", "B"}, "y": []float64{3, 5}}},
				"layout": map[string]any{"title": "Comparison"},
			},
		}
	case strings.Contains(probe, "relationship") || strings.Contains(probe, "network"):
		obj = map[string]any{
			"visualType": "network",
			"nodes":      []any{map[string]any{"id": "a", "label": "A"}, map[string]any{"id": "b", "label": "B"}},
			"links":      []any{map[string]any{"source": "a", "target": "b"}},
		}
	case strings.Contains(probe, "y =") || strings.Contains(probe, "y="):
		obj = map[string]any{
			"visualType":  "mathematical_interactive",
			"expressions": []string{"x**2"},
		}
	default:
		obj = map[string]any{
			"visualType": "conceptual",
			"elements": []any{
				map[string]any{"type": "text", "x": 120, "y": 120, "label": "Fake output"},
			},
		}
	}
	b, _ := json.Marshal(obj)
	return json.RawMessage(b), nil
}

func (f *FakeClient) GenerateText(ctx context.Context, treq TextRequest) (string, error) {
	f.mu.Lock()
	f.textCalls++
	f.prompts = append(f.prompts, treq.Prompt)
	f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}
	if f.Text != "" {
		return f.Text, nil
	}
	return "graph TD\n  A[Start] --> B[End]", nil
}
