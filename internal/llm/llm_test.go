package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCatalogResolve(t *testing.T) {
	c := NewCatalog()

	free := c.Resolve("FREE")
	if free.Model != "gpt-4o-mini" || free.ImagesEnabled || free.VoiceEnabled {
		t.Fatalf("unexpected FREE config: %+v", free)
	}

	pro := c.Resolve("pro")
	if pro.Model != "gpt-4o" || !pro.VoiceEnabled {
		t.Fatalf("unexpected PRO config: %+v", pro)
	}
	if pro.ImagesEnabled {
		t.Fatal("images should be off for PRO")
	}

	// Unknown and empty tiers fall back to FREE.
	for _, tier := range []string{"", "  ", "platinum"} {
		if got := c.Resolve(tier); got.Model != "gpt-4o-mini" {
			t.Fatalf("tier %q: want FREE fallback, got %+v", tier, got)
		}
	}
}

func TestCatalogTiersIsACopy(t *testing.T) {
	c := NewCatalog()
	m := c.Tiers()
	m["FREE"] = TierConfig{Model: "mutated"}
	if c.Resolve("FREE").Model != "gpt-4o-mini" {
		t.Fatal("Tiers() must not expose internal state")
	}
}

func TestRegistryPicksLocalAndRemote(t *testing.T) {
	var remoteModel, localModel string
	reg := NewRegistry(NewCatalog(), RegistryOptions{LocalModel: "gemma3:4b"}).
		WithFactories(
			func(ctx context.Context, model string) (Client, error) {
				remoteModel = model
				return NewFakeClient(), nil
			},
			func(ctx context.Context, model string) (Client, error) {
				localModel = model
				return NewFakeClient(), nil
			},
		)

	ctx := context.Background()
	if _, err := reg.ClientFor(ctx, TierConfig{Model: "gpt-4o"}); err != nil {
		t.Fatal(err)
	}
	if remoteModel != "gpt-4o" || localModel != "" {
		t.Fatalf("remote tier routed wrong: remote=%q local=%q", remoteModel, localModel)
	}

	if _, err := reg.ClientFor(ctx, TierConfig{UseLocal: true}); err != nil {
		t.Fatal(err)
	}
	if localModel != "gemma3:4b" {
		t.Fatalf("local tier should use configured local model, got %q", localModel)
	}
}

func TestRegistryForceLocal(t *testing.T) {
	var localCalls int
	reg := NewRegistry(NewCatalog(), RegistryOptions{ForceLocal: true}).
		WithFactories(
			func(ctx context.Context, model string) (Client, error) {
				t.Fatal("remote factory must not run when forced local")
				return nil, nil
			},
			func(ctx context.Context, model string) (Client, error) {
				localCalls++
				return NewFakeClient(), nil
			},
		)
	if _, err := reg.ClientFor(context.Background(), TierConfig{Model: "gpt-4o"}); err != nil {
		t.Fatal(err)
	}
	if localCalls != 1 {
		t.Fatalf("local factory calls = %d, want 1", localCalls)
	}
}

func TestOpenAIGenerateJSON(t *testing.T) {
	var gotAuth string
	var gotReq chatReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatal(err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"` + "```json\\n{\\\"visualType\\\":\\\"conceptual\\\"}\\n```" + `"}}]}`))
	}))
	defer srv.Close()

	cli, err := NewOpenAIClient("test-key", "gpt-4o-mini", OpenAIOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	raw, err := cli.GenerateJSON(context.Background(), "SYSTEM PROMPT", map[string]any{"command": "hi"})
	if err != nil {
		t.Fatal(err)
	}

	if gotAuth != "Bearer test-key" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Fatalf("unexpected messages: %+v", gotReq.Messages)
	}
	if !strings.HasPrefix(gotReq.Messages[1].Content, "[INPUT JSON]\n") {
		t.Fatalf("user message missing input envelope: %q", gotReq.Messages[1].Content)
	}
	if gotReq.ResponseFormat["type"] != "json_object" {
		t.Fatalf("response_format missing: %+v", gotReq.ResponseFormat)
	}
	if gotReq.Temperature == nil || *gotReq.Temperature != 0 {
		t.Fatalf("temperature should be explicit zero, got %v", gotReq.Temperature)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("fences should be stripped: %v", err)
	}
	if out["visualType"] != "conceptual" {
		t.Fatalf("payload = %v", out)
	}
}

func TestOpenAIReasoningModelOmitsSamplingParams(t *testing.T) {
	var gotReq chatReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer srv.Close()

	cli, err := NewOpenAIClient("k", "o1-mini", OpenAIOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cli.GenerateJSON(context.Background(), "p", nil); err != nil {
		t.Fatal(err)
	}
	if gotReq.Temperature != nil || gotReq.ResponseFormat != nil {
		t.Fatalf("reasoning model must omit sampling params: %+v", gotReq)
	}
}

func TestOpenAIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cli, err := NewOpenAIClient("k", "gpt-4o-mini", OpenAIOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	_, err = cli.GenerateJSON(context.Background(), "p", nil)
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("want ProviderError, got %v", err)
	}
	if pe.Status != http.StatusTooManyRequests {
		t.Fatalf("status = %d", pe.Status)
	}
	if !strings.Contains(pe.Error(), "quota exceeded") {
		t.Fatalf("error should carry body: %v", pe)
	}
}

func TestOpenAIInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"sure, here you go"}}]}`))
	}))
	defer srv.Close()

	cli, err := NewOpenAIClient("k", "gpt-4o-mini", OpenAIOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cli.GenerateJSON(context.Background(), "p", nil); !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("want ErrInvalidJSON, got %v", err)
	}
}

func TestOpenAIMissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewOpenAIClient("", "gpt-4o-mini", OpenAIOptions{})
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Missing != "OPENAI_API_KEY" {
		t.Fatalf("want ConfigError for OPENAI_API_KEY, got %v", err)
	}
}

func TestOllamaDefaults(t *testing.T) {
	cli := NewOllamaClient("", "", OpenAIOptions{})
	if cli.Name() != "Ollama:gemma3:4b" {
		t.Fatalf("name = %q", cli.Name())
	}
	if cli.baseURL != "http://localhost:11434/v1" {
		t.Fatalf("baseURL = %q", cli.baseURL)
	}
}

func TestGenerateTextMessageShape(t *testing.T) {
	var gotReq chatReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`{"choices":[{"message":{"content":"graph TD"}}]}`))
	}))
	defer srv.Close()

	cli, err := NewOpenAIClient("k", "gpt-4o-mini", OpenAIOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	out, err := cli.GenerateText(context.Background(), TextRequest{
		System:      "diagram expert",
		Prompt:      "draw it",
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if out != "graph TD" {
		t.Fatalf("out = %q", out)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Fatalf("messages = %+v", gotReq.Messages)
	}
	if gotReq.MaxTokens != 2000 {
		t.Fatalf("max_tokens = %d", gotReq.MaxTokens)
	}
	if gotReq.Temperature == nil || *gotReq.Temperature != 0.7 {
		t.Fatalf("temperature = %v", gotReq.Temperature)
	}
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatal(err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Fatalf("model = %q", got)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatal(err)
		}
		f.Close()
		if hdr.Filename != "clip.wav" {
			t.Fatalf("filename = %q", hdr.Filename)
		}
		w.Write([]byte(`{"text":" draw a red circle "}`))
	}))
	defer srv.Close()

	cli, err := NewOpenAIClient("k", "gpt-4o-mini", OpenAIOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	text, err := cli.Transcribe(context.Background(), "clip.wav", strings.NewReader("RIFFdata"))
	if err != nil {
		t.Fatal(err)
	}
	if text != "draw a red circle" {
		t.Fatalf("text = %q", text)
	}
}

func TestFakeClientCannedOutputs(t *testing.T) {
	f := NewFakeClient()
	ctx := context.Background()

	raw, err := f.GenerateJSON(ctx, "interpret", map[string]any{"command": "compare apples vs oranges"})
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	json.Unmarshal(raw, &out)
	if out["visualType"] != "plotly" {
		t.Fatalf("comparison command should yield plotly, got %v", out["visualType"])
	}

	raw, _ = f.GenerateJSON(ctx, "interpret", map[string]any{"command": "explain photosynthesis"})
	json.Unmarshal(raw, &out)
	if out["visualType"] != "conceptual" {
		t.Fatalf("default probe should yield conceptual, got %v", out["visualType"])
	}

	if f.Calls() != 2 {
		t.Fatalf("calls = %d, want 2", f.Calls())
	}

	f.Err = errors.New("boom")
	if _, err := f.GenerateJSON(ctx, "p", nil); err == nil {
		t.Fatal("Err override should propagate")
	}
}

func TestTimeoutMiddleware(t *testing.T) {
	probe := &deadlineProbe{}
	cli := Wrap(probe, Timeout(time.Second))
	if _, err := cli.GenerateJSON(context.Background(), "p", nil); err != nil {
		t.Fatal(err)
	}
	if !probe.sawDeadline {
		t.Fatal("call reached the client without a deadline")
	}

	slow := Wrap(blockingClient{}, Timeout(10*time.Millisecond))
	if _, err := slow.GenerateJSON(context.Background(), "p", nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

type deadlineProbe struct {
	sawDeadline bool
}

func (d *deadlineProbe) Name() string { return "probe" }
func (d *deadlineProbe) Close() error { return nil }

func (d *deadlineProbe) GenerateJSON(ctx context.Context, _ string, _ any) (json.RawMessage, error) {
	_, d.sawDeadline = ctx.Deadline()
	return json.RawMessage(`{}`), nil
}

func (d *deadlineProbe) GenerateText(ctx context.Context, _ TextRequest) (string, error) {
	_, d.sawDeadline = ctx.Deadline()
	return "", nil
}

type blockingClient struct{}

func (blockingClient) Name() string { return "blocking" }
func (blockingClient) Close() error { return nil }

func (blockingClient) GenerateJSON(ctx context.Context, _ string, _ any) (json.RawMessage, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingClient) GenerateText(ctx context.Context, _ TextRequest) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestRedactMedia(t *testing.T) {
	long := strings.Repeat("QUJDRA==", 80)
	in := map[string]any{
		"spec": map[string]any{
			"elements": []any{
				map[string]any{"type": "image", "src": "data:image/png;base64,iVBORw0KGgoAAAANS"},
			},
		},
		"note": "short string stays",
		"blob": long,
	}
	out := RedactMedia(in).(map[string]any)
	el := out["spec"].(map[string]any)["elements"].([]any)[0].(map[string]any)
	if el["src"] != "[REDACTED media]" {
		t.Fatalf("data URL not redacted: %v", el["src"])
	}
	if out["note"] != "short string stays" {
		t.Fatalf("plain string mangled: %v", out["note"])
	}
	if out["blob"] != "[REDACTED media]" {
		t.Fatalf("long base64 not redacted")
	}
}
