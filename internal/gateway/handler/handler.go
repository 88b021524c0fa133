// Package handler exposes the interpretation pipeline over HTTP: one
// JSON endpoint per way of asking for a visualization, plus the image
// proxy, history, and health surfaces.
package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"vizify/internal/history"
	"vizify/internal/interpret"
	"vizify/internal/llm"
	"vizify/internal/spec"
)

const defaultProxyTimeout = 10 * time.Second

// HealthInfo is the startup snapshot reported by /api/health.
type HealthInfo struct {
	LLMReady   bool
	ImageReady bool
	Model      string
	ImageModel string
}

// Options wires a Handler. Interpreter is the only required field;
// everything else degrades to a sensible disabled state.
type Options struct {
	Interpreter *interpret.Interpreter
	Catalog     *llm.Catalog
	History     history.Store
	// Transcriber turns uploaded audio into text. Nil disables the
	// voice endpoint with a 503.
	Transcriber llm.Transcriber
	Flags       interpret.Flags
	Health      HealthInfo
	// ProxyTimeout caps upstream fetches on the image proxy.
	ProxyTimeout time.Duration
}

type Handler struct {
	interp      *interpret.Interpreter
	catalog     *llm.Catalog
	store       history.Store
	transcriber llm.Transcriber
	proxy       *http.Client
	flags       interpret.Flags
	health      HealthInfo
}

func New(opts Options) *Handler {
	if opts.Catalog == nil {
		opts.Catalog = llm.NewCatalog()
	}
	timeout := opts.ProxyTimeout
	if timeout <= 0 {
		timeout = defaultProxyTimeout
	}
	return &Handler{
		interp:      opts.Interpreter,
		catalog:     opts.Catalog,
		store:       opts.History,
		transcriber: opts.Transcriber,
		proxy:       &http.Client{Timeout: timeout},
		flags:       opts.Flags,
		health:      opts.Health,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sessionFrom reads the caller-chosen session ID. History rows group
// under it; an empty one is fine and simply lands in the shared bucket.
func sessionFrom(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Session-ID"))
}

// aiUnavailable maps a terminal error result to the client-facing
// message. Err already carries the last model failure when there was one.
func aiUnavailable(res spec.Result) (string, bool) {
	if res.Source != spec.SourceError {
		return "", false
	}
	msg := res.Err
	if msg == "" {
		msg = "unknown error"
	}
	if !strings.HasPrefix(msg, "AI unavailable") {
		msg = "AI unavailable: " + msg
	}
	return msg, true
}
