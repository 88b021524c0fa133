package llm

import (
	"context"
	"os"
	"sort"
	"strings"
)

// TierConfig describes what a subscription tier is allowed to use.
type TierConfig struct {
	Model         string `json:"model"`
	UseLocal      bool   `json:"use_local"`
	LocalModel    string `json:"local_model,omitempty"`
	ImagesEnabled bool   `json:"images"`
	VoiceEnabled  bool   `json:"voice"`
}

// Catalog maps tier names to their configuration. Unknown tiers resolve to
// the free tier so a bad or missing header never breaks a request.
type Catalog struct {
	tiers map[string]TierConfig
}

const defaultTier = "FREE"

// NewCatalog returns the builtin tier table.
func NewCatalog() *Catalog {
	return &Catalog{tiers: map[string]TierConfig{
		"FREE":       {Model: "gpt-4o-mini", ImagesEnabled: false, VoiceEnabled: false},
		"PRO":        {Model: "gpt-4o", ImagesEnabled: false, VoiceEnabled: true},
		"TEAM":       {Model: "gpt-4o", ImagesEnabled: false, VoiceEnabled: true},
		"ENTERPRISE": {Model: "gpt-4o", ImagesEnabled: false, VoiceEnabled: true},
	}}
}

// NewCatalogFrom builds a catalog from an explicit table. Tier names are
// uppercased; a FREE entry should be present to serve unknown tiers.
func NewCatalogFrom(tiers map[string]TierConfig) *Catalog {
	c := &Catalog{tiers: make(map[string]TierConfig, len(tiers))}
	for name, tc := range tiers {
		c.tiers[strings.ToUpper(strings.TrimSpace(name))] = tc
	}
	return c
}

// Resolve returns the config for tier, falling back to FREE.
func (c *Catalog) Resolve(tier string) TierConfig {
	key := strings.ToUpper(strings.TrimSpace(tier))
	if tc, ok := c.tiers[key]; ok {
		return tc
	}
	return c.tiers[defaultTier]
}

// Tiers returns a copy of the table, keyed by tier name. Used by the health
// endpoint; the copy keeps callers from mutating the catalog.
func (c *Catalog) Tiers() map[string]TierConfig {
	out := make(map[string]TierConfig, len(c.tiers))
	for k, v := range c.tiers {
		out[k] = v
	}
	return out
}

// Names returns the tier names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tiers))
	for k := range c.tiers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Factory builds a client for a concrete model name.
type Factory func(ctx context.Context, model string) (Client, error)

// Registry picks a client per tier. Remote requests go through the
// provider-selected factory; tiers flagged for local inference are served by
// an OpenAI-compatible local runtime instead.
type Registry struct {
	catalog    *Catalog
	remote     Factory
	local      Factory
	forceLocal bool
	localModel string
	mws        []Middleware
}

// RegistryOptions tunes registry construction.
type RegistryOptions struct {
	// ForceLocal sends every tier to the local factory, whatever the
	// catalog says. Driven by USE_LOCAL_LLM.
	ForceLocal bool
	// LocalModel overrides the model used for local inference.
	LocalModel string
	// Middleware wraps every client the registry hands out, rightmost
	// innermost.
	Middleware []Middleware
}

// NewRegistry wires a registry from the environment. LLM_PROVIDER selects
// the remote backend ("gemini" or anything OpenAI-compatible, the default).
func NewRegistry(catalog *Catalog, opts RegistryOptions) *Registry {
	r := &Registry{
		catalog:    catalog,
		forceLocal: opts.ForceLocal,
		localModel: opts.LocalModel,
		mws:        opts.Middleware,
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER"))) {
	case "gemini", "google":
		r.remote = func(ctx context.Context, model string) (Client, error) {
			return NewGeminiClient(ctx, model)
		}
	default:
		r.remote = func(ctx context.Context, model string) (Client, error) {
			return NewOpenAIClient("", model, OpenAIOptions{})
		}
	}
	r.local = func(ctx context.Context, model string) (Client, error) {
		return NewOllamaClient("", model, OpenAIOptions{}), nil
	}
	return r
}

// WithFactories replaces both factories. Tests use this to plug fakes in.
func (r *Registry) WithFactories(remote, local Factory) *Registry {
	if remote != nil {
		r.remote = remote
	}
	if local != nil {
		r.local = local
	}
	return r
}

// ClientFor returns the client a tier should use.
func (r *Registry) ClientFor(ctx context.Context, tc TierConfig) (Client, error) {
	var (
		cli Client
		err error
	)
	if r.forceLocal || tc.UseLocal {
		model := firstNonEmpty(tc.LocalModel, r.localModel)
		cli, err = r.local(ctx, model)
	} else {
		cli, err = r.remote(ctx, tc.Model)
	}
	if err != nil {
		return nil, err
	}
	return Wrap(cli, r.mws...), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
