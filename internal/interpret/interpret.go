// Package interpret turns natural-language commands into visualization
// specs through an ordered chain of sources: deterministic rules, Mermaid
// generation, image generation, the model, rules again, then a naive
// fallback. The first source that produces a usable spec wins and is named
// in the result.
package interpret

import (
	"context"
	"encoding/json"
	"log"

	"vizify/internal/imagegen"
	"vizify/internal/llm"
	"vizify/internal/normalize"
	"vizify/internal/prompt"
	"vizify/internal/routing"
	"vizify/internal/rules"
	"vizify/internal/spec"
)

// mermaidModel is pinned: diagram syntax needs reliability, not reasoning.
const mermaidModel = "gpt-4o-mini"

// Flags are the process-level toggles that bend the chain.
type Flags struct {
	// ImageFirst tries image generation for any command without a chart
	// routing hint, not just ones with image keywords.
	ImageFirst bool
	// DisableRules skips the deterministic rule passes.
	DisableRules bool
	// RequireAI turns the naive fallback into an error result.
	RequireAI bool
}

// Config wires an Interpreter.
type Config struct {
	Clients    *llm.Registry
	Catalog    *llm.Catalog
	Normalizer *normalize.Normalizer
	// Images may be nil when no image backend is configured; the image
	// branch is then skipped entirely.
	Images imagegen.Generator
	Flags  Flags
}

type Interpreter struct {
	cfg Config
}

func New(cfg Config) *Interpreter {
	if cfg.Catalog == nil {
		cfg.Catalog = llm.NewCatalog()
	}
	if cfg.Normalizer == nil {
		cfg.Normalizer = normalize.New(nil)
	}
	return &Interpreter{cfg: cfg}
}

// InterpretWithSource runs the full chain and reports which source produced
// the spec. A resolution miss moves to the next source; only RequireAI can
// make the whole chain fail.
func (i *Interpreter) InterpretWithSource(ctx context.Context, cmd spec.Command) spec.Result {
	tc := i.cfg.Catalog.Resolve(cmd.Tier)
	text := cmd.Text
	var lastErr string

	d := routing.Classify(text)
	hint := d.Hint()
	notify(ctx, StageRouting, string(hint))

	// Math-looking commands try rules before any model call.
	if d.MathLike && !i.cfg.Flags.DisableRules {
		notify(ctx, StageRules, "")
		if vs := rules.Interpret(text); vs != nil {
			return spec.Result{Spec: vs, Source: spec.SourceRules}
		}
	}

	// Protocol-like workflows render better as Mermaid diagrams.
	if !d.MathLike && d.WantsMermaid() {
		notify(ctx, StageMermaid, "")
		if vs := i.mermaid(ctx, text); vs != nil {
			return spec.Result{Spec: vs, Source: spec.SourceMermaid}
		}
	}

	if i.wantsImage(tc, d, hint) {
		notify(ctx, StageImage, "")
		if vs, ok := i.cfg.Images.Generate(ctx, text); ok {
			return spec.Result{Spec: vs, Source: spec.SourceImage}
		}
	}

	if vs, errStr := i.llmInterpret(ctx, tc, cmd, hint); vs != nil {
		return spec.Result{Spec: vs, Source: spec.SourceLLM}
	} else if errStr != "" {
		lastErr = errStr
	}

	// Second rules pass catches drawable commands the model fumbled,
	// math-looking or not.
	if !i.cfg.Flags.DisableRules {
		notify(ctx, StageRules, "")
		if vs := rules.Interpret(text); vs != nil {
			return spec.Result{Spec: vs, Source: spec.SourceRules}
		}
	}

	if i.cfg.Flags.RequireAI {
		msg := lastErr
		if msg == "" {
			msg = "AI unavailable"
		}
		return spec.Result{Source: spec.SourceError, Err: msg}
	}
	notify(ctx, StageFallback, "")
	return spec.Result{Spec: Fallback(text), Source: spec.SourceFallback, Err: lastErr}
}

// Interpret is the short form: rules, model, fallback, with the result
// forced drawable. Callers that do not care about sources use this.
func (i *Interpreter) Interpret(ctx context.Context, command string) *spec.VisualizationSpec {
	if !i.cfg.Flags.DisableRules {
		if vs := rules.Interpret(command); vs != nil {
			return vs
		}
	}
	tc := i.cfg.Catalog.Resolve("")
	vs, _ := i.llmInterpret(ctx, tc, spec.Command{Text: command}, routing.HintNone)
	if vs == nil {
		vs = Fallback(command)
	}
	return ensureDrawable(vs, command)
}

func (i *Interpreter) wantsImage(tc llm.TierConfig, d routing.Decision, hint routing.Hint) bool {
	if i.cfg.Images == nil || !tc.ImagesEnabled || d.LogoRequest {
		return false
	}
	if d.ImageNeeded {
		return true
	}
	// Image-first never outranks a chart hint: a comparison stays a
	// chart even when the flag is on.
	return i.cfg.Flags.ImageFirst && hint == routing.HintNone
}

// llmInterpret asks the model for a spec and validates its payload. The
// error string is the reason the model's answer could not be used; empty
// spec and empty error together mean the call itself failed silently.
func (i *Interpreter) llmInterpret(ctx context.Context, tc llm.TierConfig, cmd spec.Command, hint routing.Hint) (*spec.VisualizationSpec, string) {
	sys, err := prompt.BuildInterpret(hint, cmd.Context)
	if err != nil {
		return nil, err.Error()
	}
	cli, err := i.cfg.Clients.ClientFor(ctx, tc)
	if err != nil {
		return nil, err.Error()
	}
	defer cli.Close()

	notify(ctx, StageLLM, cli.Name())
	raw, err := cli.GenerateJSON(ctx, sys, map[string]string{"command": cmd.Text})
	if err != nil {
		return nil, err.Error()
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, llm.ErrInvalidJSON.Error()
	}

	// Node structures go to the renderer as-is; normalization would only
	// strip the graph data.
	if nodes, ok := decoded["nodes"].([]any); ok && len(nodes) > 0 {
		var vs spec.VisualizationSpec
		if err := json.Unmarshal(raw, &vs); err == nil && vs.Validate() == nil {
			return &vs, ""
		}
	}

	notify(ctx, StageNormalize, "")
	vs, note := i.cfg.Normalizer.Normalize(ctx, decoded)
	if note != "" {
		return nil, note
	}
	if vs.Kind.ElementBased() && len(vs.Elements) == 0 {
		return nil, "LLM returned no valid visualization data"
	}
	return vs, ""
}

// mermaid generates diagram source through a pinned small model and cleans
// the usual markup mistakes out of it.
func (i *Interpreter) mermaid(ctx context.Context, command string) *spec.VisualizationSpec {
	cli, err := i.cfg.Clients.ClientFor(ctx, llm.TierConfig{Model: mermaidModel})
	if err != nil {
		log.Printf("[interpret] mermaid client unavailable: %v", err)
		return nil
	}
	defer cli.Close()

	out, err := cli.GenerateText(ctx, llm.TextRequest{
		System:      prompt.MermaidSystem,
		Prompt:      prompt.BuildMermaid(command),
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		log.Printf("[interpret] mermaid generation failed: %v", err)
		return nil
	}
	code := SanitizeMermaid(out)
	if code == "" {
		return nil
	}
	return &spec.VisualizationSpec{Kind: spec.KindMermaid, MermaidCode: code}
}

// ensureDrawable replaces empty or trivial text-only results with a labeled
// card so the canvas never renders blank.
func ensureDrawable(vs *spec.VisualizationSpec, command string) *spec.VisualizationSpec {
	if !vs.Kind.ElementBased() {
		return vs
	}
	if len(vs.Elements) == 0 {
		subject := spec.ExtractSubject(command)
		if subject == "" {
			subject = "Item"
		}
		return labelCardSpec(subject)
	}
	for _, el := range vs.Elements {
		if el.Type != "text" {
			return vs
		}
	}
	// A long first label is an intentional message; keep it.
	first := vs.Elements[0].Label
	if len(first) > 50 {
		return vs
	}
	subject := spec.ExtractSubject(command)
	if subject == "" {
		subject = first
	}
	return labelCardSpec(subject)
}

func labelCardSpec(subject string) *spec.VisualizationSpec {
	return &spec.VisualizationSpec{Kind: spec.KindConceptual, Elements: spec.LabelCard(subject)}
}
