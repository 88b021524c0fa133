// Package normalize coerces raw interpretation output into a valid
// visualization spec. It is total: whatever shape the model returned, the
// result is a spec the renderer can draw. Payload problems downgrade the
// spec to an empty conceptual one and are reported through the note so the
// pipeline can record what went wrong.
package normalize

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"vizify/internal/entity"
	"vizify/internal/spec"
)

type Normalizer struct {
	entities entity.Resolver
}

// New builds a normalizer. A nil resolver turns every entity lookup into a
// miss, which keeps the element but leaves src empty.
func New(entities entity.Resolver) *Normalizer {
	return &Normalizer{entities: entities}
}

// Normalize maps a decoded interpretation to a spec. The note is non-empty
// when the declared type had no usable payload and the spec was downgraded.
func (n *Normalizer) Normalize(ctx context.Context, raw map[string]any) (*spec.VisualizationSpec, string) {
	vt, _ := raw["visualType"].(string)
	if vt == "" {
		vt = "conceptual"
	}

	switch vt {
	case "plotly":
		if truthy(raw["plotlySpec"]) {
			payload, err := json.Marshal(raw["plotlySpec"])
			if err == nil {
				return &spec.VisualizationSpec{Kind: spec.KindPlotly, Plotly: payload}, ""
			}
		}
		return emptyConceptual(), "LLM returned plotly type without plotlySpec"

	case "mermaid":
		if code, _ := raw["mermaidCode"].(string); code != "" {
			return &spec.VisualizationSpec{Kind: spec.KindMermaid, MermaidCode: code}, ""
		}
		return emptyConceptual(), "LLM returned mermaid type without mermaidCode"

	case "mathematical", "mathematical_interactive":
		kind := spec.KindMathematical
		if vt == "mathematical_interactive" {
			kind = spec.KindMathInteractive
		}
		if exprs := stringList(raw["expressions"]); len(exprs) > 0 {
			return &spec.VisualizationSpec{Kind: kind, Expressions: exprs}, ""
		}
		if expr, _ := raw["expression"].(string); expr != "" {
			return &spec.VisualizationSpec{Kind: kind, Expression: expr}, ""
		}
		vs := &spec.VisualizationSpec{
			Kind:     spec.KindConceptual,
			Elements: n.normalizeElements(ctx, raw["elements"]),
		}
		return vs, fmt.Sprintf("LLM returned %s type without expression", vt)

	case "network":
		if truthy(raw["nodes"]) {
			nodes, nerr := json.Marshal(raw["nodes"])
			links := json.RawMessage("[]")
			if truthy(raw["links"]) {
				if l, err := json.Marshal(raw["links"]); err == nil {
					links = l
				}
			}
			if nerr == nil {
				return &spec.VisualizationSpec{Kind: spec.KindNetwork, Nodes: nodes, Links: links}, ""
			}
		}
		return emptyConceptual(), "LLM returned network type without nodes"
	}

	kind := spec.KindConceptual
	switch vt {
	case "timeline":
		kind = spec.KindTimeline
	case "statistical":
		kind = spec.KindStatistical
	}
	return &spec.VisualizationSpec{Kind: kind, Elements: n.normalizeElements(ctx, raw["elements"])}, ""
}

func emptyConceptual() *spec.VisualizationSpec {
	return &spec.VisualizationSpec{Kind: spec.KindConceptual, Elements: []spec.Element{}}
}

func (n *Normalizer) normalizeElements(ctx context.Context, v any) []spec.Element {
	list, _ := v.([]any)
	out := make([]spec.Element, 0, len(list))
	for _, item := range list {
		e, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, n.normalizeElement(ctx, e))
	}
	return out
}

func (n *Normalizer) normalizeElement(ctx context.Context, e map[string]any) spec.Element {
	t := strings.ToLower(strings.TrimSpace(str(e["type"])))
	switch t {
	case "rectangle", "box":
		t = "rect"
	case "square":
		t = "rect"
		size := firstTruthy(e["size"], e["width"], e["height"])
		if size == nil {
			size = float64(100)
		}
		e["width"], e["height"] = size, size
	case "pyramid":
		t = "triangle"
	case "oval":
		t = "ellipse"
	case "arrow":
		t = "line"
	}

	el := spec.Element{
		Type: t,
		X:    coerceIntDefault(e["x"], 100),
		Y:    coerceIntDefault(e["y"], 100),
	}
	if el.Type == "" {
		el.Type = "text"
	}

	el.Color = firstString(e["color"], e["fill"], e["backgroundColor"])
	if el.Color == "" {
		el.Color = "#1e90ff"
	}

	el.Radius = coerceIntPtr(firstTruthy(e["radius"], e["r"], e["size"]))
	el.Width = coerceIntPtr(firstTruthy(e["width"], e["w"]))
	el.Height = coerceIntPtr(firstTruthy(e["height"], e["h"]))

	switch t {
	case "circle":
		if el.Radius == nil || *el.Radius == 0 {
			el.Radius = spec.Int(60)
		}
	case "rect", "triangle", "ellipse":
		if el.Width == nil || *el.Width == 0 {
			el.Width = spec.Int(180)
		}
		if el.Height == nil || *el.Height == 0 {
			el.Height = spec.Int(120)
		}
	case "line":
		if el.Width == nil || *el.Width == 0 {
			el.Width = spec.Int(220)
		}
		if el.Height == nil {
			el.Height = spec.Int(0)
		}
	}

	el.Label = firstString(e["label"], e["text"])

	if pts, ok := e["points"].([]any); ok {
		sanitized := make([]spec.Point, 0, len(pts))
		for _, pv := range pts {
			p, ok := pv.(map[string]any)
			if !ok {
				continue
			}
			px, okx := coerceInt(p["x"])
			py, oky := coerceInt(p["y"])
			if okx && oky {
				sanitized = append(sanitized, spec.Point{X: px, Y: py})
			}
		}
		if len(sanitized) > 0 {
			el.Points = sanitized
		}
	}

	if t == "connector" {
		if fp, ok := e["from_point"].(map[string]any); ok {
			el.From = &spec.Point{X: coerceIntDefault(fp["x"], 0), Y: coerceIntDefault(fp["y"], 0)}
		}
		if tp, ok := e["to_point"].(map[string]any); ok {
			el.To = &spec.Point{X: coerceIntDefault(tp["x"], 0), Y: coerceIntDefault(tp["y"], 0)}
		}
	}

	if t == "image" {
		el.Src, _ = e["src"].(string)
		// The model names the entity instead of inventing a URL; resolve
		// it here. A miss keeps the element without src.
		for _, key := range []string{"celebrity_name", "anatomy_term", "geography_term"} {
			if el.Src != "" {
				break
			}
			name, _ := e[key].(string)
			if name == "" || n.entities == nil {
				continue
			}
			if url, ok := n.entities.Resolve(ctx, name); ok {
				el.Src = url
			}
		}
	}

	if truthy(e["fontSize"]) {
		el.FontSize = e["fontSize"]
	}
	if truthy(e["fontWeight"]) {
		el.FontWeight = e["fontWeight"]
	}
	if s, _ := e["textAlign"].(string); s != "" {
		el.TextAlign = s
	}

	return el
}

// truthy mirrors JSON-value truthiness: empty strings, zeros, empty
// containers and null are all absent.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	case int:
		return x != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

func firstTruthy(vals ...any) any {
	for _, v := range vals {
		if truthy(v) {
			return v
		}
	}
	return nil
}

func firstString(vals ...any) string {
	for _, v := range vals {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func coerceInt(v any) (int, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return int(math.Round(x)), true
	case int:
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return int(math.Round(f)), true
	default:
		return 0, false
	}
}

func coerceIntDefault(v any, def int) int {
	if n, ok := coerceInt(v); ok {
		return n
	}
	return def
}

func coerceIntPtr(v any) *int {
	if n, ok := coerceInt(v); ok {
		return spec.Int(n)
	}
	return nil
}
