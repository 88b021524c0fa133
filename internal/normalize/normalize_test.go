package normalize

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"vizify/internal/entity"
	"vizify/internal/spec"
)

func normalizeOne(t *testing.T, n *Normalizer, element map[string]any) spec.Element {
	t.Helper()
	vs, note := n.Normalize(context.Background(), map[string]any{
		"visualType": "conceptual",
		"elements":   []any{element},
	})
	if note != "" {
		t.Fatalf("unexpected note: %q", note)
	}
	if len(vs.Elements) != 1 {
		t.Fatalf("elements = %d, want 1", len(vs.Elements))
	}
	return vs.Elements[0]
}

func TestTypeSynonyms(t *testing.T) {
	n := New(nil)
	for in, want := range map[string]string{
		"rectangle": "rect",
		"box":       "rect",
		"Square":    "rect",
		"pyramid":   "triangle",
		"oval":      "ellipse",
		"arrow":     "line",
		" CIRCLE ":  "circle",
		"":          "text",
	} {
		el := normalizeOne(t, n, map[string]any{"type": in})
		if el.Type != want {
			t.Fatalf("type %q -> %q, want %q", in, el.Type, want)
		}
	}
}

func TestSquareBecomesEqualSidedRect(t *testing.T) {
	n := New(nil)

	el := normalizeOne(t, n, map[string]any{"type": "square", "size": float64(90)})
	if el.Type != "rect" {
		t.Fatalf("type = %q", el.Type)
	}
	if el.Width == nil || el.Height == nil || *el.Width != 90 || *el.Height != 90 {
		t.Fatalf("square sides differ: w=%v h=%v", el.Width, el.Height)
	}

	// Width alone seeds both sides.
	el = normalizeOne(t, n, map[string]any{"type": "square", "width": float64(70)})
	if *el.Width != 70 || *el.Height != 70 {
		t.Fatalf("w=%v h=%v, want 70x70", *el.Width, *el.Height)
	}

	// No size at all defaults to 100.
	el = normalizeOne(t, n, map[string]any{"type": "square"})
	if *el.Width != 100 || *el.Height != 100 {
		t.Fatalf("w=%v h=%v, want 100x100", *el.Width, *el.Height)
	}
}

func TestGeometryDefaults(t *testing.T) {
	n := New(nil)

	el := normalizeOne(t, n, map[string]any{"type": "circle"})
	if el.Radius == nil || *el.Radius != 60 {
		t.Fatalf("circle radius = %v, want 60", el.Radius)
	}

	// Zero radius is treated as missing.
	el = normalizeOne(t, n, map[string]any{"type": "circle", "radius": float64(0)})
	if *el.Radius != 60 {
		t.Fatalf("zero radius should default, got %d", *el.Radius)
	}

	// The r alias works.
	el = normalizeOne(t, n, map[string]any{"type": "circle", "r": float64(25)})
	if *el.Radius != 25 {
		t.Fatalf("radius via r = %d", *el.Radius)
	}

	for _, typ := range []string{"rect", "triangle", "ellipse"} {
		el = normalizeOne(t, n, map[string]any{"type": typ})
		if *el.Width != 180 || *el.Height != 120 {
			t.Fatalf("%s defaults = %dx%d, want 180x120", typ, *el.Width, *el.Height)
		}
	}

	el = normalizeOne(t, n, map[string]any{"type": "line"})
	if *el.Width != 220 || *el.Height != 0 {
		t.Fatalf("line defaults = %dx%d, want 220x0", *el.Width, *el.Height)
	}
}

func TestCoordinateCoercion(t *testing.T) {
	n := New(nil)

	el := normalizeOne(t, n, map[string]any{"type": "circle", "x": "120.4", "y": float64(59.6)})
	if el.X != 120 || el.Y != 60 {
		t.Fatalf("x,y = %d,%d", el.X, el.Y)
	}

	// Zero coordinates are real positions, not missing values.
	el = normalizeOne(t, n, map[string]any{"type": "circle", "x": float64(0), "y": float64(0)})
	if el.X != 0 || el.Y != 0 {
		t.Fatalf("zero coords mangled: %d,%d", el.X, el.Y)
	}

	// Garbage falls back to 100.
	el = normalizeOne(t, n, map[string]any{"type": "circle", "x": "left", "y": []any{}})
	if el.X != 100 || el.Y != 100 {
		t.Fatalf("garbage coords = %d,%d, want 100,100", el.X, el.Y)
	}
}

func TestColorFallbacks(t *testing.T) {
	n := New(nil)

	el := normalizeOne(t, n, map[string]any{"type": "rect", "fill": "#abc"})
	if el.Color != "#abc" {
		t.Fatalf("fill not honored: %q", el.Color)
	}
	el = normalizeOne(t, n, map[string]any{"type": "rect", "backgroundColor": "#def"})
	if el.Color != "#def" {
		t.Fatalf("backgroundColor not honored: %q", el.Color)
	}
	el = normalizeOne(t, n, map[string]any{"type": "rect"})
	if el.Color != "#1e90ff" {
		t.Fatalf("default color = %q", el.Color)
	}
}

func TestLabelAndTextProperties(t *testing.T) {
	n := New(nil)

	el := normalizeOne(t, n, map[string]any{"type": "text", "text": "hi", "fontSize": float64(18), "textAlign": "center"})
	if el.Label != "hi" {
		t.Fatalf("label from text = %q", el.Label)
	}
	if el.FontSize != float64(18) || el.TextAlign != "center" {
		t.Fatalf("text props lost: %v %q", el.FontSize, el.TextAlign)
	}
}

func TestPointsSanitized(t *testing.T) {
	n := New(nil)

	el := normalizeOne(t, n, map[string]any{
		"type": "line",
		"points": []any{
			map[string]any{"x": float64(1), "y": float64(2)},
			map[string]any{"x": "oops", "y": float64(3)},
			"not a point",
			map[string]any{"x": "4", "y": "5.2"},
		},
	})
	want := []spec.Point{{X: 1, Y: 2}, {X: 4, Y: 5}}
	if !reflect.DeepEqual(el.Points, want) {
		t.Fatalf("points = %+v, want %+v", el.Points, want)
	}

	// All-bad points vanish entirely.
	el = normalizeOne(t, n, map[string]any{
		"type":   "line",
		"points": []any{map[string]any{"x": "a", "y": "b"}},
	})
	if el.Points != nil {
		t.Fatalf("points = %+v, want none", el.Points)
	}
}

func TestConnectorEndpoints(t *testing.T) {
	n := New(nil)

	el := normalizeOne(t, n, map[string]any{
		"type":       "connector",
		"from_point": map[string]any{"x": float64(10)},
		"to_point":   map[string]any{"x": "bad", "y": float64(20)},
	})
	if el.From == nil || el.From.X != 10 || el.From.Y != 0 {
		t.Fatalf("from = %+v", el.From)
	}
	if el.To == nil || el.To.X != 0 || el.To.Y != 20 {
		t.Fatalf("to = %+v", el.To)
	}

	// Endpoints are connector-only.
	el = normalizeOne(t, n, map[string]any{"type": "line", "from_point": map[string]any{"x": float64(1)}})
	if el.From != nil {
		t.Fatal("line should not carry endpoints")
	}
}

func TestEntityLookup(t *testing.T) {
	hits := map[string]string{
		"Lionel Messi": "https://img.example/messi.jpg",
		"human heart":  "https://img.example/heart.jpg",
	}
	var asked []string
	resolver := entity.ResolverFunc(func(ctx context.Context, term string) (string, bool) {
		asked = append(asked, term)
		url, ok := hits[term]
		return url, ok
	})
	n := New(resolver)

	t.Run("celebrity hit", func(t *testing.T) {
		el := normalizeOne(t, n, map[string]any{"type": "image", "celebrity_name": "Lionel Messi"})
		if el.Src != "https://img.example/messi.jpg" {
			t.Fatalf("src = %q", el.Src)
		}
	})

	t.Run("anatomy after celebrity", func(t *testing.T) {
		el := normalizeOne(t, n, map[string]any{"type": "image", "anatomy_term": "human heart"})
		if el.Src != "https://img.example/heart.jpg" {
			t.Fatalf("src = %q", el.Src)
		}
	})

	t.Run("existing src wins", func(t *testing.T) {
		asked = nil
		el := normalizeOne(t, n, map[string]any{"type": "image", "src": "https://cdn/x.png", "celebrity_name": "Lionel Messi"})
		if el.Src != "https://cdn/x.png" {
			t.Fatalf("src = %q", el.Src)
		}
		if len(asked) != 0 {
			t.Fatalf("lookup fired despite src: %v", asked)
		}
	})

	t.Run("miss keeps element without src", func(t *testing.T) {
		el := normalizeOne(t, n, map[string]any{"type": "image", "x": float64(50), "celebrity_name": "nobody famous"})
		if el.Src != "" {
			t.Fatalf("src = %q, want empty", el.Src)
		}
		if el.Type != "image" || el.X != 50 {
			t.Fatalf("element dropped or mangled: %+v", el)
		}
	})

	t.Run("non-image types never look up", func(t *testing.T) {
		asked = nil
		normalizeOne(t, n, map[string]any{"type": "rect", "celebrity_name": "Lionel Messi"})
		if len(asked) != 0 {
			t.Fatalf("lookup fired for rect: %v", asked)
		}
	})
}

func TestPlotlyPassthroughAndDowngrade(t *testing.T) {
	n := New(nil)
	ctx := context.Background()

	vs, note := n.Normalize(ctx, map[string]any{
		"visualType": "plotly",
		"plotlySpec": map[string]any{"data": []any{}},
	})
	if note != "" || vs.Kind != spec.KindPlotly {
		t.Fatalf("passthrough failed: kind=%v note=%q", vs.Kind, note)
	}

	for name, raw := range map[string]map[string]any{
		"missing": {"visualType": "plotly"},
		"empty":   {"visualType": "plotly", "plotlySpec": map[string]any{}},
	} {
		vs, note := n.Normalize(ctx, raw)
		if vs.Kind != spec.KindConceptual {
			t.Fatalf("%s: kind = %v, want conceptual", name, vs.Kind)
		}
		if len(vs.Elements) != 0 || vs.Elements == nil {
			t.Fatalf("%s: elements = %+v, want empty non-nil", name, vs.Elements)
		}
		if !strings.Contains(note, "plotlySpec") {
			t.Fatalf("%s: note = %q", name, note)
		}
	}
}

func TestMermaidPassthroughAndDowngrade(t *testing.T) {
	n := New(nil)
	ctx := context.Background()

	vs, note := n.Normalize(ctx, map[string]any{"visualType": "mermaid", "mermaidCode": "graph TD"})
	if note != "" || vs.Kind != spec.KindMermaid || vs.MermaidCode != "graph TD" {
		t.Fatalf("passthrough failed: %+v note=%q", vs, note)
	}

	vs, note = n.Normalize(ctx, map[string]any{"visualType": "mermaid"})
	if vs.Kind != spec.KindConceptual || !strings.Contains(note, "mermaidCode") {
		t.Fatalf("downgrade failed: kind=%v note=%q", vs.Kind, note)
	}
}

func TestMathematicalVariants(t *testing.T) {
	n := New(nil)
	ctx := context.Background()

	vs, note := n.Normalize(ctx, map[string]any{
		"visualType":  "mathematical_interactive",
		"expressions": []any{"x**2", "sin(x)"},
	})
	if note != "" || vs.Kind != spec.KindMathInteractive {
		t.Fatalf("kind=%v note=%q", vs.Kind, note)
	}
	if !reflect.DeepEqual(vs.Expressions, []string{"x**2", "sin(x)"}) {
		t.Fatalf("expressions = %v", vs.Expressions)
	}

	vs, note = n.Normalize(ctx, map[string]any{"visualType": "mathematical", "expression": "x**2"})
	if note != "" || vs.Kind != spec.KindMathematical || vs.Expression != "x**2" {
		t.Fatalf("%+v note=%q", vs, note)
	}

	// Both math variants downgrade symmetrically without a payload.
	for _, vt := range []string{"mathematical", "mathematical_interactive"} {
		vs, note = n.Normalize(ctx, map[string]any{
			"visualType": vt,
			"elements":   []any{map[string]any{"type": "circle"}},
		})
		if vs.Kind != spec.KindConceptual {
			t.Fatalf("%s: kind = %v", vt, vs.Kind)
		}
		if len(vs.Elements) != 1 || vs.Elements[0].Radius == nil || *vs.Elements[0].Radius != 60 {
			t.Fatalf("%s: stray elements should be normalized: %+v", vt, vs.Elements)
		}
		if !strings.Contains(note, vt) || !strings.Contains(note, "without expression") {
			t.Fatalf("%s: note = %q", vt, note)
		}
	}
}

func TestNetworkPassthrough(t *testing.T) {
	n := New(nil)
	ctx := context.Background()

	vs, note := n.Normalize(ctx, map[string]any{
		"visualType": "network",
		"nodes":      []any{map[string]any{"id": "a"}},
	})
	if note != "" || vs.Kind != spec.KindNetwork {
		t.Fatalf("kind=%v note=%q", vs.Kind, note)
	}
	if string(vs.Links) != "[]" {
		t.Fatalf("links should default to [], got %s", vs.Links)
	}

	vs, note = n.Normalize(ctx, map[string]any{"visualType": "network", "nodes": []any{}})
	if vs.Kind != spec.KindConceptual || note == "" {
		t.Fatalf("empty nodes should downgrade: kind=%v note=%q", vs.Kind, note)
	}
}

func TestKindMapping(t *testing.T) {
	n := New(nil)
	ctx := context.Background()

	for vt, want := range map[string]spec.Kind{
		"timeline":    spec.KindTimeline,
		"statistical": spec.KindStatistical,
		"conceptual":  spec.KindConceptual,
		"gauge":       spec.KindConceptual,
		"":            spec.KindConceptual,
	} {
		raw := map[string]any{"elements": []any{map[string]any{"type": "rect"}}}
		if vt != "" {
			raw["visualType"] = vt
		}
		vs, _ := n.Normalize(ctx, raw)
		if vs.Kind != want {
			t.Fatalf("visualType %q -> %v, want %v", vt, vs.Kind, want)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := New(nil)
	ctx := context.Background()

	inputs := []map[string]any{
		{
			"visualType": "conceptual",
			"elements": []any{
				map[string]any{"type": "square", "size": float64(90), "x": float64(0)},
				map[string]any{"type": "circle", "color": "red"},
				map[string]any{"type": "arrow", "points": []any{map[string]any{"x": float64(1), "y": float64(2)}}},
				map[string]any{"type": "connector", "from_point": map[string]any{"x": float64(3), "y": float64(4)}},
				map[string]any{"type": "text", "label": "hello", "fontSize": float64(14)},
			},
		},
		{"visualType": "mermaid", "mermaidCode": "graph TD"},
		{"visualType": "mathematical_interactive", "expressions": []any{"x**2"}},
	}

	for i, raw := range inputs {
		first, note := n.Normalize(ctx, raw)
		if note != "" {
			t.Fatalf("input %d: note = %q", i, note)
		}
		b, err := json.Marshal(first)
		if err != nil {
			t.Fatal(err)
		}
		var round map[string]any
		if err := json.Unmarshal(b, &round); err != nil {
			t.Fatal(err)
		}
		second, note := n.Normalize(ctx, round)
		if note != "" {
			t.Fatalf("input %d second pass: note = %q", i, note)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("input %d not idempotent:\nfirst:  %+v\nsecond: %+v", i, first, second)
		}
	}
}

func TestNonMapElementsSkipped(t *testing.T) {
	n := New(nil)
	vs, _ := n.Normalize(context.Background(), map[string]any{
		"elements": []any{"junk", float64(3), map[string]any{"type": "rect"}},
	})
	if len(vs.Elements) != 1 || vs.Elements[0].Type != "rect" {
		t.Fatalf("elements = %+v", vs.Elements)
	}
}
