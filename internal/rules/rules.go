// Package rules turns a handful of well-known command shapes into specs
// without any model call: explicit equations, parabola-and-tangent asks,
// flowcharts and funnels, and two stock pictograms. Handlers run in order
// and the first match wins.
package rules

import (
	"regexp"
	"strconv"
	"strings"

	"vizify/internal/mathexpr"
	"vizify/internal/spec"
)

type handler func(command string) *spec.VisualizationSpec

var handlers = []handler{
	tryParabolaTangent,
	tryPlotFunction,
	tryFlowchart,
	tryStickFigure,
	tryTemple,
}

// Interpret runs the deterministic handlers against the command and returns
// the first spec produced, or nil when no rule applies.
func Interpret(command string) *spec.VisualizationSpec {
	for _, h := range handlers {
		if s := h(command); s != nil {
			return s
		}
	}
	return nil
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// axes returns the default coordinate axes for the 40 px-per-unit canvas.
func axes() []spec.Element {
	return []spec.Element{
		spec.Line(100, 260, 600, 0, "#9ca3af"),
		spec.Line(400, 460, 0, -360, "#9ca3af"),
	}
}

var tangentAtRe = regexp.MustCompile(`tangent\s+at\s*x\s*=\s*([\-0-9\.]+)`)

func tryParabolaTangent(command string) *spec.VisualizationSpec {
	text := strings.ToLower(command)
	if !strings.Contains(text, "parabola") {
		return nil
	}
	els := axes()
	curve := mathexpr.Sample(func(x float64) float64 { return x * x }, -6, 6, 120)
	els = append(els, spec.Element{Type: "polyline", Points: curve, Color: "#2563eb"})
	if m := tangentAtRe.FindStringSubmatch(text); m != nil {
		if a, err := strconv.ParseFloat(m[1], 64); err == nil {
			slope := 2 * a
			tangent := mathexpr.Sample(func(x float64) float64 {
				return slope*(x-a) + a*a
			}, a-3, a+3, 10)
			els = append(els, spec.Element{Type: "polyline", Points: tangent, Color: "#ef4444"})
		}
	}
	return &spec.VisualizationSpec{Kind: spec.KindConceptual, Elements: els}
}

// Chart-type requests are left to the model, which answers them with Plotly.
var chartTypeKeywords = []string{
	"scatter", "bar chart", "histogram", "pie chart",
	"line chart", "box plot", "heatmap", "sankey",
}

var equationRe = regexp.MustCompile(`(?i)y\s*=\s*([^,;]+)`)

func tryPlotFunction(command string) *spec.VisualizationSpec {
	if containsAny(strings.ToLower(command), chartTypeKeywords) {
		return nil
	}
	m := equationRe.FindStringSubmatch(command)
	if m == nil {
		return nil
	}
	fn, err := mathexpr.Compile(strings.TrimSpace(m[1]))
	if err != nil {
		return nil
	}
	els := axes()
	els = append(els, spec.Element{
		Type:   "polyline",
		Points: mathexpr.Sample(fn, -6, 6, 120),
		Color:  "#10b981",
	})
	return &spec.VisualizationSpec{Kind: spec.KindConceptual, Elements: els}
}
