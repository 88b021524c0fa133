package rules

import (
	"strings"

	"vizify/internal/spec"
)

func tryStickFigure(command string) *spec.VisualizationSpec {
	text := strings.ToLower(command)
	if !containsAny(text, []string{"person", "human", "man", "woman", "stick figure", "messi"}) {
		return nil
	}
	const x, y = 380, 140
	els := []spec.Element{
		spec.Circle(x, y, 24, "#fde68a"),
		spec.Line(x, y+24, 0, 80, "#111827"),
		spec.Line(x, y+54, -40, 20, "#111827"),
		spec.Line(x, y+54, 40, 20, "#111827"),
		spec.Line(x, y+104, -30, 50, "#111827"),
		spec.Line(x, y+104, 30, 50, "#111827"),
	}
	if containsAny(text, []string{"soccer", "football", "messi"}) {
		els = append(els, spec.Circle(x+60, y+140, 12, "#16a34a"))
	}
	return &spec.VisualizationSpec{Kind: spec.KindConceptual, Elements: els}
}

func tryTemple(command string) *spec.VisualizationSpec {
	text := strings.ToLower(command)
	if !containsAny(text, []string{"petra", "temple", "treasury", "facade"}) {
		return nil
	}
	const (
		x, y = 120, 120
		w, h = 520, 240
		colW = 24
	)
	els := []spec.Element{
		spec.Rect(x, y+h-20, w, 20, "#d1d5db"),
		spec.Triangle(x+w/2-120, y-20, 240, 120, "#fca5a5"),
	}
	gap := float64(w-6*colW) / 7
	cx := float64(x) + gap
	for i := 0; i < 6; i++ {
		els = append(els, spec.Rect(int(cx+float64(i)*(colW+gap)), y+40, colW, h-60, "#fecaca"))
	}
	els = append(els, spec.Rect(x, y+20, w, 20, "#fca5a5"))
	return &spec.VisualizationSpec{Kind: spec.KindConceptual, Elements: els}
}
