package rules

import (
	"strings"

	"vizify/internal/spec"
)

func tryFlowchart(command string) *spec.VisualizationSpec {
	text := strings.ToLower(command)
	if !containsAny(text, []string{"flowchart", "funnel"}) {
		return nil
	}
	steps := []string{"Start", "Process", "End"}
	if strings.Contains(text, "funnel") {
		steps = []string{"Awareness", "Consideration", "Signup", "Activation"}
	}
	const x, y, gap = 120, 100, 90
	var els []spec.Element
	for i, step := range steps {
		yy := y + i*gap
		els = append(els,
			spec.Rect(x, yy, 220, 60, "#e5e7eb"),
			spec.Text(x+16, yy+18, step, "#111827"),
		)
		if i < len(steps)-1 {
			els = append(els, spec.Element{
				Type: "arrow", X: x + 110, Y: yy + 60,
				Width: spec.Int(0), Height: spec.Int(30), Color: "#6b7280",
			})
		}
	}
	return &spec.VisualizationSpec{Kind: spec.KindConceptual, Elements: els}
}
