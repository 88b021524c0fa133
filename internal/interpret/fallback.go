package interpret

import (
	"strings"

	"vizify/internal/spec"
)

var fallbackColors = []string{"red", "blue", "green", "yellow", "purple", "orange", "black", "white"}

// Fallback builds a naive spec straight from keywords. It is the terminal
// source of the chain and never fails: a command that names no shape still
// gets a labeled card.
func Fallback(command string) *spec.VisualizationSpec {
	text := strings.ToLower(command)

	color := "#1e90ff"
	for _, c := range fallbackColors {
		if strings.Contains(text, c) {
			color = c
			break
		}
	}

	var elements []spec.Element
	switch {
	case strings.Contains(text, "circle"):
		elements = []spec.Element{spec.Circle(200, 200, 60, color)}
	case containsAny(text, "rectangle", "rect", "box", "square"):
		w, h := 160, 100
		if strings.Contains(text, "square") {
			h = w
		}
		elements = []spec.Element{spec.Rect(150, 150, w, h, color)}
	case containsAny(text, "triangle", "pyramid"):
		elements = []spec.Element{spec.Triangle(180, 160, 140, 120, color)}
	case containsAny(text, "ellipse", "oval"):
		elements = []spec.Element{spec.Ellipse(180, 160, 180, 120, color)}
	case strings.Contains(text, "line"):
		elements = []spec.Element{spec.Line(100, 100, 220, 0, color)}
	default:
		subject := spec.ExtractSubject(command)
		if subject == "" {
			subject = "Item"
		}
		elements = spec.LabelCard(subject)
	}
	return &spec.VisualizationSpec{Kind: spec.KindConceptual, Elements: elements}
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
