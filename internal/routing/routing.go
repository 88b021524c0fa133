// Package routing scans a command for coarse intent signals before any
// model call. The flags steer the interpretation chain (mermaid and image
// branches) and the single routing hint sharpens the model prompt.
package routing

import "strings"

var (
	comparisonWords = []string{"compare", "vs", "versus", "which is better", "difference between", "comparison"}
	workflowWords   = []string{"workflow", "pipeline", "process", "lifecycle", "how does", "how do", "steps", "stages", "procedure", "sequence"}
	hierarchyWords  = []string{"hierarchy", "organization", "org chart", "structure", "tree", "taxonomy"}
	networkWords    = []string{"network", "connection", "relationship", "relate", "between", "connect"}
	timeseriesWords = []string{"over time", "growth", "trend", "forecast", "historical", "change over"}
	sequenceWords   = []string{"authentication", "oauth", "login", "api request", "http", "sequence"}
	imageWords      = []string{"illustration", "drawing", "realistic", "diagram", "scene", "picture"}
	logoWords       = []string{"logo", "brand"}
	mathWords       = []string{"plot", "graph", "parabola", "function", "equation", "y=", "x=", "tangent", "derivative", "sin", "cos", "tan", "integral"}
)

// Decision captures the keyword signals scanned from one command.
// Network is suppressed when the command also reads as a comparison.
type Decision struct {
	Comparison      bool `json:"comparison"`
	Workflow        bool `json:"workflow"`
	Hierarchy       bool `json:"hierarchy"`
	Network         bool `json:"network"`
	Timeseries      bool `json:"timeseries"`
	SequenceDiagram bool `json:"sequence_diagram"`
	ImageNeeded     bool `json:"image_needed"`
	LogoRequest     bool `json:"logo_request"`
	MathLike        bool `json:"math_like"`
}

// Classify scans the command case-insensitively with plain substring
// matching. Deliberately dumb: the flags only bias later stages, they never
// decide the final output on their own.
func Classify(command string) Decision {
	text := strings.ToLower(strings.TrimSpace(command))
	d := Decision{
		Comparison:      containsAny(text, comparisonWords),
		Workflow:        containsAny(text, workflowWords),
		Hierarchy:       containsAny(text, hierarchyWords),
		Timeseries:      containsAny(text, timeseriesWords),
		SequenceDiagram: containsAny(text, sequenceWords),
		ImageNeeded:     containsAny(text, imageWords),
		LogoRequest:     containsAny(text, logoWords),
		MathLike:        containsAny(text, mathWords),
	}
	d.Network = containsAny(text, networkWords) && !d.Comparison
	return d
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Hint is the one chart-family suggestion forwarded to the model.
type Hint string

const (
	HintNone       Hint = ""
	HintComparison Hint = "comparison"
	HintWorkflow   Hint = "workflow"
	HintHierarchy  Hint = "hierarchy"
	HintTimeseries Hint = "timeseries"
	HintNetwork    Hint = "network"
)

// Hint folds the flags into at most one hint, strongest signal first.
func (d Decision) Hint() Hint {
	switch {
	case d.Comparison:
		return HintComparison
	case d.Workflow:
		return HintWorkflow
	case d.Hierarchy:
		return HintHierarchy
	case d.Timeseries:
		return HintTimeseries
	case d.Network:
		return HintNetwork
	}
	return HintNone
}

// WantsMermaid reports a workflow command that names a protocol-like
// interaction, which renders better as a Mermaid diagram than as shapes.
func (d Decision) WantsMermaid() bool {
	return d.Workflow && d.SequenceDiagram
}
