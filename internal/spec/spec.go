// Package spec defines the visualization command, the tagged spec union the
// renderer consumes, and the result envelope the interpreter produces.
package spec

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MaxCommandLen caps accepted command text.
const MaxCommandLen = 2000

// Command is one natural-language visualization request.
type Command struct {
	Text    string `json:"command"`
	Context string `json:"user_context,omitempty"`
	Tier    string `json:"tier,omitempty"`
}

// Validate rejects commands the interpreter will not accept.
func (c Command) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return validationErrorf("command is empty")
	}
	if len(c.Text) > MaxCommandLen {
		return validationErrorf("command too long (max %d characters)", MaxCommandLen)
	}
	return nil
}

// Kind tags the active variant of a VisualizationSpec. Unknown kinds are
// treated as element-based.
type Kind string

const (
	KindPlotly          Kind = "plotly"
	KindMermaid         Kind = "mermaid"
	KindMathematical    Kind = "mathematical"
	KindMathInteractive Kind = "mathematical_interactive"
	KindNetwork         Kind = "network"
	KindConceptual      Kind = "conceptual"
	KindTimeline        Kind = "timeline"
	KindStatistical     Kind = "statistical"
)

// ElementBased reports whether the kind renders a flat element list.
func (k Kind) ElementBased() bool {
	switch k {
	case KindPlotly, KindMermaid, KindMathematical, KindMathInteractive, KindNetwork:
		return false
	}
	return true
}

// VisualizationSpec is a tagged union. Exactly one payload group is
// meaningful for a given Kind: Plotly for plotly, MermaidCode for mermaid,
// Expression/Expressions for the mathematical kinds, Nodes/Links for
// network, Elements for everything else.
type VisualizationSpec struct {
	Kind        Kind
	Plotly      json.RawMessage
	MermaidCode string
	Expression  string
	Expressions []string
	Nodes       json.RawMessage
	Links       json.RawMessage
	Elements    []Element
}

// Validate checks that the payload matching the kind is present.
func (s *VisualizationSpec) Validate() error {
	switch s.Kind {
	case KindPlotly:
		if !rawPresent(s.Plotly) {
			return validationErrorf("%s spec has no plotlySpec", s.Kind)
		}
	case KindMermaid:
		if strings.TrimSpace(s.MermaidCode) == "" {
			return validationErrorf("%s spec has no mermaidCode", s.Kind)
		}
	case KindMathematical, KindMathInteractive:
		if s.Expression == "" && len(s.Expressions) == 0 {
			return validationErrorf("%s spec has no expression", s.Kind)
		}
	case KindNetwork:
		if !rawPresent(s.Nodes) {
			return validationErrorf("%s spec has no nodes", s.Kind)
		}
	}
	return nil
}

// MarshalJSON always emits visualType and only the payload of the active
// variant. Element kinds keep their element list even when empty.
func (s VisualizationSpec) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case KindPlotly:
		return json.Marshal(struct {
			VisualType Kind            `json:"visualType"`
			PlotlySpec json.RawMessage `json:"plotlySpec"`
		}{s.Kind, s.Plotly})
	case KindMermaid:
		return json.Marshal(struct {
			VisualType  Kind   `json:"visualType"`
			MermaidCode string `json:"mermaidCode"`
		}{s.Kind, s.MermaidCode})
	case KindMathematical, KindMathInteractive:
		if len(s.Expressions) > 0 {
			return json.Marshal(struct {
				VisualType  Kind     `json:"visualType"`
				Expressions []string `json:"expressions"`
			}{s.Kind, s.Expressions})
		}
		return json.Marshal(struct {
			VisualType Kind   `json:"visualType"`
			Expression string `json:"expression"`
		}{s.Kind, s.Expression})
	case KindNetwork:
		nodes, links := s.Nodes, s.Links
		if !rawPresent(nodes) {
			nodes = json.RawMessage("[]")
		}
		if len(links) == 0 {
			links = json.RawMessage("[]")
		}
		return json.Marshal(struct {
			VisualType Kind            `json:"visualType"`
			Nodes      json.RawMessage `json:"nodes"`
			Links      json.RawMessage `json:"links"`
		}{s.Kind, nodes, links})
	default:
		els := s.Elements
		if els == nil {
			els = []Element{}
		}
		return json.Marshal(struct {
			VisualType Kind      `json:"visualType"`
			Elements   []Element `json:"elements"`
		}{s.Kind, els})
	}
}

// UnmarshalJSON infers the kind when visualType is absent: payloads carrying
// nodes are network, everything else defaults to conceptual. A declared
// element kind that still carries nodes is promoted to network, matching how
// renderers detect graph payloads.
func (s *VisualizationSpec) UnmarshalJSON(data []byte) error {
	var w struct {
		VisualType  string          `json:"visualType"`
		PlotlySpec  json.RawMessage `json:"plotlySpec"`
		MermaidCode string          `json:"mermaidCode"`
		Expression  string          `json:"expression"`
		Expressions []string        `json:"expressions"`
		Nodes       json.RawMessage `json:"nodes"`
		Links       json.RawMessage `json:"links"`
		Elements    []Element       `json:"elements"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	k := Kind(strings.TrimSpace(w.VisualType))
	if k == "" {
		k = KindConceptual
	}
	if k.ElementBased() && rawPresent(w.Nodes) {
		k = KindNetwork
	}
	*s = VisualizationSpec{
		Kind:        k,
		Plotly:      w.PlotlySpec,
		MermaidCode: w.MermaidCode,
		Expression:  w.Expression,
		Expressions: w.Expressions,
		Nodes:       w.Nodes,
		Links:       w.Links,
		Elements:    w.Elements,
	}
	return nil
}

func rawPresent(r json.RawMessage) bool {
	t := strings.TrimSpace(string(r))
	return t != "" && t != "null" && t != "{}" && t != "[]"
}

// Source records which stage of the interpretation chain produced a result.
type Source string

const (
	SourceRules    Source = "rules"
	SourceMermaid  Source = "mermaid"
	SourceImage    Source = "image"
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
	SourceError    Source = "error"
)

// Result pairs a spec with its provenance. Err carries the last upstream
// failure when Source is fallback or error.
type Result struct {
	Spec   *VisualizationSpec `json:"spec,omitempty"`
	Source Source             `json:"source"`
	Err    string             `json:"error,omitempty"`
}

// ValidationError reports input that fails a hard precondition, such as an
// over-long command or a spec whose tagged payload is missing.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
