// Package prompt assembles the instruction text sent to language models.
// The interpretation taxonomy lives in a route table rather than one long
// literal, so routes can be tested and tuned independently.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
)

// PromptField describes one output field of the expected JSON.
type PromptField struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// RouteExample is a worked command-to-JSON example.
type RouteExample struct {
	Command string
	Output  string
}

// RouteSpec is one entry of the routing taxonomy: when a command reads
// like this, answer with that payload shape.
type RouteSpec struct {
	Name     string
	Target   string
	When     []string
	Guidance []string
	Example  RouteExample
}

// Spec defines the sections of a structured prompt.
type Spec struct {
	Purpose      string
	Background   string
	Routes       []RouteSpec
	OutputFields []PromptField
	Constraints  []string
	Rules        []string
	OutputFormat string
}

// Build renders the spec into section-tagged text.
func (s Spec) Build() (string, error) {
	if strings.TrimSpace(s.Purpose) == "" {
		return "", fmt.Errorf("prompt: purpose is empty")
	}
	if len(s.OutputFields) == 0 {
		return "", fmt.Errorf("prompt: output fields are empty")
	}
	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE", s.Purpose)
	writeSection(&buf, "BACKGROUND", s.Background)
	writeSection(&buf, "ROUTES", formatRoutes(s.Routes))
	writeSection(&buf, "OUTPUT", formatFields(s.OutputFields))
	writeSection(&buf, "CONSTRAINTS", formatList(s.Constraints))
	writeSection(&buf, "RULES", formatList(s.Rules))
	writeSection(&buf, "OUTPUT_FORMAT", s.OutputFormat)
	return strings.TrimSpace(buf.String()) + "\n", nil
}

func formatRoutes(routes []RouteSpec) string {
	if len(routes) == 0 {
		return ""
	}
	var buf strings.Builder
	for i, r := range routes {
		fmt.Fprintf(&buf, "%d. %s -> %s\n", i+1, r.Name, r.Target)
		if len(r.When) > 0 {
			fmt.Fprintf(&buf, "   WHEN: %s\n", strings.Join(r.When, ", "))
		}
		for _, g := range r.Guidance {
			fmt.Fprintf(&buf, "   - %s\n", g)
		}
		if strings.TrimSpace(r.Example.Command) != "" {
			fmt.Fprintf(&buf, "   EXAMPLE: %s\n", r.Example.Command)
		}
		if strings.TrimSpace(r.Example.Output) != "" {
			fmt.Fprintf(&buf, "   %s\n", r.Example.Output)
		}
		buf.WriteString("\n")
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatFields(fields []PromptField) string {
	if len(fields) == 0 {
		return ""
	}
	var buf strings.Builder
	for _, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		req := "optional"
		if f.Required {
			req = "required"
		}
		if f.Description != "" {
			fmt.Fprintf(&buf, "- %s (%s, %s): %s\n", name, f.Type, req, f.Description)
		} else {
			fmt.Fprintf(&buf, "- %s (%s, %s)\n", name, f.Type, req)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var buf strings.Builder
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fmt.Fprintf(&buf, "- %s\n", item)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func writeSection(buf *bytes.Buffer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	buf.WriteString("[")
	buf.WriteString(title)
	buf.WriteString("]\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}
