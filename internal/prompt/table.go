package prompt

import (
	"strings"

	"vizify/internal/routing"
)

// interpretSpec is the full interpretation taxonomy. Every route names the
// payload shape to answer with and carries one worked example; the model
// picks the first route that fits the command.
func interpretSpec() Spec {
	return Spec{
		Purpose: "Turn one natural-language visualization command into a machine-renderable spec.",
		Background: strings.Join([]string{
			"Element-based specs draw on an 800x520 canvas with y growing downwards.",
			"An element carries type (circle, rect, line, triangle, ellipse, polygon, polyline, text, image, connector), x, y,",
			"and per type: radius; width and height; label; color as hex; points for polylines;",
			"from_point and to_point for connectors; src for images.",
			"An image element may instead carry celebrity_name, anatomy_term or geography_term;",
			"the server resolves those to a Wikipedia picture, so never guess portrait URLs.",
		}, " "),
		Routes: []RouteSpec{
			{
				Name:   "DATA COMPARISONS",
				Target: `visualType "plotly" with bar or pie traces`,
				When:   []string{"compare", "vs", "versus", "which is better", "market share"},
				Guidance: []string{
					"Pie for shares of one whole, bars for side-by-side quantities.",
					"Use realistic labeled values, one trace per series.",
				},
				Example: RouteExample{
					Command: "compare iPhone vs Android market share",
					Output:  `{"visualType":"plotly","plotlySpec":{"data":[{"type":"pie","labels":["Android","iPhone","Other"],"values":[71,28,1]}],"layout":{"title":"Smartphone Market Share"}}}`,
				},
			},
			{
				Name:   "WORKFLOWS AND PROCESSES",
				Target: `visualType "plotly" with one sankey trace`,
				When:   []string{"workflow", "pipeline", "process", "lifecycle", "how does"},
				Guidance: []string{
					"Stages become node labels; flows become weighted source/target links.",
				},
				Example: RouteExample{
					Command: "visualize a hiring pipeline",
					Output:  `{"visualType":"plotly","plotlySpec":{"data":[{"type":"sankey","node":{"label":["Applied","Screened","Interviewed","Hired"]},"link":{"source":[0,1,2],"target":[1,2,3],"value":[100,40,12]}}],"layout":{"title":"Hiring Pipeline"}}}`,
				},
			},
			{
				Name:   "HIERARCHIES",
				Target: `visualType "plotly" with a sunburst or treemap trace`,
				When:   []string{"hierarchy", "org chart", "taxonomy", "structure"},
				Example: RouteExample{
					Command: "show the animal kingdom hierarchy",
					Output:  `{"visualType":"plotly","plotlySpec":{"data":[{"type":"sunburst","labels":["Animals","Vertebrates","Invertebrates","Mammals","Birds"],"parents":["","Animals","Animals","Vertebrates","Vertebrates"]}],"layout":{"title":"Animal Kingdom"}}}`,
				},
			},
			{
				Name:   "TRENDS OVER TIME",
				Target: `visualType "plotly" with line or area traces`,
				When:   []string{"over time", "growth", "trend", "forecast", "historical"},
				Example: RouteExample{
					Command: "world population growth over time",
					Output:  `{"visualType":"plotly","plotlySpec":{"data":[{"type":"scatter","mode":"lines+markers","x":[1960,1980,2000,2020],"y":[3.0,4.4,6.1,7.8],"name":"Billions"}],"layout":{"title":"World Population"}}}`,
				},
			},
			{
				Name:   "RELATIONSHIPS AND NETWORKS",
				Target: "nodes and links for a force-directed graph",
				When:   []string{"relationship", "connection", "between", "related to"},
				Guidance: []string{
					"Every node needs id, label and color; links carry source, target and an optional label.",
					`Include one element of type "node" so renderers detect the graph.`,
				},
				Example: RouteExample{
					Command: "relationship between AI and machine learning",
					Output:  `{"visualType":"conceptual","nodes":[{"id":"ai","label":"Artificial Intelligence","color":"#3b82f6"},{"id":"ml","label":"Machine Learning","color":"#10b981"}],"links":[{"source":"ai","target":"ml","label":"includes"}],"elements":[{"type":"node"}]}`,
				},
			},
			{
				Name:   "FUNCTION PLOTS",
				Target: `visualType "mathematical_interactive"`,
				When:   []string{"plot", "graph", "y=", "f(x)", "derivative", "tangent"},
				Guidance: []string{
					"Write expressions in terms of x with explicit operators: x**2, 3*x, sqrt(x).",
					"Supported functions: sin, cos, tan, exp, log, sqrt, abs; constants pi and e.",
					"Use expressions (a list) for several curves, expression for a single one.",
					`For y = m*x + b style equations, emit the right-hand side only: "m*x + b".`,
				},
				Example: RouteExample{
					Command: "plot a parabola and its derivative",
					Output:  `{"visualType":"mathematical_interactive","expressions":["x**2","2*x"]}`,
				},
			},
			{
				Name:   "EQUATION DISPLAY",
				Target: `visualType "plotly" with annotations only`,
				When:   []string{"show the equation", "formula for", "what is the equation"},
				Guidance: []string{
					"Empty data array, axes hidden, one LaTeX annotation at paper coordinates.",
				},
				Example: RouteExample{
					Command: "show me the equation for mass-energy equivalence",
					Output:  `{"visualType":"plotly","plotlySpec":{"data":[],"layout":{"xaxis":{"visible":false},"yaxis":{"visible":false},"annotations":[{"text":"$E = mc^2$","x":0.5,"y":0.5,"xref":"paper","yref":"paper","showarrow":false,"font":{"size":24}}]}}}`,
				},
			},
			{
				Name:   "DIAGRAMS AS MERMAID",
				Target: `visualType "mermaid" with mermaidCode`,
				When:   []string{"flowchart", "sequence diagram", "mind map", "journey", "er diagram", "gantt"},
				Guidance: []string{
					"flowchart TD for decisions, sequenceDiagram for interactions, mindmap for ideas, journey for experiences, erDiagram for schemas, gantt for schedules.",
					"Alphanumeric node ids; labels in square brackets; no code fences.",
				},
				Example: RouteExample{
					Command: "create a flowchart for user login",
					Output:  `{"visualType":"mermaid","mermaidCode":"flowchart TD\n    A[Start] --> B{Logged in?}\n    B -->|Yes| C[Dashboard]\n    B -->|No| D[Login Page]"}`,
				},
			},
			{
				Name:   "COMPANY LOGOS",
				Target: "conceptual with image elements",
				When:   []string{"logo", "brand"},
				Guidance: []string{
					"Use https://logo.clearbit.com/{domain} as src, e.g. apple.com, google.com, microsoft.com.",
				},
				Example: RouteExample{
					Command: "show the Apple logo",
					Output:  `{"visualType":"conceptual","elements":[{"type":"image","x":250,"y":110,"width":300,"height":300,"src":"https://logo.clearbit.com/apple.com"}]}`,
				},
			},
			{
				Name:   "COUNTRY FLAGS",
				Target: "conceptual with image elements",
				Guidance: []string{
					"Use https://flagcdn.com/w320/{code}.png with the lowercase ISO 3166-1 alpha-2 code.",
				},
				Example: RouteExample{
					Command: "show the flag of China",
					Output:  `{"visualType":"conceptual","elements":[{"type":"image","x":240,"y":140,"width":320,"height":213,"src":"https://flagcdn.com/w320/cn.png"}]}`,
				},
			},
			{
				Name:   "PEOPLE AND PORTRAITS",
				Target: "conceptual with an image element carrying celebrity_name",
				Guidance: []string{
					"Set celebrity_name to the person's full name for the Wikipedia lookup.",
				},
				Example: RouteExample{
					Command: "show me Albert Einstein",
					Output:  `{"visualType":"conceptual","elements":[{"type":"image","x":250,"y":60,"width":300,"height":400,"celebrity_name":"Albert Einstein"}]}`,
				},
			},
			{
				Name:   "ANATOMY",
				Target: "conceptual with an image element carrying anatomy_term",
				Guidance: []string{
					`Use the proper medical term: "Human heart", "Human skeleton", "Human digestive system".`,
				},
				Example: RouteExample{
					Command: "show the human heart",
					Output:  `{"visualType":"conceptual","elements":[{"type":"image","x":200,"y":60,"width":400,"height":400,"anatomy_term":"Human heart"}]}`,
				},
			},
			{
				Name:   "GEOGRAPHY AND LANDMARKS",
				Target: "conceptual with an image element carrying geography_term",
				Guidance: []string{
					`Works for countries, landmarks, natural features and cities: "Eiffel Tower", "Mount Everest", "Tokyo".`,
				},
				Example: RouteExample{
					Command: "show me Mount Everest",
					Output:  `{"visualType":"conceptual","elements":[{"type":"image","x":200,"y":50,"width":400,"height":450,"geography_term":"Mount Everest"}]}`,
				},
			},
			{
				Name:   "DASHBOARDS AND GAUGES",
				Target: `visualType "plotly" with an indicator trace`,
				When:   []string{"gauge", "kpi", "progress", "speedometer"},
				Example: RouteExample{
					Command: "gauge chart showing 75% completion",
					Output:  `{"visualType":"plotly","plotlySpec":{"data":[{"type":"indicator","mode":"gauge+number","value":75,"gauge":{"axis":{"range":[0,100]}}}],"layout":{"title":"Progress"}}}`,
				},
			},
			{
				Name:   "EVERYTHING ELSE",
				Target: "conceptual elements",
				Guidance: []string{
					"Compose a few labeled shapes that teach the concept; position them deliberately.",
				},
				Example: RouteExample{
					Command: "draw the water cycle",
					Output:  `{"visualType":"conceptual","elements":[{"type":"ellipse","x":160,"y":120,"width":180,"height":90,"color":"#93c5fd","label":"Cloud"},{"type":"rect","x":100,"y":380,"width":600,"height":80,"color":"#3b82f6","label":"Ocean"},{"type":"line","x":250,"y":210,"width":0,"height":170,"color":"#60a5fa","label":"Rain"}]}`,
				},
			},
		},
		OutputFields: []PromptField{
			{Name: "visualType", Type: "string", Required: true, Description: "plotly | mermaid | mathematical_interactive | mathematical | conceptual | timeline | statistical"},
			{Name: "plotlySpec", Type: "object", Description: "complete Plotly figure, data plus layout"},
			{Name: "mermaidCode", Type: "string", Description: "Mermaid source without fences"},
			{Name: "expression", Type: "string", Description: "one function of x"},
			{Name: "expressions", Type: "string[]", Description: "several functions of x"},
			{Name: "elements", Type: "object[]", Description: "drawable shapes, see BACKGROUND"},
			{Name: "nodes", Type: "object[]", Description: "graph nodes, only with links"},
			{Name: "links", Type: "object[]", Description: "graph edges, only with nodes"},
		},
		Rules: []string{
			"When several routes apply, prefer the most specific data-bearing one.",
			"Charts need real numbers; an empty data array is only valid for equation display.",
		},
		OutputFormat: "A single JSON object with visualType and exactly the payload fields that type needs.",
	}
}

// BuildInterpret renders the full interpretation prompt. The optional
// context directive and routing hint are prepended in that order so they
// are the first thing the model reads.
func BuildInterpret(hint routing.Hint, userContext string) (string, error) {
	base, err := ApplyPresets(interpretSpec(), PresetStrictJSON(), PresetVisualFirst(), PresetEducational()).Build()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(ContextDirective(userContext))
	b.WriteString(Directive(hint))
	b.WriteString(base)
	return b.String(), nil
}

// Directive translates a routing hint into a short leading instruction.
func Directive(hint routing.Hint) string {
	switch hint {
	case routing.HintComparison:
		return "ROUTING HINT: This is a COMPARISON query. Use a Plotly bar chart or pie chart with actual data.\n\n"
	case routing.HintWorkflow:
		return "ROUTING HINT: This is a WORKFLOW/PROCESS query. Use a Sankey diagram (type: sankey) with flowing connections.\n\n"
	case routing.HintHierarchy:
		return "ROUTING HINT: This is a HIERARCHY query. Use a Sunburst or Treemap visualization.\n\n"
	case routing.HintTimeseries:
		return "ROUTING HINT: This is a TIME SERIES query. Use a line or area chart showing change over time.\n\n"
	case routing.HintNetwork:
		return "ROUTING HINT: This is a NETWORK/RELATIONSHIP query. Use nodes and links for a D3 graph.\n\n"
	}
	return ""
}

// ContextDirective frames optional user context. The context may only tune
// complexity, terminology and style; the command decides the subject.
func ContextDirective(userContext string) string {
	c := strings.TrimSpace(userContext)
	if c == "" {
		return ""
	}
	return "USER'S BACKGROUND CONTEXT: the user is working on: " + c + "\n" +
		"This describes their general work area; visualize what they actually requested.\n" +
		"- Use the context only to adjust complexity, terminology, or style.\n" +
		"- Never change the core subject of the visualization because of it.\n\n"
}
