package prompt

// MermaidSystem primes the model for the dedicated diagram call.
const MermaidSystem = "You are a Mermaid.js diagram expert. Generate clean, minimal, elegant diagrams."

// BuildMermaid renders the user prompt for the dedicated Mermaid call. The
// syntax rules exist because models love parenthesised node ids, which
// Mermaid rejects.
func BuildMermaid(command string) string {
	return "Generate a Mermaid.js diagram for: " + command + `

Create a clear, structured diagram using Mermaid syntax. Choose the most appropriate diagram type:
- flowchart TD/LR for processes, hierarchies, conceptual relationships
- sequenceDiagram for timelines, events, interactions
- graph TD/LR for networks, connections

CRITICAL SYNTAX RULES:
1. Use SIMPLE node IDs without special characters (use: A, B, C1, Node1, etc.)
2. Node labels must be in quotes or brackets: A["Label Text"] or A[Label Text]
3. Do NOT use parentheses () or special chars in node IDs
4. Connection syntax: A --> B or A -->|label| B
5. Keep labels SHORT and simple (max 3-4 words per node)
6. Use alphanumeric node IDs only (A-Z, 0-9, underscore)

Example of CORRECT syntax:
flowchart TD
    A["Artificial Intelligence"] --> B["Machine Learning"]
    B --> C["Deep Learning"]

Guidelines:
- Maximum 12 nodes for clarity
- Keep it minimal and elegant

Return ONLY the valid Mermaid syntax, no explanation, no markdown code blocks.`
}
