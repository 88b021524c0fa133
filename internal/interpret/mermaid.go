package interpret

import (
	"regexp"
	"strings"
)

var nodeParenRe = regexp.MustCompile(`(\w+)\(([^)]+)\)`)

// SanitizeMermaid strips markdown fences and rewrites parenthesized node
// labels to bracketed ones, the two mistakes models make most often with
// Mermaid syntax.
func SanitizeMermaid(out string) string {
	code := strings.TrimSpace(out)
	if strings.HasPrefix(code, "```") {
		lines := strings.Split(code, "\n")
		if len(lines) > 2 {
			code = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}
	code = strings.TrimSpace(code)
	code = strings.ReplaceAll(code, "```mermaid", "")
	code = strings.ReplaceAll(code, "```", "")
	code = strings.TrimSpace(code)
	return nodeParenRe.ReplaceAllString(code, `$1["$2"]`)
}
