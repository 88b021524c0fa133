package spec

import (
	"strings"
	"unicode"
)

var commandPrefixes = []string{
	"show me ", "show ", "draw ", "visualize ", "render ", "make ", "create ",
}

var leadingArticles = map[string]bool{"a": true, "an": true, "the": true}

// ExtractSubject pulls the thing a command asks for: the leading imperative
// and article are stripped as whole words, trailing punctuation is dropped,
// and the remainder is title-cased and capped at 64 characters.
func ExtractSubject(command string) string {
	s := strings.ToLower(strings.TrimSpace(command))
	for _, p := range commandPrefixes {
		if strings.HasPrefix(s, p) {
			s = s[len(p):]
			break
		}
	}
	if first, rest, ok := strings.Cut(s, " "); ok && leadingArticles[first] {
		s = rest
	} else if leadingArticles[s] {
		s = ""
	}
	s = strings.TrimSpace(strings.TrimRight(s, ".?!"))
	if s == "" {
		return ""
	}
	if len(s) > 64 {
		s = s[:64]
	}
	return titleWords(s)
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// LabelCard renders a subject as a soft card: a tinted backdrop plus a text
// label, used whenever nothing better can be drawn. An empty subject becomes
// "Item".
func LabelCard(subject string) []Element {
	if strings.TrimSpace(subject) == "" {
		subject = "Item"
	}
	return []Element{
		Rect(140, 120, 280, 140, "#e0e7ff"),
		Text(156, 136, subject, "#111827"),
	}
}
