// Package jsonutil smooths over the JSON that comes back from language
// models: Markdown code fences, payloads wrapped in one quoted string, and
// HTML-escaped output that would mangle Mermaid arrows.
package jsonutil

import (
	"bytes"
	"encoding/json"
)

// MarshalNoEscape encodes v without escaping <, > and & into < etc.,
// so Mermaid code like "A --> B" stays readable on the wire.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Encoder.Encode appends a newline.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalNoEscapeIndent is MarshalNoEscape with indentation.
func MarshalNoEscapeIndent(v any, prefix, indent string) ([]byte, error) {
	b, err := MarshalNoEscape(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, b, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StripFences removes a Markdown code fence around a payload, with or
// without a language tag on the opening fence.
func StripFences(raw []byte) []byte {
	t := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(t, []byte("```")) {
		return t
	}
	t = bytes.TrimPrefix(t, []byte("```"))
	if i := bytes.IndexByte(t, '\n'); i >= 0 {
		tag := bytes.TrimSpace(t[:i])
		if len(tag) <= 10 && !bytes.ContainsAny(tag, "{[") {
			t = t[i+1:]
		}
	}
	t = bytes.TrimSpace(t)
	t = bytes.TrimSuffix(t, []byte("```"))
	return bytes.TrimSpace(t)
}

// UnmarshalFlex decodes model output into v with best effort: fences are
// stripped, and a payload delivered as one quoted JSON string is unwrapped
// once. The first error is preserved when nothing works.
func UnmarshalFlex(raw []byte, v any) error {
	t := StripFences(raw)
	err := json.Unmarshal(t, v)
	if err == nil {
		return nil
	}
	var s string
	if err2 := json.Unmarshal(t, &s); err2 == nil {
		if err3 := json.Unmarshal(StripFences([]byte(s)), v); err3 == nil {
			return nil
		}
	}
	return err
}

// UnmarshalRaw accepts json.RawMessage directly.
func UnmarshalRaw(raw json.RawMessage, v any) error {
	return UnmarshalFlex([]byte(raw), v)
}
