package core

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ParseContent reads a message "content" field that may be a string, null, or
// an array of parts (e.g. [{"type":"text","text":"..."}]). ok is false when
// the field is absent, null, an array without a text part, or of any other shape.
func ParseContent(raw json.RawMessage) (text string, ok bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	// Some providers return parts with a "text" key and no "type".
	var parts []map[string]any
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", false
	}
	var b strings.Builder
	found := false
	for _, p := range parts {
		if typ, _ := p["type"].(string); typ != "" && typ != "text" {
			continue
		}
		if t, ok := p["text"].(string); ok {
			b.WriteString(t)
			found = true
		}
	}
	return b.String(), found
}
