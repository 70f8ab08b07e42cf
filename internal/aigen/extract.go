package aigen

import "strings"

// StripCodeFences removes a markdown code fence around model output. A
// ```json fence wins over a bare ``` fence; text without fences is only
// trimmed.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if _, after, ok := strings.Cut(text, "```json"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	if _, after, ok := strings.Cut(text, "```"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	return text
}

// ExtractJSONArray slices text from the first '[' to the last ']'. Text
// without such a pair is returned unchanged.
func ExtractJSONArray(text string) string {
	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start == -1 || end <= start {
		return text
	}
	return text[start : end+1]
}
