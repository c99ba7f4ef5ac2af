package gemini

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractJSON pulls the outermost JSON array out of free text, or the
// outermost object when the text has no array. ok is false when nothing
// bracketed is found or the bracketed text is not valid JSON.
func ExtractJSON(text string) (gjson.Result, bool) {
	raw, found := span(text, '[', ']')
	if !found {
		raw, found = span(text, '{', '}')
	}
	if !found || !gjson.Valid(raw) {
		return gjson.Result{}, false
	}
	return gjson.Parse(raw), true
}

func span(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
