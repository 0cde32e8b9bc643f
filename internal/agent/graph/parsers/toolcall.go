package parsers

import (
	"regexp"
	"strings"
)

// ToolProductLookup is the only tool the model may call.
const ToolProductLookup = "product_lookup"

var (
	toolCallPattern = regexp.MustCompile(`TOOL_CALL:\s*product_lookup\(\s*query\s*=\s*"(.*?)"\s*\)`)
	// loose form used to scrub directives the strict pattern does not match
	danglingPattern = regexp.MustCompile(`(?m)^\s*TOOL_CALL:.*$`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// ToolCall is a product lookup directive found in model output.
type ToolCall struct {
	Name  string
	Query string
}

// ParseToolCall extracts the first product_lookup directive from text.
// The query may be empty; callers decide what an empty lookup means.
func ParseToolCall(text string) (ToolCall, bool) {
	m := toolCallPattern.FindStringSubmatch(text)
	if m == nil {
		return ToolCall{}, false
	}
	return ToolCall{Name: ToolProductLookup, Query: strings.TrimSpace(m[1])}, true
}

// StripToolCalls removes every tool directive from text.
func StripToolCalls(text string) string {
	out := toolCallPattern.ReplaceAllString(text, "")
	out = danglingPattern.ReplaceAllString(out, "")
	out = blankLines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
