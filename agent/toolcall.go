package agent

import (
	"encoding/json"
	"regexp"
)

// toolCallPattern matches one inline tool-call span. (?s) lets the JSON body
// span newlines; the lazy body keeps adjacent spans from merging.
var toolCallPattern = regexp.MustCompile(`(?s)<tool>(.*?)</tool>`)

// ToolCall is one parsed tool invocation from model output.
type ToolCall struct {
	Tool   string         `json:"tool"`
	Params map[string]any `json:"params"`
}

// Wire serializes the call back to its inline wire form. ParseToolCalls on
// the result yields the call back.
func (c ToolCall) Wire() string {
	params := c.Params
	if params == nil {
		params = map[string]any{}
	}
	body, _ := json.Marshal(struct {
		Tool   string         `json:"tool"`
		Params map[string]any `json:"params"`
	}{c.Tool, params})
	return "<tool>" + string(body) + "</tool>"
}

// ParseToolCalls extracts every well-formed tool call from text, in order
// of appearance. Spans whose body is not valid JSON, lacks a tool name, or
// carries non-object params are skipped; one malformed span never poisons
// its neighbors. The extractor never executes anything.
func ParseToolCalls(text string) []ToolCall {
	matches := toolCallPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var calls []ToolCall
	for _, m := range matches {
		var call ToolCall
		if err := json.Unmarshal([]byte(m[1]), &call); err != nil {
			continue
		}
		if call.Tool == "" {
			continue
		}
		if call.Params == nil {
			call.Params = map[string]any{}
		}
		calls = append(calls, call)
	}
	return calls
}

// StripToolCalls removes every tool-call span from text, leaving the
// surrounding prose. Used when presenting a tool-bearing response as plain
// output.
func StripToolCalls(text string) string {
	return toolCallPattern.ReplaceAllString(text, "")
}
