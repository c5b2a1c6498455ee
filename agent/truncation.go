package agent

import "fmt"

// TruncationMode specifies which part of oversized output survives.
type TruncationMode string

const (
	TruncateHeadTail TruncationMode = "head_tail"
	TruncateTail     TruncationMode = "tail"
)

// defaultCharLimit applies to tools without a specific entry.
const defaultCharLimit = 30000

// Character limits per built-in tool. Reads keep more because the model
// usually needs the file body; http responses are capped harder since pages
// carry mostly boilerplate.
var toolCharLimits = map[string]int{
	"file-io": 50000,
	"shell":   30000,
	"http":    20000,
}

var toolTruncationModes = map[string]TruncationMode{
	"file-io": TruncateHeadTail,
	"shell":   TruncateHeadTail,
	"http":    TruncateTail,
}

// TruncateOutput applies character-based truncation.
func TruncateOutput(output string, maxChars int, mode TruncationMode) string {
	if len(output) <= maxChars {
		return output
	}
	removed := len(output) - maxChars

	switch mode {
	case TruncateTail:
		return fmt.Sprintf("[output truncated: first %d characters removed]\n\n", removed) +
			output[len(output)-maxChars:]
	default:
		half := maxChars / 2
		return output[:half] +
			fmt.Sprintf("\n\n[output truncated: %d characters removed from the middle; re-run with narrower parameters to see more]\n\n", removed) +
			output[len(output)-half:]
	}
}

// TruncateToolOutput applies the per-tool limit and mode before the output
// re-enters the conversation.
func TruncateToolOutput(output, toolName string) string {
	maxChars, ok := toolCharLimits[toolName]
	if !ok {
		maxChars = defaultCharLimit
	}
	mode, ok := toolTruncationModes[toolName]
	if !ok {
		mode = TruncateHeadTail
	}
	return TruncateOutput(output, maxChars, mode)
}
