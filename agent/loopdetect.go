package agent

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// loopWindow is how many recent calls DetectLoop inspects.
const loopWindow = 6

// callSignature fingerprints one call: name plus a short hash of its
// params. Map keys marshal in sorted order, so equal params hash equally.
func callSignature(call ToolCall) string {
	params, _ := json.Marshal(call.Params)
	h := sha256.Sum256(params)
	return fmt.Sprintf("%s:%x", call.Tool, h[:8])
}

// DetectLoop reports whether the last windowSize signatures form a
// repeating pattern of length 1, 2, or 3. A model stuck re-reading the same
// file or re-running the same command trips this; the loop responds with a
// steering note, not an abort.
func DetectLoop(signatures []string, windowSize int) bool {
	if len(signatures) < windowSize {
		return false
	}
	sigs := signatures[len(signatures)-windowSize:]

	for patternLen := 1; patternLen <= 3; patternLen++ {
		if windowSize%patternLen != 0 {
			continue
		}
		pattern := sigs[:patternLen]
		allMatch := true
		for i := patternLen; i < windowSize && allMatch; i += patternLen {
			for j := 0; j < patternLen; j++ {
				if sigs[i+j] != pattern[j] {
					allMatch = false
					break
				}
			}
		}
		if allMatch {
			return true
		}
	}
	return false
}
