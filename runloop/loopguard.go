package runloop

import (
	"crypto/sha256"
	"fmt"
)

// loopGuardWindow is how many trailing tool calls are inspected for a
// repeating pattern.
const loopGuardWindow = 6

// callSignature computes a deterministic signature for a tool call
// (name + hash of input).
func callSignature(entry ToolCallLogEntry) string {
	h := sha256.Sum256(entry.Input)
	return fmt.Sprintf("%s:%x", entry.Name, h[:8])
}

// detectRepeatedCalls reports whether the last window entries of the audit
// log follow a repeating pattern of length 1, 2, or 3. Purely observational:
// the runner only surfaces a warning through the progress sink and never
// alters conversation state.
func detectRepeatedCalls(log []ToolCallLogEntry, window int) bool {
	if window <= 0 || len(log) < window {
		return false
	}
	sigs := make([]string, window)
	for i := 0; i < window; i++ {
		sigs[i] = callSignature(log[len(log)-window+i])
	}

	for patternLen := 1; patternLen <= 3; patternLen++ {
		if window%patternLen != 0 {
			continue
		}
		pattern := sigs[:patternLen]
		allMatch := true
		for i := patternLen; i < window && allMatch; i += patternLen {
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
