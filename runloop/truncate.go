package runloop

import (
	"fmt"
	"strings"
)

// Default limits for tool result text fed back to the model. Oversized
// results blow the context window without helping the model; the audit log
// keeps whatever the dispatcher rendered, truncated the same way.
const (
	defaultResultMaxChars = 30000
	defaultResultMaxLines = 256
)

// truncateChars caps s at maxChars using a head/tail split with an elision
// marker, so both the beginning and the end of the output survive.
func truncateChars(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	half := maxChars / 2
	removed := len(s) - maxChars
	return s[:half] +
		fmt.Sprintf("\n\n[Tool output truncated: %d characters removed from the middle. "+
			"Re-run the tool with more targeted parameters if you need the rest.]\n\n", removed) +
		s[len(s)-half:]
}

// truncateLines caps s at maxLines using a head/tail split.
func truncateLines(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= maxLines {
		return s
	}
	headCount := maxLines / 2
	tailCount := maxLines - headCount
	omitted := len(lines) - headCount - tailCount
	return strings.Join(lines[:headCount], "\n") +
		fmt.Sprintf("\n[... %d lines omitted ...]\n", omitted) +
		strings.Join(lines[len(lines)-tailCount:], "\n")
}

// truncateResult applies the character pass (handles pathological cases)
// then the line pass (readability).
func truncateResult(s string) string {
	return truncateLines(truncateChars(s, defaultResultMaxChars), defaultResultMaxLines)
}
