package modelio

import (
	"context"
	"fmt"
)

// Client produces the next model turn for a conversation. Implementations
// block until the provider responds; deadlines are the caller's job via ctx.
type Client interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// ValidateHistory checks the tool-call pairing invariant: every tool call in
// an assistant message must be answered by exactly one tool result in the
// immediately following user message. A trailing assistant message with
// unanswered calls is rejected too; providers treat such histories as
// undefined behavior, so adapters refuse to send them.
func ValidateHistory(messages []Message) error {
	for i, msg := range messages {
		if msg.Role != RoleAssistant {
			continue
		}
		calls := msg.ToolCalls()
		if len(calls) == 0 {
			continue
		}
		if i+1 >= len(messages) {
			return fmt.Errorf("assistant message %d has %d unanswered tool calls", i, len(calls))
		}
		next := messages[i+1]
		if next.Role != RoleUser {
			return fmt.Errorf("assistant message %d with tool calls is not followed by a user message", i)
		}
		answered := make(map[string]int)
		for _, r := range next.ToolResults() {
			answered[r.ToolCallID]++
		}
		for _, call := range calls {
			switch answered[call.ID] {
			case 0:
				return fmt.Errorf("tool call %q (message %d) has no result in the following message", call.ID, i)
			case 1:
			default:
				return fmt.Errorf("tool call %q (message %d) has %d results, want exactly one", call.ID, i, answered[call.ID])
			}
		}
	}
	return nil
}
