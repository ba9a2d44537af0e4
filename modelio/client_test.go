package modelio

import (
	"encoding/json"
	"testing"
)

func TestValidateHistory(t *testing.T) {
	call := func(id string) ContentBlock {
		return ToolCallBlock(id, "search", json.RawMessage(`{}`))
	}
	result := func(id string) ContentBlock {
		return ToolResultBlock(id, "OK: done", false)
	}

	cases := []struct {
		name    string
		msgs    []Message
		wantErr bool
	}{
		{
			"plain text exchange",
			[]Message{UserMessage("hi"), AssistantMessage(TextBlock("hello"))},
			false,
		},
		{
			"answered tool call",
			[]Message{
				UserMessage("go"),
				AssistantMessage(call("c1")),
				ToolResultsMessage(result("c1")),
			},
			false,
		},
		{
			"two calls both answered",
			[]Message{
				UserMessage("go"),
				AssistantMessage(call("c1"), call("c2")),
				ToolResultsMessage(result("c2"), result("c1")),
			},
			false,
		},
		{
			"trailing unanswered call",
			[]Message{UserMessage("go"), AssistantMessage(call("c1"))},
			true,
		},
		{
			"missing one result",
			[]Message{
				UserMessage("go"),
				AssistantMessage(call("c1"), call("c2")),
				ToolResultsMessage(result("c1")),
			},
			true,
		},
		{
			"duplicate result",
			[]Message{
				UserMessage("go"),
				AssistantMessage(call("c1")),
				ToolResultsMessage(result("c1"), result("c1")),
			},
			true,
		},
		{
			"empty history",
			nil,
			false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateHistory(tc.msgs)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateHistory = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
