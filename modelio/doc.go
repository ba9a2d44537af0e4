// Package modelio defines the model-client boundary for the agent execution
// engine: conversation messages as ordered content blocks (text, tool call,
// tool result), the Completion contract, token usage, and a small error
// taxonomy with retry classification.
//
// Two adapters implement the Client interface:
//
//   - AnthropicClient speaks the Anthropic Messages API natively, with full
//     tool_use/tool_result block mapping and exact token usage.
//   - GollmClient drives any provider gollm supports; it flattens history to
//     prompt text and estimates usage.
//
// The engine in package runloop consumes only the Client interface; tests
// substitute scripted clients.
//
//	client, _ := modelio.NewAnthropicClient("", "claude-sonnet-4-5")
//	resp, _ := client.Complete(ctx, modelio.Request{
//	    Model:    "claude-sonnet-4-5",
//	    System:   "You are a project assistant.",
//	    Messages: []modelio.Message{modelio.UserMessage("Summarize the board")},
//	})
//	fmt.Println(resp.Text())
//
// Adapters reject histories that violate the tool-call pairing invariant
// (see ValidateHistory): every tool call in an assistant message must be
// answered in the immediately following user message.
package modelio
