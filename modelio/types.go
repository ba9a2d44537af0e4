package modelio

import (
	"encoding/json"
	"strings"
)

// Role identifies who produced a message in a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentKind is the discriminator tag for ContentBlock.
type ContentKind string

const (
	ContentText       ContentKind = "text"
	ContentToolCall   ContentKind = "tool_call"
	ContentToolResult ContentKind = "tool_result"
)

// ToolCall is a model-initiated request to invoke a named tool. The ID is
// opaque and assigned by the model; it is unique within one assistant turn.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolResultData answers a prior tool call. Text carries the rendered
// outcome; IsError mirrors the dispatcher's success flag.
type ToolResultData struct {
	ToolCallID string `json:"tool_call_id"`
	Text       string `json:"text"`
	IsError    bool   `json:"is_error"`
}

// ContentBlock is a tagged union representing one block of a message.
// Exactly one of the pointer fields is set for non-text kinds.
type ContentBlock struct {
	Kind       ContentKind     `json:"kind"`
	Text       string          `json:"text,omitempty"`
	ToolCall   *ToolCall       `json:"tool_call,omitempty"`
	ToolResult *ToolResultData `json:"tool_result,omitempty"`
}

// TextBlock creates a text ContentBlock.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Kind: ContentText, Text: text}
}

// ToolCallBlock creates a tool call ContentBlock.
func ToolCallBlock(id, name string, input json.RawMessage) ContentBlock {
	return ContentBlock{
		Kind:     ContentToolCall,
		ToolCall: &ToolCall{ID: id, Name: name, Input: input},
	}
}

// ToolResultBlock creates a tool result ContentBlock.
func ToolResultBlock(toolCallID, text string, isError bool) ContentBlock {
	return ContentBlock{
		Kind:       ContentToolResult,
		ToolResult: &ToolResultData{ToolCallID: toolCallID, Text: text, IsError: isError},
	}
}

// Message is one turn of conversation state. Content block ordering is
// semantically meaningful and must survive serialization unchanged.
type Message struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// TextContent returns the concatenation of all text blocks.
func (m Message) TextContent() string {
	var sb strings.Builder
	for _, block := range m.Content {
		if block.Kind == ContentText {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

// ToolCalls extracts all tool calls from the message content, in order.
func (m Message) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, block := range m.Content {
		if block.Kind == ContentToolCall && block.ToolCall != nil {
			calls = append(calls, *block.ToolCall)
		}
	}
	return calls
}

// ToolResults extracts all tool results from the message content, in order.
func (m Message) ToolResults() []ToolResultData {
	var results []ToolResultData
	for _, block := range m.Content {
		if block.Kind == ContentToolResult && block.ToolResult != nil {
			results = append(results, *block.ToolResult)
		}
	}
	return results
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	out := Message{Role: m.Role, Content: make([]ContentBlock, len(m.Content))}
	for i, block := range m.Content {
		cloned := block
		if block.ToolCall != nil {
			tc := *block.ToolCall
			tc.Input = append(json.RawMessage(nil), block.ToolCall.Input...)
			cloned.ToolCall = &tc
		}
		if block.ToolResult != nil {
			tr := *block.ToolResult
			cloned.ToolResult = &tr
		}
		out.Content[i] = cloned
	}
	return out
}

// UserMessage creates a user Message with text content.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: []ContentBlock{TextBlock(text)}}
}

// AssistantMessage creates an assistant Message from the given blocks,
// preserving their order.
func AssistantMessage(blocks ...ContentBlock) Message {
	return Message{Role: RoleAssistant, Content: blocks}
}

// ToolResultsMessage wraps one batch of tool results into a single user
// message, the framing tool-calling models expect for observations.
func ToolResultsMessage(results ...ContentBlock) Message {
	return Message{Role: RoleUser, Content: results}
}

// StopReason describes why the model stopped generating.
type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopToolUse   StopReason = "tool_use"
	StopMaxTokens StopReason = "max_tokens"
)

// Usage tracks token consumption for one completion or a whole run.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add returns a new Usage that is the sum of u and other.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
	}
}

// ToolDefinition describes a tool for the model (serializable metadata).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// Request is the input to Client.Complete.
type Request struct {
	Model           string           `json:"model"`
	System          string           `json:"system,omitempty"`
	Messages        []Message        `json:"messages"`
	Tools           []ToolDefinition `json:"tools,omitempty"`
	MaxOutputTokens int              `json:"max_output_tokens,omitempty"`
}

// Completion is one model turn: content blocks in model order, a stop
// reason, and token usage for the call.
type Completion struct {
	Content    []ContentBlock `json:"content"`
	StopReason StopReason     `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
	Model      string         `json:"model,omitempty"`
}

// Text returns the concatenated text blocks of the completion.
func (c Completion) Text() string {
	var sb strings.Builder
	for _, block := range c.Content {
		if block.Kind == ContentText {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

// ToolCalls extracts the tool calls requested by the completion, in order.
func (c Completion) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, block := range c.Content {
		if block.Kind == ContentToolCall && block.ToolCall != nil {
			calls = append(calls, *block.ToolCall)
		}
	}
	return calls
}
