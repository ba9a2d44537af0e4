package modelio

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicMaxTokens = 4096

// AnthropicClient implements Client against the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient creates an AnthropicClient. If apiKey is empty it is
// read from the ANTHROPIC_API_KEY environment variable.
func NewAnthropicClient(apiKey, model string) (*AnthropicClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, &ConfigurationError{ClientError: ClientError{
			Message: "anthropic API key not set (ANTHROPIC_API_KEY)",
		}}
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicClient{client: &client, model: model}, nil
}

// Complete sends the conversation and returns the next model turn.
func (a *AnthropicClient) Complete(ctx context.Context, req Request) (*Completion, error) {
	if err := ValidateHistory(req.Messages); err != nil {
		return nil, &InvalidRequestError{ProviderError: ProviderError{
			ClientError: ClientError{Message: "invalid message history", Cause: err},
			Provider:    "anthropic",
			StatusCode:  400,
		}}
	}

	model := req.Model
	if model == "" {
		model = a.model
	}
	maxTokens := int64(req.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  convertMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		params.Tools = convertTools(req.Tools)
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic completion: %w", err)
	}

	return convertResponse(resp), nil
}

func convertMessages(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		var blocks []anthropic.ContentBlockParamUnion
		for _, block := range msg.Content {
			switch block.Kind {
			case ContentText:
				if block.Text != "" {
					blocks = append(blocks, anthropic.NewTextBlock(block.Text))
				}
			case ContentToolCall:
				if block.ToolCall == nil {
					continue
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						Type:  "tool_use",
						ID:    block.ToolCall.ID,
						Name:  block.ToolCall.Name,
						Input: []byte(block.ToolCall.Input),
					},
				})
			case ContentToolResult:
				if block.ToolResult == nil {
					continue
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolResult: &anthropic.ToolResultBlockParam{
						ToolUseID: block.ToolResult.ToolCallID,
						IsError:   anthropic.Bool(block.ToolResult.IsError),
						Content: []anthropic.ToolResultBlockParamContentUnion{{
							OfText: &anthropic.TextBlockParam{Text: block.ToolResult.Text},
						}},
					},
				})
			}
		}
		if len(blocks) == 0 {
			continue
		}
		role := anthropic.MessageParamRoleUser
		if msg.Role == RoleAssistant {
			role = anthropic.MessageParamRoleAssistant
		}
		out = append(out, anthropic.MessageParam{Role: role, Content: blocks})
	}
	return out
}

func convertTools(defs []ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, d := range defs {
		properties := any(map[string]any{})
		if p, ok := d.Parameters["properties"]; ok {
			properties = p
		}
		out = append(out, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        d.Name,
				Description: anthropic.String(d.Description),
				InputSchema: anthropic.ToolInputSchemaParam{Properties: properties},
			},
		})
	}
	return out
}

func convertResponse(resp *anthropic.Message) *Completion {
	var blocks []ContentBlock
	for _, content := range resp.Content {
		switch c := content.AsAny().(type) {
		case anthropic.TextBlock:
			blocks = append(blocks, TextBlock(c.Text))
		case anthropic.ToolUseBlock:
			blocks = append(blocks, ToolCallBlock(c.ID, c.Name, json.RawMessage(c.Input)))
		}
	}

	stop := StopEndTurn
	switch string(resp.StopReason) {
	case "tool_use":
		stop = StopToolUse
	case "max_tokens":
		stop = StopMaxTokens
	}

	return &Completion{
		Content:    blocks,
		StopReason: stop,
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
		Model: string(resp.Model),
	}
}
