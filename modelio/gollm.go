package modelio

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/teilomillet/gollm"
)

// GollmClient implements Client on top of gollm, which multiplexes OpenAI,
// Anthropic, and other providers behind one API. gollm flattens
// conversations to prompt text and does not expose provider token counts,
// so usage is estimated; prefer a native adapter when exact accounting
// matters.
type GollmClient struct {
	provider string
	llm      gollm.LLM
	model    string
}

// GollmOption configures a GollmClient.
type GollmOption func(*gollmConfig)

type gollmConfig struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	extraOpts   []gollm.ConfigOption
}

// WithGollmAPIKey sets the API key. If unset, gollm reads it from the
// provider's environment variable.
func WithGollmAPIKey(key string) GollmOption {
	return func(c *gollmConfig) { c.apiKey = key }
}

// WithGollmModel sets the default model.
func WithGollmModel(model string) GollmOption {
	return func(c *gollmConfig) { c.model = model }
}

// WithGollmMaxTokens sets the default max output tokens.
func WithGollmMaxTokens(n int) GollmOption {
	return func(c *gollmConfig) { c.maxTokens = n }
}

// WithGollmTemperature sets the sampling temperature.
func WithGollmTemperature(t float64) GollmOption {
	return func(c *gollmConfig) { c.temperature = t }
}

// WithGollmOptions adds extra gollm configuration options.
func WithGollmOptions(opts ...gollm.ConfigOption) GollmOption {
	return func(c *gollmConfig) { c.extraOpts = append(c.extraOpts, opts...) }
}

// NewGollmClient creates a GollmClient for the given provider.
func NewGollmClient(provider string, opts ...GollmOption) (*GollmClient, error) {
	cfg := &gollmConfig{
		maxTokens:   defaultAnthropicMaxTokens,
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	gollmOpts := []gollm.ConfigOption{
		gollm.SetProvider(provider),
		gollm.SetMaxTokens(cfg.maxTokens),
		gollm.SetTemperature(cfg.temperature),
		gollm.SetMaxRetries(0), // retries belong to RetryClient
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if cfg.model != "" {
		gollmOpts = append(gollmOpts, gollm.SetModel(cfg.model))
	}
	if cfg.apiKey != "" {
		gollmOpts = append(gollmOpts, gollm.SetAPIKey(cfg.apiKey))
	}
	gollmOpts = append(gollmOpts, cfg.extraOpts...)

	llm, err := gollm.NewLLM(gollmOpts...)
	if err != nil {
		return nil, fmt.Errorf("create gollm LLM for provider %s: %w", provider, err)
	}

	return &GollmClient{provider: provider, llm: llm, model: cfg.model}, nil
}

// Complete sends the conversation and returns the next model turn.
func (g *GollmClient) Complete(ctx context.Context, req Request) (*Completion, error) {
	if err := ValidateHistory(req.Messages); err != nil {
		return nil, &InvalidRequestError{ProviderError: ProviderError{
			ClientError: ClientError{Message: "invalid message history", Cause: err},
			Provider:    g.provider,
			StatusCode:  400,
		}}
	}

	prompt := g.translateRequest(req)

	if req.Model != "" {
		g.llm.SetOption("model", req.Model)
	}
	if req.MaxOutputTokens > 0 {
		g.llm.SetOption("max_tokens", req.MaxOutputTokens)
	}

	text, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, g.translateError(err)
	}

	return g.buildCompletion(req, text), nil
}

// translateRequest converts a Request into a gollm Prompt. gollm works on a
// single prompt string, so the history is flattened with role markers.
func (g *GollmClient) translateRequest(req Request) *gollm.Prompt {
	var parts []string
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleUser:
			if text := msg.TextContent(); text != "" {
				parts = append(parts, text)
			}
			for _, r := range msg.ToolResults() {
				prefix := "[Tool Result]"
				if r.IsError {
					prefix = "[Tool Error]"
				}
				parts = append(parts, prefix+": "+r.Text)
			}
		case RoleAssistant:
			if text := msg.TextContent(); text != "" {
				parts = append(parts, "[Assistant]: "+text)
			}
		}
	}

	promptText := strings.Join(parts, "\n")
	if promptText == "" {
		promptText = "Hello"
	}

	promptOpts := []gollm.PromptOption{}
	if req.System != "" {
		promptOpts = append(promptOpts, gollm.WithSystemPrompt(req.System, gollm.CacheTypeEphemeral))
	}
	if req.MaxOutputTokens > 0 {
		promptOpts = append(promptOpts, gollm.WithMaxLength(req.MaxOutputTokens))
	}
	if len(req.Tools) > 0 {
		tools := make([]gollm.Tool, 0, len(req.Tools))
		for _, t := range req.Tools {
			tools = append(tools, gollm.Tool{
				Type: "function",
				Function: gollm.Function{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				},
			})
		}
		promptOpts = append(promptOpts, gollm.WithTools(tools))
		promptOpts = append(promptOpts, gollm.WithToolChoice("auto"))
	}

	return gollm.NewPrompt(promptText, promptOpts...)
}

// buildCompletion constructs a Completion from generated text, extracting
// any tool calls gollm embedded in the response.
func (g *GollmClient) buildCompletion(req Request, text string) *Completion {
	model := req.Model
	if model == "" {
		model = g.model
	}

	var blocks []ContentBlock
	calls := parseEmbeddedToolCalls(text)
	cleaned := stripToolCallJSON(text, calls)
	if cleaned != "" {
		blocks = append(blocks, TextBlock(cleaned))
	}
	for _, call := range calls {
		blocks = append(blocks, ContentBlock{Kind: ContentToolCall, ToolCall: &call})
	}
	if len(blocks) == 0 {
		blocks = []ContentBlock{TextBlock(text)}
	}

	stop := StopEndTurn
	if len(calls) > 0 {
		stop = StopToolUse
	}

	inputEstimate := estimateInputTokens(req)
	return &Completion{
		Content:    blocks,
		StopReason: stop,
		Usage: Usage{
			// gollm does not expose provider usage; estimate from lengths.
			InputTokens:  inputEstimate,
			OutputTokens: len(text) / 4,
		},
		Model: model,
	}
}

// parseEmbeddedToolCalls extracts tool calls gollm returns as JSON in the
// response text.
func parseEmbeddedToolCalls(text string) []ToolCall {
	start := strings.Index(text, `{"tool_calls"`)
	if start == -1 {
		start = strings.Index(text, `[{"name"`)
	}
	if start == -1 {
		return nil
	}

	var rawCalls []struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal([]byte(text[start:]), &rawCalls); err != nil {
		return nil
	}

	var calls []ToolCall
	for _, rc := range rawCalls {
		calls = append(calls, ToolCall{
			ID:    "call_" + uuid.New().String()[:8],
			Name:  rc.Name,
			Input: rc.Arguments,
		})
	}
	return calls
}

// stripToolCallJSON removes parsed tool call JSON from the text.
func stripToolCallJSON(text string, calls []ToolCall) string {
	if len(calls) == 0 {
		return strings.TrimSpace(text)
	}
	result := text
	for _, pattern := range []string{`{"tool_calls"`, `[{"name"`} {
		if idx := strings.Index(result, pattern); idx != -1 {
			result = result[:idx]
		}
	}
	return strings.TrimSpace(result)
}

// translateError classifies a gollm error into the client error hierarchy.
func (g *GollmClient) translateError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	msgLower := strings.ToLower(msg)
	switch {
	case strings.Contains(msgLower, "401") || strings.Contains(msgLower, "unauthorized") || strings.Contains(msgLower, "invalid api key"):
		return &AuthenticationError{ProviderError: ProviderError{
			ClientError: ClientError{Message: msg, Cause: err}, Provider: g.provider, StatusCode: 401,
		}}
	case strings.Contains(msgLower, "429") || strings.Contains(msgLower, "rate limit"):
		return &RateLimitError{ProviderError: ProviderError{
			ClientError: ClientError{Message: msg, Cause: err}, Provider: g.provider, StatusCode: 429, Retryable: true,
		}}
	case strings.Contains(msgLower, "context length") || strings.Contains(msgLower, "too many tokens"):
		return &ContextLengthError{ProviderError: ProviderError{
			ClientError: ClientError{Message: msg, Cause: err}, Provider: g.provider, StatusCode: 413,
		}}
	case strings.Contains(msgLower, "500") || strings.Contains(msgLower, "internal server"):
		return &ServerError{ProviderError: ProviderError{
			ClientError: ClientError{Message: msg, Cause: err}, Provider: g.provider, StatusCode: 500, Retryable: true,
		}}
	case strings.Contains(msgLower, "timeout"):
		return &RequestTimeoutError{ClientError: ClientError{Message: msg, Cause: err}}
	default:
		return &ProviderError{
			ClientError: ClientError{Message: msg, Cause: err},
			Provider:    g.provider,
			Retryable:   true,
		}
	}
}

// estimateInputTokens roughly counts request tokens from text lengths.
func estimateInputTokens(req Request) int {
	total := len(req.System) / 4
	for _, msg := range req.Messages {
		for _, block := range msg.Content {
			switch block.Kind {
			case ContentText:
				total += len(block.Text) / 4
			case ContentToolResult:
				if block.ToolResult != nil {
					total += len(block.ToolResult.Text) / 4
				}
			}
		}
	}
	if total == 0 {
		total = 10
	}
	return total
}
