package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Magister-Faceless/agentcore/internal/engine"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

// AnthropicClient implements engine.LLMClient against the Anthropic Messages
// API.
type AnthropicClient struct {
	client *anthropic.Client
}

func NewAnthropicClient(apiKey string) (*AnthropicClient, error) {
	return &AnthropicClient{client: anthropic.NewClient(apiKey)}, nil
}

// toAnthropicMessages converts the transcript. The API takes system prompts
// out of band, so they are returned separately. Tool results become user
// messages carrying a tool_result block, and are dropped when they do not
// follow an assistant tool use (the API rejects such sequences).
func toAnthropicMessages(messages []engine.ChatMessage) ([]anthropic.MessageSystemPart, []anthropic.Message) {
	var system []anthropic.MessageSystemPart
	out := make([]anthropic.Message, 0, len(messages))
	var afterToolUse bool

	for _, msg := range messages {
		switch msg.Role {
		case engine.RoleSystem:
			system = append(system, anthropic.MessageSystemPart{
				Type: "text",
				Text: msg.Content,
			})
			afterToolUse = false
		case engine.RoleUser:
			out = append(out, anthropic.Message{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(msg.Content)},
			})
			afterToolUse = false
		case engine.RoleAssistant:
			var content []anthropic.MessageContent
			if msg.Content != "" && msg.Content != " " {
				content = append(content, anthropic.NewTextMessageContent(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				argsJSON, _ := json.Marshal(tc.Args)
				content = append(content, anthropic.NewToolUseMessageContent(tc.ID, tc.Name, json.RawMessage(argsJSON)))
			}
			out = append(out, anthropic.Message{
				Role:    anthropic.RoleAssistant,
				Content: content,
			})
			afterToolUse = len(msg.ToolCalls) > 0
		case engine.RoleTool:
			if !afterToolUse {
				continue
			}
			content := msg.Content
			if content == "" {
				content = "{}"
			}
			// msg.Name holds the tool_use id
			out = append(out, anthropic.Message{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{anthropic.NewToolResultMessageContent(msg.Name, content, false)},
			})
		}
	}
	return system, out
}

func toAnthropicTools(schemas []engine.ToolSchema) ([]anthropic.ToolDefinition, error) {
	var defs []anthropic.ToolDefinition
	for _, ts := range schemas {
		var schema map[string]any
		if err := json.Unmarshal([]byte(ts.JSONSchema), &schema); err != nil {
			return nil, fmt.Errorf("invalid tool schema JSON for %s: %w", ts.Name, err)
		}
		defs = append(defs, anthropic.ToolDefinition{
			Name:        ts.Name,
			Description: ts.Description,
			InputSchema: schema,
		})
	}
	return defs, nil
}

func (c *AnthropicClient) buildRequest(model string, messages []engine.ChatMessage, schemas []engine.ToolSchema, opts engine.ChatOptions) (anthropic.MessagesRequest, error) {
	system, msgs := toAnthropicMessages(messages)
	defs, err := toAnthropicTools(schemas)
	if err != nil {
		return anthropic.MessagesRequest{}, err
	}

	maxTokens := 4096
	if opts.MaxOutputTokens > 0 {
		maxTokens = opts.MaxOutputTokens
	}
	temperature := float32(0.1)
	if opts.Temperature > 0 {
		temperature = opts.Temperature
	}

	req := anthropic.MessagesRequest{
		Model:       anthropic.Model(model),
		Messages:    msgs,
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	}
	if len(system) > 0 {
		req.MultiSystem = system
	}
	if len(defs) > 0 {
		req.Tools = defs
	}
	return req, nil
}

func toolCallFromToolUse(tu *anthropic.MessageContentToolUse) engine.ToolCall {
	args := make(map[string]any)
	if len(tu.Input) > 0 {
		_ = json.Unmarshal(tu.Input, &args)
	}
	return engine.ToolCall{ID: tu.ID, Name: tu.Name, Args: args}
}

// Chat implements engine.LLMClient.
func (c *AnthropicClient) Chat(ctx context.Context, model string, messages []engine.ChatMessage, schemas []engine.ToolSchema, opts engine.ChatOptions) (engine.LLMResponse, error) {
	req, err := c.buildRequest(model, messages, schemas, opts)
	if err != nil {
		return engine.LLMResponse{}, err
	}

	resp, err := c.client.CreateMessages(ctx, req)
	if err != nil {
		return engine.LLMResponse{}, fmt.Errorf("anthropic chat: %w", err)
	}

	var text string
	var toolCalls []engine.ToolCall
	for _, block := range resp.Content {
		switch block.Type {
		case anthropic.MessagesContentTypeText:
			if block.Text != nil {
				text += *block.Text
			}
		case "tool_use":
			if block.MessageContentToolUse != nil && block.ID != "" && block.Name != "" {
				toolCalls = append(toolCalls, toolCallFromToolUse(block.MessageContentToolUse))
			}
		}
	}

	finishReason := "stop"
	switch {
	case len(toolCalls) > 0:
		finishReason = "tool_calls"
	case resp.StopReason == "max_tokens":
		finishReason = "length"
	}

	return engine.LLMResponse{
		Assistant: engine.ChatMessage{
			Role:      engine.RoleAssistant,
			Content:   text,
			ToolCalls: toolCalls,
		},
		ToolCalls:    toolCalls,
		Usage:        engine.Usage{Prompt: resp.Usage.InputTokens, Completion: resp.Usage.OutputTokens, Total: resp.Usage.InputTokens + resp.Usage.OutputTokens},
		FinishReason: finishReason,
	}, nil
}

// Stream implements engine.LLMClient. The SDK streams through callbacks, which
// are adapted to the channel contract here. Tool use blocks are emitted when
// the block closes, so their arguments are always complete JSON.
func (c *AnthropicClient) Stream(ctx context.Context, model string, messages []engine.ChatMessage, schemas []engine.ToolSchema, opts engine.ChatOptions) (<-chan engine.StreamEvent, <-chan error) {
	eventCh := make(chan engine.StreamEvent, 10)
	errCh := make(chan error, 1)

	go func() {
		defer close(eventCh)
		defer close(errCh)

		base, err := c.buildRequest(model, messages, schemas, opts)
		if err != nil {
			errCh <- err
			return
		}
		req := anthropic.MessagesStreamRequest{MessagesRequest: base}

		emit := func(ev engine.StreamEvent) {
			select {
			case eventCh <- ev:
			case <-ctx.Done():
			}
		}

		req.OnError = func(errResp anthropic.ErrorResponse) {
			select {
			case errCh <- fmt.Errorf("anthropic stream: %s", errResp.Error.Message):
			default:
			}
		}
		req.OnContentBlockDelta = func(delta anthropic.MessagesEventContentBlockDeltaData) {
			if delta.Delta.Type == "text_delta" && delta.Delta.Text != nil {
				emit(engine.StreamEvent{Type: "text_delta", Text: *delta.Delta.Text})
			}
		}
		req.OnContentBlockStop = func(_ anthropic.MessagesEventContentBlockStopData, content anthropic.MessageContent) {
			if content.Type == "tool_use" && content.MessageContentToolUse != nil {
				emit(engine.StreamEvent{Type: "tool_call", ToolCall: toolCallFromToolUse(content.MessageContentToolUse)})
			}
		}

		resp, err := c.client.CreateMessagesStream(ctx, req)
		if err != nil {
			select {
			case errCh <- fmt.Errorf("anthropic stream: %w", err):
			default:
			}
			return
		}

		if resp.Usage.InputTokens > 0 {
			emit(engine.StreamEvent{Type: "usage", Usage: engine.Usage{
				Prompt:     resp.Usage.InputTokens,
				Completion: resp.Usage.OutputTokens,
				Total:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
			}})
		}
	}()

	return eventCh, errCh
}
