package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Magister-Faceless/agentcore/internal/engine"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAIClient implements engine.LLMClient against the OpenAI chat API. With
// a custom base URL it also serves the OpenAI-compatible providers (DeepSeek,
// Groq, Ollama and friends).
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient builds a client. baseURL may be empty for api.openai.com.
func NewOpenAIClient(apiKey, baseURL string) (*OpenAIClient, error) {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}, nil
}

// toOpenAIMessages converts the transcript to wire format. System messages are
// hoisted to the front; tool results that do not follow an assistant tool call
// are dropped, since the API rejects them.
func toOpenAIMessages(messages []engine.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	var system string
	var afterToolCalls bool

	for _, msg := range messages {
		switch msg.Role {
		case engine.RoleSystem:
			system = msg.Content
			afterToolCalls = false
		case engine.RoleUser:
			out = append(out, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: msg.Content,
			})
			afterToolCalls = false
		case engine.RoleAssistant:
			content := msg.Content
			if content == "" {
				// empty string serializes to null, which the API rejects
				content = " "
			}
			var calls []openai.ToolCall
			for _, tc := range msg.ToolCalls {
				argsJSON, _ := json.Marshal(tc.Args)
				calls = append(calls, openai.ToolCall{
					ID:   tc.ID,
					Type: "function",
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: string(argsJSON),
					},
				})
			}
			out = append(out, openai.ChatCompletionMessage{
				Role:      openai.ChatMessageRoleAssistant,
				Content:   content,
				ToolCalls: calls,
			})
			afterToolCalls = len(calls) > 0
		case engine.RoleTool:
			if !afterToolCalls {
				continue
			}
			content := msg.Content
			if content == "" {
				content = "{}"
			}
			out = append(out, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: msg.Name,
				Content:    content,
			})
		}
	}

	if system != "" {
		out = append([]openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		}}, out...)
	}
	return out
}

func toOpenAITools(schemas []engine.ToolSchema) ([]openai.Tool, error) {
	var tools []openai.Tool
	for _, ts := range schemas {
		var params map[string]any
		if err := json.Unmarshal([]byte(ts.JSONSchema), &params); err != nil {
			return nil, fmt.Errorf("invalid tool schema JSON for %s: %w", ts.Name, err)
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ts.Name,
				Description: ts.Description,
				Parameters:  params,
			},
		})
	}
	return tools, nil
}

func (c *OpenAIClient) buildRequest(model string, messages []engine.ChatMessage, schemas []engine.ToolSchema, opts engine.ChatOptions) (openai.ChatCompletionRequest, error) {
	tools, err := toOpenAITools(schemas)
	if err != nil {
		return openai.ChatCompletionRequest{}, err
	}

	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: toOpenAIMessages(messages),
	}
	if len(tools) > 0 {
		req.Tools = tools
		req.ToolChoice = "auto"
	}
	if opts.MaxOutputTokens > 0 {
		req.MaxTokens = opts.MaxOutputTokens
	}
	if opts.Temperature > 0 {
		req.Temperature = &opts.Temperature
	}
	return req, nil
}

// Chat implements engine.LLMClient.
func (c *OpenAIClient) Chat(ctx context.Context, model string, messages []engine.ChatMessage, schemas []engine.ToolSchema, opts engine.ChatOptions) (engine.LLMResponse, error) {
	req, err := c.buildRequest(model, messages, schemas, opts)
	if err != nil {
		return engine.LLMResponse{}, err
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return engine.LLMResponse{}, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return engine.LLMResponse{}, fmt.Errorf("openai chat: empty response")
	}

	choice := resp.Choices[0]
	assistant := engine.ChatMessage{
		Role:    engine.RoleAssistant,
		Content: choice.Message.Content,
	}

	var toolCalls []engine.ToolCall
	for _, tc := range choice.Message.ToolCalls {
		args := make(map[string]any)
		if tc.Function.Arguments != "" {
			// malformed arguments degrade to empty args rather than failing
			// the whole turn
			_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
		}
		toolCalls = append(toolCalls, engine.ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: args,
		})
	}
	assistant.ToolCalls = toolCalls

	finishReason := "stop"
	switch {
	case len(toolCalls) > 0:
		finishReason = "tool_calls"
	case choice.FinishReason == openai.FinishReasonLength:
		finishReason = "length"
	case choice.FinishReason == openai.FinishReasonContentFilter:
		finishReason = "content_filter"
	}

	return engine.LLMResponse{
		Assistant:    assistant,
		ToolCalls:    toolCalls,
		Usage:        engine.Usage{Prompt: resp.Usage.PromptTokens, Completion: resp.Usage.CompletionTokens, Total: resp.Usage.TotalTokens},
		FinishReason: finishReason,
	}, nil
}

// partialCall accumulates a tool call that arrives as field deltas.
type partialCall struct {
	id    string
	name  string
	index int
	args  strings.Builder
}

// finish parses accumulated arguments. A parse failure is reported through
// ToolCall.Error so the executor can surface it to the model instead of
// silently invoking the tool with garbage.
func (p *partialCall) finish() engine.ToolCall {
	tc := engine.ToolCall{ID: p.id, Name: p.name, Args: make(map[string]any)}
	raw := strings.TrimSpace(p.args.String())
	if raw == "" {
		tc.Error = "no arguments received before the stream ended"
		return tc
	}
	if err := json.Unmarshal([]byte(raw), &tc.Args); err != nil {
		if !strings.HasSuffix(raw, "}") && !strings.HasSuffix(raw, "]") {
			tc.Error = fmt.Sprintf("arguments truncated after %d bytes, stream ended prematurely", len(raw))
		} else {
			tc.Error = fmt.Sprintf("arguments are not valid JSON: %v", err)
		}
	}
	return tc
}

// Stream implements engine.LLMClient. Text deltas are forwarded as they
// arrive; tool calls are emitted once complete, in the order the model
// opened them; usage (when the API reports it) comes last.
func (c *OpenAIClient) Stream(ctx context.Context, model string, messages []engine.ChatMessage, schemas []engine.ToolSchema, opts engine.ChatOptions) (<-chan engine.StreamEvent, <-chan error) {
	eventCh := make(chan engine.StreamEvent, 10)
	errCh := make(chan error, 1)

	go func() {
		defer close(eventCh)
		defer close(errCh)

		req, err := c.buildRequest(model, messages, schemas, opts)
		if err != nil {
			errCh <- err
			return
		}
		req.Stream = true
		req.StreamOptions = &openai.StreamOptions{IncludeUsage: true}

		stream, err := c.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			errCh <- fmt.Errorf("openai stream: %w", err)
			return
		}
		defer stream.Close()

		emit := func(ev engine.StreamEvent) bool {
			select {
			case eventCh <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		accum := make(map[int]*partialCall)
		nextIndex := 0
		var usage engine.Usage

		for {
			chunk, err := stream.Recv()
			if err != nil {
				if !errors.Is(err, io.EOF) && !strings.Contains(err.Error(), "EOF") {
					errCh <- fmt.Errorf("openai stream: %w", err)
					return
				}
				break
			}

			// the final chunk carries usage and no choices
			if chunk.Usage != nil && chunk.Usage.TotalTokens > 0 {
				usage = engine.Usage{
					Prompt:     chunk.Usage.PromptTokens,
					Completion: chunk.Usage.CompletionTokens,
					Total:      chunk.Usage.TotalTokens,
				}
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta

			if delta.Content != "" {
				if !emit(engine.StreamEvent{Type: "text_delta", Text: delta.Content}) {
					return
				}
			}

			for _, tc := range delta.ToolCalls {
				idx := nextIndex
				if tc.Index != nil {
					idx = *tc.Index
				} else if tc.ID == "" && nextIndex > 0 {
					// a continuation delta without index belongs to the
					// most recently opened call
					idx = nextIndex - 1
				}
				pc, ok := accum[idx]
				if !ok {
					pc = &partialCall{index: idx}
					accum[idx] = pc
					if idx >= nextIndex {
						nextIndex = idx + 1
					}
				}
				if tc.ID != "" {
					pc.id = tc.ID
				}
				if tc.Function.Name != "" {
					pc.name = tc.Function.Name
				}
				pc.args.WriteString(tc.Function.Arguments)
			}
		}

		ordered := make([]*partialCall, 0, len(accum))
		for _, pc := range accum {
			if pc.name == "" {
				continue
			}
			ordered = append(ordered, pc)
		}
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].index < ordered[j].index })

		for _, pc := range ordered {
			if !emit(engine.StreamEvent{Type: "tool_call", ToolCall: pc.finish()}) {
				return
			}
		}
		if usage.Total > 0 {
			emit(engine.StreamEvent{Type: "usage", Usage: usage})
		}
	}()

	return eventCh, errCh
}
