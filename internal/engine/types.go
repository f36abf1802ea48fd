package engine

import (
	"context"
	"fmt"
)

// MessageRole represents the role of a chat message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// ChatMessage is the provider-agnostic message we pass around.
type ChatMessage struct {
	Role    MessageRole
	Content string
	Name    string // tool call id for tool messages
	// ToolCalls stores the tool calls made by an assistant message; providers
	// require them when the transcript is converted back to wire format.
	ToolCalls []ToolCall
}

// Validate checks if the ChatMessage is valid.
func (m ChatMessage) Validate() error {
	switch m.Role {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
	default:
		return fmt.Errorf("invalid message role: %s", m.Role)
	}
	if m.Role == RoleTool && m.Name == "" {
		return fmt.Errorf("tool messages must have a Name field")
	}
	return nil
}

// Usage holds token accounting returned by providers.
type Usage struct {
	Prompt     int
	Completion int
	Total      int
}

// Add accumulates another usage sample.
func (u *Usage) Add(other Usage) {
	u.Prompt += other.Prompt
	u.Completion += other.Completion
	u.Total += other.Total
}

// ToolCall represents a tool the assistant requested.
type ToolCall struct {
	ID   string // provider-specific call id (e.g. OpenAI's call_xxx)
	Name string
	Args map[string]any
	// Error is set by the provider when the call arrived malformed (e.g. the
	// stream ended mid-arguments). Such calls are never invoked.
	Error string
}

// LLMResponse is a normalized result of one chat turn.
type LLMResponse struct {
	Assistant    ChatMessage
	ToolCalls    []ToolCall
	Usage        Usage
	FinishReason string // "stop" | "length" | "tool_calls" | "content_filter"
}

// StreamEvent is one item of a provider's ordered event stream. The executor
// is the sole consumer and tolerates any interleaving the provider chooses.
type StreamEvent struct {
	Type     string // "text_delta" | "tool_call" | "usage"
	Text     string
	ToolCall ToolCall
	Usage    Usage
}

// LLMClient abstracts the model-provider transport.
type LLMClient interface {
	Chat(ctx context.Context, model string, messages []ChatMessage, toolSchemas []ToolSchema, opts ChatOptions) (LLMResponse, error)
	// Stream yields events on the first channel; the second carries at most
	// one transport error. Both are closed when the turn is over.
	Stream(ctx context.Context, model string, messages []ChatMessage, toolSchemas []ToolSchema, opts ChatOptions) (<-chan StreamEvent, <-chan error)
}

// ChatOptions carries per-call knobs forwarded to the provider SDK.
type ChatOptions struct {
	Temperature     float32
	MaxOutputTokens int
	Stream          bool
}

// ToolSchema is the function-calling schema the provider expects.
type ToolSchema struct {
	Name        string
	Description string
	JSONSchema  string // raw JSON string
}
