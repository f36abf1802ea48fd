package providers

import (
	"strings"
	"testing"

	"github.com/Magister-Faceless/agentcore/internal/engine"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

func transcript() []engine.ChatMessage {
	return []engine.ChatMessage{
		{Role: engine.RoleUser, Content: "make docs"},
		{Role: engine.RoleSystem, Content: "be helpful"},
		{Role: engine.RoleAssistant, ToolCalls: []engine.ToolCall{
			{ID: "call_1", Name: "create_folder", Args: map[string]any{"name": "docs"}},
		}},
		{Role: engine.RoleTool, Name: "call_1", Content: `{"success":true}`},
		{Role: engine.RoleAssistant, Content: "done"},
	}
}

func TestToOpenAIMessages(t *testing.T) {
	got := toOpenAIMessages(transcript())

	if got[0].Role != openai.ChatMessageRoleSystem || got[0].Content != "be helpful" {
		t.Errorf("system message not hoisted to the front: %+v", got[0])
	}

	var sawToolMsg bool
	for _, m := range got {
		if m.Role == openai.ChatMessageRoleTool {
			sawToolMsg = true
			if m.ToolCallID != "call_1" {
				t.Errorf("tool message ToolCallID = %q, want call_1", m.ToolCallID)
			}
		}
		if m.Role == openai.ChatMessageRoleAssistant && len(m.ToolCalls) > 0 {
			if m.Content == "" {
				t.Error("assistant message with tool calls has empty content (serializes to null)")
			}
			if m.ToolCalls[0].Function.Name != "create_folder" {
				t.Errorf("tool call = %+v", m.ToolCalls[0])
			}
		}
	}
	if !sawToolMsg {
		t.Error("tool result missing from converted transcript")
	}
}

func TestToOpenAIMessagesDropsOrphanToolResult(t *testing.T) {
	got := toOpenAIMessages([]engine.ChatMessage{
		{Role: engine.RoleUser, Content: "hi"},
		{Role: engine.RoleTool, Name: "call_x", Content: "{}"},
	})
	for _, m := range got {
		if m.Role == openai.ChatMessageRoleTool {
			t.Error("orphan tool result survived conversion")
		}
	}
}

func TestToOpenAITools(t *testing.T) {
	tools, err := toOpenAITools([]engine.ToolSchema{
		{Name: "read_file", Description: "reads", JSONSchema: `{"type":"object","properties":{"path":{"type":"string"}},"required":["path"]}`},
	})
	if err != nil {
		t.Fatalf("toOpenAITools() error = %v", err)
	}
	if len(tools) != 1 || tools[0].Function.Name != "read_file" {
		t.Errorf("tools = %+v", tools)
	}

	if _, err := toOpenAITools([]engine.ToolSchema{{Name: "bad", JSONSchema: "{not json"}}); err == nil {
		t.Error("invalid schema JSON accepted")
	}
}

func TestToAnthropicMessages(t *testing.T) {
	system, msgs := toAnthropicMessages(transcript())

	if len(system) != 1 || system[0].Text != "be helpful" {
		t.Errorf("system parts = %+v", system)
	}

	// user, assistant(tool_use), user(tool_result), assistant(text)
	if len(msgs) != 4 {
		t.Fatalf("len(msgs) = %d, want 4", len(msgs))
	}
	toolUseMsg := msgs[1]
	if len(toolUseMsg.Content) != 1 || toolUseMsg.Content[0].Type != "tool_use" {
		t.Errorf("assistant tool_use block = %+v", toolUseMsg.Content)
	}
	resultMsg := msgs[2]
	if resultMsg.Role != "user" || len(resultMsg.Content) != 1 || resultMsg.Content[0].Type != "tool_result" {
		t.Errorf("tool result message = %+v", resultMsg)
	}
}

func TestPartialCallFinish(t *testing.T) {
	tests := []struct {
		name      string
		chunks    []string
		wantErr   string
		wantField string
	}{
		{name: "complete json", chunks: []string{`{"na`, `me":"docs"}`}, wantField: "docs"},
		{name: "truncated json", chunks: []string{`{"name":"do`}, wantErr: "truncated"},
		{name: "invalid json", chunks: []string{`{"name"::}`}, wantErr: "not valid JSON"},
		{name: "no arguments", chunks: nil, wantErr: "no arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := &partialCall{id: "c1", name: "create_folder"}
			for _, chunk := range tt.chunks {
				pc.args.WriteString(chunk)
			}

			tc := pc.finish()
			if tt.wantErr != "" {
				if !strings.Contains(tc.Error, tt.wantErr) {
					t.Errorf("Error = %q, want mention of %q", tc.Error, tt.wantErr)
				}
				return
			}
			if tc.Error != "" {
				t.Fatalf("unexpected Error = %q", tc.Error)
			}
			if tc.Args["name"] != tt.wantField {
				t.Errorf("Args = %v", tc.Args)
			}
		})
	}
}
