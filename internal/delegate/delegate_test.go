package delegate

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Magister-Faceless/agentcore/internal/contextstore"
	"github.com/Magister-Faceless/agentcore/internal/engine"
	"github.com/Magister-Faceless/agentcore/internal/tools"
	"github.com/Magister-Faceless/agentcore/internal/workspace"
)

func TestToolName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Worker", want: "ask_worker"},
		{in: "Code Reviewer", want: "ask_code_reviewer"},
		{in: "  QA-Bot 2  ", want: "ask_qa_bot_2"},
	}
	for _, tt := range tests {
		if got := ToolName(tt.in); got != tt.want {
			t.Errorf("ToolName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// replyClient answers every turn with fixed text and no tool calls, so a
// delegated run completes in one turn.
type replyClient struct{ text string }

func (c replyClient) Chat(context.Context, string, []engine.ChatMessage, []engine.ToolSchema, engine.ChatOptions) (engine.LLMResponse, error) {
	return engine.LLMResponse{
		Assistant:    engine.ChatMessage{Role: engine.RoleAssistant, Content: c.text},
		FinishReason: "stop",
	}, nil
}

func (c replyClient) Stream(ctx context.Context, model string, messages []engine.ChatMessage, schemas []engine.ToolSchema, opts engine.ChatOptions) (<-chan engine.StreamEvent, <-chan error) {
	eventCh := make(chan engine.StreamEvent, 2)
	errCh := make(chan error, 1)
	eventCh <- engine.StreamEvent{Type: "text_delta", Text: c.text}
	close(eventCh)
	close(errCh)
	return eventCh, errCh
}

// chainClient always delegates onward to the next agent, never finishing on
// its own. Used to exercise the depth cap.
type chainClient struct{ next string }

func (c chainClient) Chat(_ context.Context, _ string, _ []engine.ChatMessage, schemas []engine.ToolSchema, _ engine.ChatOptions) (engine.LLMResponse, error) {
	askTool := "ask_" + c.next
	for _, s := range schemas {
		if s.Name == askTool {
			return engine.LLMResponse{
				Assistant: engine.ChatMessage{Role: engine.RoleAssistant},
				ToolCalls: []engine.ToolCall{{ID: "d1", Name: askTool, Args: map[string]any{"task": "keep going"}}},
			}, nil
		}
	}
	// no further hop possible: finish
	return engine.LLMResponse{
		Assistant:    engine.ChatMessage{Role: engine.RoleAssistant, Content: "bottomed out"},
		FinishReason: "stop",
	}, nil
}

func (c chainClient) Stream(ctx context.Context, model string, messages []engine.ChatMessage, schemas []engine.ToolSchema, opts engine.ChatOptions) (<-chan engine.StreamEvent, <-chan error) {
	eventCh := make(chan engine.StreamEvent, 4)
	errCh := make(chan error, 1)
	resp, _ := c.Chat(ctx, model, messages, schemas, opts)
	if resp.Assistant.Content != "" {
		eventCh <- engine.StreamEvent{Type: "text_delta", Text: resp.Assistant.Content}
	}
	for _, tc := range resp.ToolCalls {
		eventCh <- engine.StreamEvent{Type: "tool_call", ToolCall: tc}
	}
	close(eventCh)
	close(errCh)
	return eventCh, errCh
}

func testDeps(t *testing.T, newClient func(cfg engine.AgentConfig) (engine.LLMClient, error)) Deps {
	t.Helper()
	catalog, err := tools.NewCatalog(workspace.NewMemStore(), contextstore.NewStore(t.TempDir()))
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return Deps{Catalog: catalog, NewClient: newClient, Hooks: engine.Hooks{engine.NopHook{}}}
}

func TestDepthDefaultsToZero(t *testing.T) {
	if d := Depth(context.Background()); d != 0 {
		t.Errorf("Depth(background) = %d, want 0", d)
	}
}

func TestBuildToolsOnePerSibling(t *testing.T) {
	deps := testDeps(t, func(engine.AgentConfig) (engine.LLMClient, error) {
		return replyClient{text: "ok"}, nil
	})
	siblings := []engine.AgentConfig{
		{ID: "worker", Name: "Worker"},
		{ID: "reviewer", Name: "Code Reviewer"},
	}

	built := BuildTools(siblings, deps)
	if len(built) != 2 {
		t.Fatalf("len(BuildTools()) = %d, want 2", len(built))
	}
	for _, name := range []string{"ask_worker", "ask_code_reviewer"} {
		tool, ok := built[name]
		if !ok {
			t.Errorf("missing delegation tool %s", name)
			continue
		}
		if tool.Category != engine.CategoryAgent {
			t.Errorf("%s category = %v, want agent", name, tool.Category)
		}
	}
}

func TestBuildToolsDisambiguatesCollidingNames(t *testing.T) {
	deps := testDeps(t, func(engine.AgentConfig) (engine.LLMClient, error) {
		return replyClient{text: "ok"}, nil
	})
	siblings := []engine.AgentConfig{
		{ID: "writer-a", Name: "Doc Writer"},
		{ID: "writer-b", Name: "doc writer"},
	}

	built := BuildTools(siblings, deps)
	if len(built) != 2 {
		t.Fatalf("len(BuildTools()) = %d, want 2", len(built))
	}
	for _, name := range []string{"ask_doc_writer", "ask_doc_writer_writer_b"} {
		if _, ok := built[name]; !ok {
			t.Errorf("missing delegation tool %s (have %v)", name, toolNames(built))
		}
	}
}

func toolNames(built map[string]engine.Tool) []string {
	names := make([]string, 0, len(built))
	for name := range built {
		names = append(names, name)
	}
	return names
}

func TestDelegationReturnsChildAnswer(t *testing.T) {
	deps := testDeps(t, func(cfg engine.AgentConfig) (engine.LLMClient, error) {
		return replyClient{text: "child says hi"}, nil
	})
	worker := engine.AgentConfig{ID: "worker", Name: "Worker", Model: "m"}

	built := BuildTools([]engine.AgentConfig{worker}, deps)
	out, err := built["ask_worker"].Fn(context.Background(), map[string]any{"task": "greet"})
	if err != nil {
		t.Fatalf("delegation error = %v", err)
	}

	var env map[string]any
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("delegation output is not JSON: %v", err)
	}
	if env["success"] != true || env["agent"] != "Worker" {
		t.Errorf("envelope = %v", env)
	}
	if env["answer"] != "child says hi" {
		t.Errorf("answer = %v", env["answer"])
	}
	if env["status"] != string(engine.StatusCompleted) {
		t.Errorf("status = %v", env["status"])
	}
}

func TestDelegationRejectsEmptyTask(t *testing.T) {
	deps := testDeps(t, func(engine.AgentConfig) (engine.LLMClient, error) {
		return replyClient{text: "x"}, nil
	})
	built := BuildTools([]engine.AgentConfig{{ID: "worker", Name: "Worker"}}, deps)

	if _, err := built["ask_worker"].Fn(context.Background(), map[string]any{"task": "  "}); err == nil {
		t.Error("blank task accepted")
	}
	if _, err := built["ask_worker"].Fn(context.Background(), map[string]any{}); err == nil {
		t.Error("missing task accepted")
	}
}

func TestDelegationChildFailureSurfacesAsError(t *testing.T) {
	deps := testDeps(t, func(engine.AgentConfig) (engine.LLMClient, error) {
		return failingClient{}, nil
	})
	built := BuildTools([]engine.AgentConfig{{ID: "worker", Name: "Worker"}}, deps)

	_, err := built["ask_worker"].Fn(context.Background(), map[string]any{"task": "x"})
	if err == nil || !strings.Contains(err.Error(), "run failed") {
		t.Errorf("child transport failure error = %v", err)
	}
}

type failingClient struct{}

func (failingClient) Chat(context.Context, string, []engine.ChatMessage, []engine.ToolSchema, engine.ChatOptions) (engine.LLMResponse, error) {
	return engine.LLMResponse{}, &engine.TransportError{Err: context.DeadlineExceeded, Reason: engine.ReasonTimeout}
}

func (failingClient) Stream(context.Context, string, []engine.ChatMessage, []engine.ToolSchema, engine.ChatOptions) (<-chan engine.StreamEvent, <-chan error) {
	eventCh := make(chan engine.StreamEvent)
	errCh := make(chan error, 1)
	errCh <- &engine.TransportError{Err: context.DeadlineExceeded, Reason: engine.ReasonTimeout}
	close(eventCh)
	close(errCh)
	return eventCh, errCh
}

func TestDelegationDepthCapped(t *testing.T) {
	// a, b, c delegate in a cycle; the chain must bottom out at MaxDepth
	// rather than recurse forever.
	nextOf := map[string]string{"a": "b", "b": "c", "c": "a"}
	deps := testDeps(t, func(cfg engine.AgentConfig) (engine.LLMClient, error) {
		return chainClient{next: nextOf[cfg.ID]}, nil
	})
	siblings := []engine.AgentConfig{
		{ID: "a", Name: "a", MaxSteps: 2},
		{ID: "b", Name: "b", MaxSteps: 2},
		{ID: "c", Name: "c", MaxSteps: 2},
	}

	built := BuildTools(siblings, deps)
	out, err := built["ask_a"].Fn(context.Background(), map[string]any{"task": "loop"})
	if err != nil {
		t.Fatalf("delegation chain error = %v", err)
	}

	// success envelope proves the chain terminated; the deepest agent saw no
	// ask_* tool and answered directly
	var env map[string]any
	if err := json.Unmarshal([]byte(out), &env); err != nil || env["success"] != true {
		t.Fatalf("chain did not terminate cleanly: %s (err=%v)", out, err)
	}
}
