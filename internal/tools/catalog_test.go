package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Magister-Faceless/agentcore/internal/contextstore"
	"github.com/Magister-Faceless/agentcore/internal/engine"
	"github.com/Magister-Faceless/agentcore/internal/workspace"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(workspace.NewMemStore(), contextstore.NewStore(t.TempDir()))
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return c
}

func TestCatalogRegistersBuiltins(t *testing.T) {
	c := newTestCatalog(t)

	wantIDs := []string{
		"create_folder", "create_file", "read_file", "write_file", "rename_file",
		"list_files", "write_context", "read_context", "list_context",
		"log_progress", "search_files",
	}
	for _, id := range wantIDs {
		if _, ok := c.GetByID(id); !ok {
			t.Errorf("GetByID(%q) missing", id)
		}
	}

	fileTools := c.ListByCategory(engine.CategoryFile)
	if len(fileTools) != 6 {
		t.Errorf("file category has %d tools, want 6", len(fileTools))
	}
	contextTools := c.ListByCategory(engine.CategoryContext)
	if len(contextTools) != 4 {
		t.Errorf("context category has %d tools, want 4", len(contextTools))
	}
}

func TestCatalogDefaultEnabledIDs(t *testing.T) {
	c := newTestCatalog(t)

	defaults := c.DefaultEnabledIDs()
	on := make(map[string]bool, len(defaults))
	for _, id := range defaults {
		on[id] = true
	}
	if on["rename_file"] || on["search_files"] {
		t.Errorf("defaults %v include opt-in tools", defaults)
	}
	if !on["create_file"] || !on["write_context"] {
		t.Errorf("defaults %v miss core tools", defaults)
	}
}

func TestValidateIDsPartitions(t *testing.T) {
	c := newTestCatalog(t)

	valid, invalid := c.ValidateIDs([]string{"read_file", "bogus", "write_file", "also_bogus"})
	if len(valid) != 2 || valid[0] != "read_file" || valid[1] != "write_file" {
		t.Errorf("valid = %v, want [read_file write_file] in order", valid)
	}
	if len(invalid) != 2 || invalid[0] != "bogus" || invalid[1] != "also_bogus" {
		t.Errorf("invalid = %v, want [bogus also_bogus] in order", invalid)
	}
}

func TestBuildToolSetDropsUnknownAndOverlays(t *testing.T) {
	c := newTestCatalog(t)

	extra := map[string]engine.Tool{
		"ask_worker": {Name: "ask_worker", SchemaJSON: "{}", Category: engine.CategoryAgent},
		// shadows the catalog entry of the same name
		"read_file": {Name: "read_file", Description: "shadowed", SchemaJSON: "{}"},
	}
	ts := c.BuildToolSet([]string{"read_file", "nope", "create_file"}, extra)

	if _, ok := ts["nope"]; ok {
		t.Error("unknown id survived into the tool set")
	}
	if _, ok := ts["ask_worker"]; !ok {
		t.Error("delegation tool missing from tool set")
	}
	if ts["read_file"].Description != "shadowed" {
		t.Error("extra tool did not shadow the catalog tool")
	}
	if len(ts) != 3 {
		t.Errorf("tool set has %d entries, want 3", len(ts))
	}
}

// scriptedClient drives a real executor against the real catalog tools.
type scriptedClient struct {
	turns []engine.LLMResponse
	call  int
}

func (s *scriptedClient) Chat(_ context.Context, _ string, _ []engine.ChatMessage, _ []engine.ToolSchema, _ engine.ChatOptions) (engine.LLMResponse, error) {
	resp := s.turns[s.call]
	s.call++
	return resp, nil
}

func (s *scriptedClient) Stream(context.Context, string, []engine.ChatMessage, []engine.ToolSchema, engine.ChatOptions) (<-chan engine.StreamEvent, <-chan error) {
	eventCh := make(chan engine.StreamEvent)
	errCh := make(chan error)
	close(eventCh)
	close(errCh)
	return eventCh, errCh
}

func TestRunCreatesFolderAndFile(t *testing.T) {
	ws := workspace.NewMemStore()
	c, err := NewCatalog(ws, contextstore.NewStore(t.TempDir()))
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	llm := &scriptedClient{turns: []engine.LLMResponse{
		{
			Assistant: engine.ChatMessage{Role: engine.RoleAssistant},
			ToolCalls: []engine.ToolCall{{
				ID: "c1", Name: "create_folder",
				Args: map[string]any{"name": "docs"},
			}},
		},
		{
			Assistant: engine.ChatMessage{Role: engine.RoleAssistant},
			ToolCalls: []engine.ToolCall{{
				ID: "c2", Name: "create_file",
				Args: map[string]any{"name": "readme.md", "path": "docs", "content": "hello"},
			}},
		},
		{
			Assistant: engine.ChatMessage{Role: engine.RoleAssistant, Content: "created docs/readme.md"},
		},
	}}

	exec, err := engine.NewExecutor(llm, c.BuildToolSet(c.DefaultEnabledIDs(), nil),
		engine.AgentConfig{Model: "m"}, engine.Hooks{engine.NopHook{}})
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}
	exec.SetStreaming(false)

	res := exec.Run(context.Background(), []engine.ChatMessage{
		{Role: engine.RoleUser, Content: "create docs/readme.md saying hello"},
	})

	if res.Status != engine.StatusCompleted {
		t.Fatalf("Status = %v, want %v", res.Status, engine.StatusCompleted)
	}
	if len(res.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(res.Records))
	}
	for _, rec := range res.Records {
		if rec.Status != engine.RecordSuccess {
			t.Errorf("record %s failed: %s", rec.ToolID, rec.Error)
		}
		var envelope map[string]any
		if err := json.Unmarshal([]byte(rec.Output), &envelope); err != nil || envelope["success"] != true {
			t.Errorf("record %s output %q is not a success envelope", rec.ToolID, rec.Output)
		}
	}

	file, err := ws.FindByPath("docs/readme.md")
	if err != nil {
		t.Fatalf("file not in workspace: %v", err)
	}
	if file.Content != "hello" {
		t.Errorf("content = %q, want %q", file.Content, "hello")
	}
	folder, err := ws.FindByPath("docs")
	if err != nil || folder.Kind != workspace.KindFolder {
		t.Errorf("docs folder record = %+v, err = %v", folder, err)
	}
	if !strings.Contains(res.FinalText, "created") {
		t.Errorf("FinalText = %q", res.FinalText)
	}
}
