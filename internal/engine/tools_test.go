package engine

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValidateArgs(t *testing.T) {
	tool := Tool{
		Name:       "write",
		SchemaJSON: `{"type":"object","properties":{"path":{"type":"string"},"count":{"type":"integer"}},"required":["path"]}`,
	}

	tests := []struct {
		name    string
		args    map[string]any
		wantErr bool
	}{
		{name: "valid", args: map[string]any{"path": "a.txt"}, wantErr: false},
		{name: "valid with optional", args: map[string]any{"path": "a.txt", "count": 3}, wantErr: false},
		{name: "missing required", args: map[string]any{"count": 3}, wantErr: true},
		{name: "wrong type", args: map[string]any{"path": 42}, wantErr: true},
		{name: "empty args missing required", args: map[string]any{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tool.ValidateArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateArgs(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if err != nil {
				var inputErr *ToolInputError
				if !errors.As(err, &inputErr) {
					t.Errorf("error type = %T, want *ToolInputError", err)
				}
			}
		})
	}
}

func TestEnvelopes(t *testing.T) {
	t.Run("success merges fields", func(t *testing.T) {
		out := Success(map[string]any{"path": "docs/readme.md", "bytes": 5})
		var got map[string]any
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("Success produced invalid JSON: %v", err)
		}
		if got["success"] != true || got["path"] != "docs/readme.md" {
			t.Errorf("envelope = %v", got)
		}
	})

	t.Run("failure carries message", func(t *testing.T) {
		out := Failure(errors.New("file not found: x"))
		var got map[string]any
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("Failure produced invalid JSON: %v", err)
		}
		if got["success"] != false || got["error"] != "file not found: x" {
			t.Errorf("envelope = %v", got)
		}
	})
}

func TestToolSetSchemasStableOrder(t *testing.T) {
	ts := ToolSet{
		"zeta":  {Name: "zeta", SchemaJSON: "{}"},
		"alpha": {Name: "alpha", SchemaJSON: "{}"},
		"mid":   {Name: "mid", SchemaJSON: "{}"},
	}

	schemas := ts.Schemas()
	want := []string{"alpha", "mid", "zeta"}
	if len(schemas) != len(want) {
		t.Fatalf("len(Schemas()) = %d, want %d", len(schemas), len(want))
	}
	for i, s := range schemas {
		if s.Name != want[i] {
			t.Errorf("Schemas()[%d].Name = %q, want %q", i, s.Name, want[i])
		}
	}
}
