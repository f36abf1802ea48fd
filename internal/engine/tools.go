package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

// ToolCategory groups tools by the capability surface they expose.
type ToolCategory string

const (
	CategoryFile    ToolCategory = "file"
	CategoryContext ToolCategory = "context"
	CategoryAgent   ToolCategory = "agent"
	CategoryCustom  ToolCategory = "custom"
)

// ToolFunc executes a tool. Implementations return the envelope JSON produced
// by Success/Failure; they must not panic across this boundary (the executor
// recovers anyway, but a recovered panic still counts as a tool error).
type ToolFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool is an invocable, schema-validated capability the model may call.
type Tool struct {
	Name        string
	Description string
	SchemaJSON  string
	Fn          ToolFunc
	Category    ToolCategory
}

// ValidateArgs validates the provided arguments against the tool's JSON schema.
func (t Tool) ValidateArgs(args map[string]any) error {
	schemaLoader := gojsonschema.NewStringLoader(t.SchemaJSON)
	documentLoader := gojsonschema.NewGoLoader(args)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		var msgs []string
		for _, verr := range result.Errors() {
			msgs = append(msgs, verr.String())
		}
		return &ToolInputError{ToolName: t.Name, Issues: msgs}
	}
	return nil
}

// ToolSet is the per-run mapping from tool name to invocable tool. It is
// assembled fresh for each run and never shared or mutated across runs, so
// per-run delegation tools cannot leak between executions.
type ToolSet map[string]Tool

// Schemas returns the function-calling schemas in stable name order.
func (ts ToolSet) Schemas() []ToolSchema {
	names := make([]string, 0, len(ts))
	for name := range ts {
		names = append(names, name)
	}
	sort.Strings(names)

	s := make([]ToolSchema, 0, len(ts))
	for _, name := range names {
		t := ts[name]
		s = append(s, ToolSchema{
			Name:        t.Name,
			Description: t.Description,
			JSONSchema:  t.SchemaJSON,
		})
	}
	return s
}

// Names returns the tool names in stable order, for log and error messages.
func (ts ToolSet) Names() []string {
	names := make([]string, 0, len(ts))
	for name := range ts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Success marshals a success envelope. Extra fields are merged beside
// "success": true.
func Success(fields map[string]any) string {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["success"] = true
	data, err := json.Marshal(out)
	if err != nil {
		// Marshal of map[string]any with JSON-safe values cannot fail; keep a
		// well-formed envelope if a caller sneaks in something exotic.
		return `{"success":true}`
	}
	return string(data)
}

// Failure marshals the uniform failure envelope. This envelope is the only
// channel for tool failure; tools never throw across the invocation boundary.
func Failure(err error) string {
	data, _ := json.Marshal(map[string]any{
		"success": false,
		"error":   err.Error(),
	})
	return string(data)
}
