// Package notes implements the context-note tools: the model's interface to
// the durable, categorized memory under the project's .agent directory.
package notes

import (
	"context"
	"fmt"

	"github.com/Magister-Faceless/agentcore/internal/contextstore"
	"github.com/Magister-Faceless/agentcore/internal/engine"
)

const categorySchema = `"category":{"type":"string","enum":["architecture","progress","research","tasks","notes"],"description":"Note category"}`

func writeContextImpl(store *contextstore.Store, category, content, mode string) (string, error) {
	var err error
	switch mode {
	case "", "replace":
		err = store.Write(category, content)
		mode = "replace"
	case "append":
		err = store.WriteAppend(category, content)
	default:
		return "", fmt.Errorf("mode must be \"replace\" or \"append\", got %q", mode)
	}
	if err != nil {
		return "", err
	}
	return engine.Success(map[string]any{"category": category, "mode": mode, "bytes": len(content)}), nil
}

func readContextImpl(store *contextstore.Store, category string) (string, error) {
	content, err := store.Read(category)
	if err == contextstore.ErrNoteNotFound {
		return "", fmt.Errorf("no %s note has been written yet", category)
	}
	if err != nil {
		return "", err
	}
	return engine.Success(map[string]any{"category": category, "content": content}), nil
}

func listContextImpl(store *contextstore.Store) (string, error) {
	existing := store.List()
	out := make(map[string]any, len(existing))
	for c, exists := range existing {
		out[string(c)] = exists
	}
	return engine.Success(map[string]any{"categories": out}), nil
}

// NewWriteContextTool creates the write_context tool.
func NewWriteContextTool(store *contextstore.Store) engine.Tool {
	return engine.Tool{
		Name:        "write_context",
		Description: "Writes a context note that persists across sessions. Mode \"replace\" overwrites the category; \"append\" adds a timestamped block below the existing content.",
		SchemaJSON:  `{"type":"object","properties":{` + categorySchema + `,"content":{"type":"string","description":"Markdown content to store"},"mode":{"type":"string","enum":["replace","append"],"description":"Write mode. Default: replace"}},"required":["category","content"]}`,
		Category:    engine.CategoryContext,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			category, ok := args["category"].(string)
			if !ok {
				return "", fmt.Errorf("category must be a string")
			}
			content, ok := args["content"].(string)
			if !ok {
				return "", fmt.Errorf("content must be a string")
			}
			mode, _ := args["mode"].(string)
			return writeContextImpl(store, category, content, mode)
		},
	}
}

// NewReadContextTool creates the read_context tool.
func NewReadContextTool(store *contextstore.Store) engine.Tool {
	return engine.Tool{
		Name:        "read_context",
		Description: "Reads a persisted context note. Fails with a clear message when the category has never been written.",
		SchemaJSON:  `{"type":"object","properties":{` + categorySchema + `},"required":["category"]}`,
		Category:    engine.CategoryContext,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			category, ok := args["category"].(string)
			if !ok {
				return "", fmt.Errorf("category must be a string")
			}
			return readContextImpl(store, category)
		},
	}
}

// NewListContextTool creates the list_context tool.
func NewListContextTool(store *contextstore.Store) engine.Tool {
	return engine.Tool{
		Name:        "list_context",
		Description: "Lists the five context categories and whether each currently has a note.",
		SchemaJSON:  `{"type":"object","properties":{},"required":[]}`,
		Category:    engine.CategoryContext,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			return listContextImpl(store)
		},
	}
}

// NewLogProgressTool creates the log_progress tool.
func NewLogProgressTool(store *contextstore.Store) engine.Tool {
	return engine.Tool{
		Name:        "log_progress",
		Description: "Appends a structured progress entry (summary plus optional achievements, next steps, and blockers) to the progress note. Never replaces earlier entries.",
		SchemaJSON: `{"type":"object","properties":{
			"summary":{"type":"string","description":"What happened, in 1-3 sentences"},
			"achievements":{"type":"array","items":{"type":"string"},"description":"Completed items"},
			"next_steps":{"type":"array","items":{"type":"string"},"description":"Planned follow-ups"},
			"blockers":{"type":"array","items":{"type":"string"},"description":"Open blockers"}
		},"required":["summary"]}`,
		Category: engine.CategoryContext,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			summary, ok := args["summary"].(string)
			if !ok {
				return "", fmt.Errorf("summary must be a string")
			}
			entry := contextstore.ProgressEntry{
				Achievements: strs(args, "achievements"),
				NextSteps:    strs(args, "next_steps"),
				Blockers:     strs(args, "blockers"),
			}
			if err := store.LogProgress(summary, entry); err != nil {
				return "", err
			}
			return engine.Success(map[string]any{"category": "progress", "appended": true}), nil
		},
	}
}

func strs(args map[string]any, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
