package files

import (
	"context"
	"errors"
	"fmt"

	"github.com/Magister-Faceless/agentcore/internal/engine"
	"github.com/Magister-Faceless/agentcore/internal/workspace"
)

func readFileImpl(ws workspace.Store, p string) (string, error) {
	rec, err := ws.FindByPath(p)
	if errors.Is(err, workspace.ErrNotFound) {
		return "", fmt.Errorf("file not found: %s", workspace.CleanPath(p))
	}
	if err != nil {
		return "", err
	}
	if rec.Kind != workspace.KindFile {
		return "", fmt.Errorf("%s is a folder, not a file", rec.Path)
	}

	return engine.Success(map[string]any{"path": rec.Path, "content": rec.Content}), nil
}

func writeFileImpl(ws workspace.Store, p, content string) (string, error) {
	rec, err := ws.FindByPath(p)
	switch {
	case errors.Is(err, workspace.ErrNotFound):
		// Create on first write, the way an editor save does.
		full := workspace.CleanPath(p)
		if err := ensureFolders(ws, parentDir(full)); err != nil {
			return "", err
		}
		fresh := workspace.NewRecord(full, workspace.KindFile, content)
		if err := ws.Create(fresh); err != nil {
			return "", err
		}
		return engine.Success(map[string]any{"path": full, "created": true, "bytes": len(content)}), nil
	case err != nil:
		return "", err
	}

	if rec.Kind != workspace.KindFile {
		return "", fmt.Errorf("%s is a folder, not a file", rec.Path)
	}
	if err := ws.Update(rec.ID, workspace.Patch{Content: &content}); err != nil {
		return "", err
	}
	return engine.Success(map[string]any{"path": rec.Path, "created": false, "bytes": len(content)}), nil
}

func parentDir(full string) string {
	for i := len(full) - 1; i >= 0; i-- {
		if full[i] == '/' {
			return full[:i]
		}
	}
	return ""
}

// NewReadFileTool creates the read_file tool.
func NewReadFileTool(ws workspace.Store) engine.Tool {
	return engine.Tool{
		Name:        "read_file",
		Description: "Reads the content of a file in the project workspace.",
		SchemaJSON:  `{"type":"object","properties":{"path":{"type":"string","description":"Full file path relative to the project root"}},"required":["path"]}`,
		Category:    engine.CategoryFile,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			p, ok := args["path"].(string)
			if !ok {
				return "", fmt.Errorf("path must be a string")
			}
			return readFileImpl(ws, p)
		},
	}
}

// NewWriteFileTool creates the write_file tool.
func NewWriteFileTool(ws workspace.Store) engine.Tool {
	return engine.Tool{
		Name:        "write_file",
		Description: "Writes content to a file. Creates the file if it doesn't exist, overwrites if it does.",
		SchemaJSON:  `{"type":"object","properties":{"path":{"type":"string","description":"Full file path relative to the project root"},"content":{"type":"string","description":"Content to write"}},"required":["path","content"]}`,
		Category:    engine.CategoryFile,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			p, ok := args["path"].(string)
			if !ok {
				return "", fmt.Errorf("path must be a string")
			}
			content, ok := args["content"].(string)
			if !ok {
				return "", fmt.Errorf("content must be a string")
			}
			return writeFileImpl(ws, p, content)
		},
	}
}
