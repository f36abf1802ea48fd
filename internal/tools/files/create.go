package files

import (
	"context"
	"errors"
	"fmt"

	"github.com/Magister-Faceless/agentcore/internal/engine"
	"github.com/Magister-Faceless/agentcore/internal/workspace"
)

func createFolderImpl(ws workspace.Store, name, parent string) (string, error) {
	full, err := joinPath(parent, name)
	if err != nil {
		return "", err
	}

	if rec, err := ws.FindByPath(full); err == nil {
		if rec.Kind == workspace.KindFolder {
			return "", fmt.Errorf("folder already exists: %s", full)
		}
		return "", fmt.Errorf("a file already exists at %s", full)
	} else if !errors.Is(err, workspace.ErrNotFound) {
		return "", err
	}

	if err := ensureFolders(ws, full); err != nil {
		return "", err
	}

	return engine.Success(map[string]any{"path": full, "kind": "folder"}), nil
}

func createFileImpl(ws workspace.Store, name, parent, content string) (string, error) {
	full, err := joinPath(parent, name)
	if err != nil {
		return "", err
	}

	if _, err := ws.FindByPath(full); err == nil {
		return "", fmt.Errorf("file already exists: %s (use write_file to overwrite)", full)
	} else if !errors.Is(err, workspace.ErrNotFound) {
		return "", err
	}

	if parentPath := workspace.CleanPath(parent); parentPath != "" {
		if err := ensureFolders(ws, parentPath); err != nil {
			return "", err
		}
	}

	rec := workspace.NewRecord(full, workspace.KindFile, content)
	if err := ws.Create(rec); err != nil {
		return "", err
	}

	return engine.Success(map[string]any{"path": full, "id": rec.ID, "bytes": len(content)}), nil
}

// NewCreateFolderTool creates the create_folder tool.
func NewCreateFolderTool(ws workspace.Store) engine.Tool {
	return engine.Tool{
		Name:        "create_folder",
		Description: "Creates a folder in the project workspace. Missing parent folders are created as well.",
		SchemaJSON:  `{"type":"object","properties":{"name":{"type":"string","description":"Folder name"},"path":{"type":"string","description":"Optional parent folder path (empty string for the project root)"}},"required":["name"]}`,
		Category:    engine.CategoryFile,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			name, ok := args["name"].(string)
			if !ok {
				return "", fmt.Errorf("name must be a string")
			}
			return createFolderImpl(ws, name, argString(args, "path"))
		},
	}
}

// NewCreateFileTool creates the create_file tool.
func NewCreateFileTool(ws workspace.Store) engine.Tool {
	return engine.Tool{
		Name:        "create_file",
		Description: "Creates a new file in the project workspace. Fails if the file already exists; use write_file to overwrite.",
		SchemaJSON:  `{"type":"object","properties":{"name":{"type":"string","description":"File name, including extension"},"path":{"type":"string","description":"Optional parent folder path (empty string for the project root)"},"content":{"type":"string","description":"Initial file content"}},"required":["name"]}`,
		Category:    engine.CategoryFile,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			name, ok := args["name"].(string)
			if !ok {
				return "", fmt.Errorf("name must be a string")
			}
			return createFileImpl(ws, name, argString(args, "path"), argString(args, "content"))
		},
	}
}
