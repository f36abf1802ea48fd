package files

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/Magister-Faceless/agentcore/internal/engine"
	"github.com/Magister-Faceless/agentcore/internal/workspace"
)

func renameFileImpl(ws workspace.Store, p, newName string) (string, error) {
	rec, err := ws.FindByPath(p)
	if errors.Is(err, workspace.ErrNotFound) {
		return "", fmt.Errorf("not found: %s", workspace.CleanPath(p))
	}
	if err != nil {
		return "", err
	}

	newPath, err := joinPath(rec.ParentPath, newName)
	if err != nil {
		return "", err
	}
	if _, err := ws.FindByPath(newPath); err == nil {
		return "", fmt.Errorf("target already exists: %s", newPath)
	} else if !errors.Is(err, workspace.ErrNotFound) {
		return "", err
	}

	// snapshot descendants before the folder record moves, so their paths
	// can be rewritten under the new prefix
	var descendants []workspace.FileRecord
	if rec.Kind == workspace.KindFolder {
		descendants, err = ws.List(rec.Path, true)
		if err != nil {
			return "", err
		}
	}

	name := path.Base(newPath)
	if err := ws.Update(rec.ID, workspace.Patch{Name: &name, Path: &newPath}); err != nil {
		return "", err
	}
	for _, child := range descendants {
		childPath := newPath + strings.TrimPrefix(child.Path, rec.Path)
		if err := ws.Update(child.ID, workspace.Patch{Path: &childPath}); err != nil {
			return "", fmt.Errorf("move %s: %w", child.Path, err)
		}
	}

	return engine.Success(map[string]any{"old_path": rec.Path, "path": newPath, "moved": len(descendants)}), nil
}

// NewRenameFileTool creates the rename_file tool.
func NewRenameFileTool(ws workspace.Store) engine.Tool {
	return engine.Tool{
		Name:        "rename_file",
		Description: "Renames a file or folder within its current parent folder.",
		SchemaJSON:  `{"type":"object","properties":{"path":{"type":"string","description":"Current full path of the entry"},"new_name":{"type":"string","description":"New name, without path separators"}},"required":["path","new_name"]}`,
		Category:    engine.CategoryFile,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			p, ok := args["path"].(string)
			if !ok {
				return "", fmt.Errorf("path must be a string")
			}
			newName, ok := args["new_name"].(string)
			if !ok {
				return "", fmt.Errorf("new_name must be a string")
			}
			return renameFileImpl(ws, p, newName)
		},
	}
}
