// Package files implements the workspace file tools. All of them go through
// the workspace.Store collaborator; none touch the host file system.
package files

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/Magister-Faceless/agentcore/internal/workspace"
)

// joinPath builds the full workspace path from an optional parent folder and
// an entry name.
func joinPath(parent, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("name cannot be empty")
	}
	if strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return "", fmt.Errorf("name must not contain path separators: %q", name)
	}
	return workspace.CleanPath(path.Join(parent, name)), nil
}

// ensureFolders creates any missing ancestor folder records for p, mirroring
// MkdirAll semantics over the record store.
func ensureFolders(ws workspace.Store, p string) error {
	p = workspace.CleanPath(p)
	if p == "" {
		return nil
	}

	segments := strings.Split(p, "/")
	cur := ""
	for _, seg := range segments {
		if cur == "" {
			cur = seg
		} else {
			cur = cur + "/" + seg
		}

		rec, err := ws.FindByPath(cur)
		if err == nil {
			if rec.Kind != workspace.KindFolder {
				return fmt.Errorf("%s exists and is not a folder", cur)
			}
			continue
		}
		if !errors.Is(err, workspace.ErrNotFound) {
			return err
		}
		if err := ws.Create(workspace.NewRecord(cur, workspace.KindFolder, "")); err != nil {
			return err
		}
	}
	return nil
}

// argString reads an optional string argument.
func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// argBool reads an optional bool argument.
func argBool(args map[string]any, key string) bool {
	v, ok := args[key].(bool)
	return ok && v
}

// argStrings reads an optional string-array argument.
func argStrings(args map[string]any, key string) []string {
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
