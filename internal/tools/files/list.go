package files

import (
	"context"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/Magister-Faceless/agentcore/internal/engine"
	"github.com/Magister-Faceless/agentcore/internal/workspace"
)

func listFilesImpl(ws workspace.Store, parent string, recursive bool, ignorePatterns []string) (string, error) {
	recs, err := ws.List(parent, recursive)
	if err != nil {
		return "", err
	}

	var matcher *gitignore.GitIgnore
	if len(ignorePatterns) > 0 {
		matcher = gitignore.CompileIgnoreLines(ignorePatterns...)
	}

	type entry struct {
		Path string `json:"path"`
		Kind string `json:"kind"`
	}
	entries := make([]entry, 0, len(recs))
	for _, rec := range recs {
		if matcher != nil {
			ignored := matcher.MatchesPath(rec.Path)
			if !ignored && rec.Kind == workspace.KindFolder {
				// directory patterns like "node_modules/" only match
				// slash-suffixed paths
				ignored = matcher.MatchesPath(rec.Path + "/")
			}
			if ignored {
				continue
			}
		}
		entries = append(entries, entry{Path: rec.Path, Kind: string(rec.Kind)})
	}

	return engine.Success(map[string]any{
		"path":      workspace.CleanPath(parent),
		"recursive": recursive,
		"entries":   entries,
	}), nil
}

// NewListFilesTool creates the list_files tool.
func NewListFilesTool(ws workspace.Store) engine.Tool {
	return engine.Tool{
		Name:        "list_files",
		Description: "Lists files and folders in the project workspace. Use this to discover what exists before reading or creating entries. Supports recursive listing and gitignore-style ignore patterns.",
		SchemaJSON: `{"type":"object","properties":{
			"path":{"type":"string","description":"Optional folder path to list (empty string for the project root)"},
			"recursive":{"type":"boolean","description":"If true, list entries recursively. Default: false"},
			"ignore_patterns":{"type":"array","items":{"type":"string"},"description":"Gitignore-style patterns to exclude from the listing"}
		},"required":[]}`,
		Category: engine.CategoryFile,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			return listFilesImpl(ws,
				argString(args, "path"),
				argBool(args, "recursive"),
				argStrings(args, "ignore_patterns"))
		},
	}
}
