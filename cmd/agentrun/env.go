package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Magister-Faceless/agentcore/internal/agents"
	"github.com/Magister-Faceless/agentcore/internal/contextstore"
	"github.com/Magister-Faceless/agentcore/internal/tools"
	"github.com/Magister-Faceless/agentcore/internal/workspace"
)

// runtimeEnv bundles the per-project collaborators a run needs: the workspace
// record store, the context notes, the tool catalog and the agent configs.
type runtimeEnv struct {
	ProjectRoot string
	Workspace   *workspace.SQLiteStore
	Notes       *contextstore.Store
	Watcher     *contextstore.NoteWatcher
	Catalog     *tools.Catalog
	Agents      *agents.Store
}

func (r *runtimeEnv) Close() {
	if r.Watcher != nil {
		r.Watcher.Stop()
	}
	if r.Workspace != nil {
		_ = r.Workspace.Close()
	}
}

func prepareRuntimeEnv(ctx context.Context, projectFlag string) (*runtimeEnv, error) {
	projectRoot := projectFlag
	if projectRoot == "" {
		var err error
		projectRoot, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project path: %w", err)
	}
	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project path is not a valid directory: %s", absRoot)
	}

	agentDir := filepath.Join(absRoot, ".agent")
	if err := os.MkdirAll(agentDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .agent dir: %w", err)
	}

	ws, err := workspace.NewSQLiteStore(ctx, filepath.Join(agentDir, "workspace.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace store: %w", err)
	}

	notes := contextstore.NewStore(absRoot)
	catalog, err := tools.NewCatalog(ws, notes)
	if err != nil {
		_ = ws.Close()
		return nil, err
	}

	env := &runtimeEnv{
		ProjectRoot: absRoot,
		Workspace:   ws,
		Notes:       notes,
		Catalog:     catalog,
		Agents:      agents.NewStore(absRoot, catalog.DefaultEnabledIDs()),
	}

	// External edits to the context notes are worth surfacing during a run,
	// but a watcher failure should not block execution.
	if watcher, err := contextstore.NewNoteWatcher(notes); err == nil {
		env.Watcher = watcher
		watcher.Start(ctx)
		go func() {
			for cat := range watcher.Changes() {
				log.Printf("context notes changed on disk: %s", cat)
			}
		}()
	} else {
		log.Printf("note watcher unavailable: %v", err)
	}

	return env, nil
}
