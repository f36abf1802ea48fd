// Package tools assembles the static tool catalog and builds per-run tool
// sets from an agent's selected tool ids.
package tools

import (
	"fmt"
	"log"

	"github.com/Magister-Faceless/agentcore/internal/contextstore"
	"github.com/Magister-Faceless/agentcore/internal/engine"
	"github.com/Magister-Faceless/agentcore/internal/tools/files"
	"github.com/Magister-Faceless/agentcore/internal/tools/notes"
	"github.com/Magister-Faceless/agentcore/internal/tools/search"
	"github.com/Magister-Faceless/agentcore/internal/workspace"
)

// Definition is one catalog entry: an invocable tool plus the flags the
// tool-set builder and the configuration UI need.
type Definition struct {
	Tool           engine.Tool
	DefaultEnabled bool
}

// ID returns the tool's stable identifier.
func (d Definition) ID() string { return d.Tool.Name }

// Catalog is the static registry of tool definitions. Registration happens
// once at construction; the catalog is immutable afterwards, so tool identity
// and schema stay stable for the lifetime of any in-flight run.
type Catalog struct {
	defs  map[string]Definition
	order []string
}

// NewCatalog registers the built-in tools against the injected collaborators.
// Every tool receives its workspace or context-store handle here; nothing
// reaches into ambient global state.
func NewCatalog(ws workspace.Store, ctxStore *contextstore.Store) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]Definition)}

	builtins := []Definition{
		{Tool: files.NewCreateFolderTool(ws), DefaultEnabled: true},
		{Tool: files.NewCreateFileTool(ws), DefaultEnabled: true},
		{Tool: files.NewReadFileTool(ws), DefaultEnabled: true},
		{Tool: files.NewWriteFileTool(ws), DefaultEnabled: true},
		{Tool: files.NewRenameFileTool(ws), DefaultEnabled: false},
		{Tool: files.NewListFilesTool(ws), DefaultEnabled: true},
		{Tool: notes.NewWriteContextTool(ctxStore), DefaultEnabled: true},
		{Tool: notes.NewReadContextTool(ctxStore), DefaultEnabled: true},
		{Tool: notes.NewListContextTool(ctxStore), DefaultEnabled: true},
		{Tool: notes.NewLogProgressTool(ctxStore), DefaultEnabled: true},
		{Tool: search.NewSearchFilesTool(ws), DefaultEnabled: false},
	}

	for _, def := range builtins {
		if err := c.register(def); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) register(def Definition) error {
	id := def.ID()
	if id == "" {
		return fmt.Errorf("catalog: tool with empty id")
	}
	if _, dup := c.defs[id]; dup {
		return fmt.Errorf("catalog: duplicate tool id %q", id)
	}
	c.defs[id] = def
	c.order = append(c.order, id)
	return nil
}

// GetByID looks a definition up by id.
func (c *Catalog) GetByID(id string) (Definition, bool) {
	def, ok := c.defs[id]
	return def, ok
}

// ListByCategory returns the definitions of one category, in registration
// order.
func (c *Catalog) ListByCategory(cat engine.ToolCategory) []Definition {
	var out []Definition
	for _, id := range c.order {
		if def := c.defs[id]; def.Tool.Category == cat {
			out = append(out, def)
		}
	}
	return out
}

// DefaultEnabledIDs returns the ids enabled for a fresh agent configuration.
func (c *Catalog) DefaultEnabledIDs() []string {
	var out []string
	for _, id := range c.order {
		if c.defs[id].DefaultEnabled {
			out = append(out, id)
		}
	}
	return out
}

// ValidateIDs partitions ids into resolvable and unresolvable. It never
// errors: callers decide policy. Order is preserved in both partitions.
func (c *Catalog) ValidateIDs(ids []string) (valid, invalid []string) {
	for _, id := range ids {
		if _, ok := c.defs[id]; ok {
			valid = append(valid, id)
		} else {
			invalid = append(invalid, id)
		}
	}
	return valid, invalid
}

// BuildToolSet resolves selected catalog ids into a per-run tool set, then
// overlays extra (delegation) tools. Unresolvable ids are dropped with a
// warning, never silently substituted and never fatal. Extra tools shadow
// catalog ids of the same name on purpose: they are synthesized per run and
// reflect what the agent configuration declared.
func (c *Catalog) BuildToolSet(selected []string, extra map[string]engine.Tool) engine.ToolSet {
	valid, invalid := c.ValidateIDs(selected)
	for _, id := range invalid {
		log.Printf("tool set: dropping unknown tool id %q", id)
	}

	ts := make(engine.ToolSet, len(valid)+len(extra))
	for _, id := range valid {
		ts[id] = c.defs[id].Tool
	}
	for id, tool := range extra {
		if _, shadowed := ts[id]; shadowed {
			log.Printf("tool set: delegation tool %q shadows catalog tool", id)
		}
		ts[id] = tool
	}
	return ts
}
