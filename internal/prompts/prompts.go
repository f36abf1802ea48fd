// Package prompts holds the built-in system prompts and renders the final
// prompt handed to an agent.
package prompts

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Prompt is a named system prompt.
type Prompt struct {
	ID          string
	Content     string
	Description string
}

// Registry maps prompt IDs to prompts.
type Registry struct {
	mu      sync.RWMutex
	prompts map[string]*Prompt
}

var defaultRegistry *Registry
var defaultRegistryOnce sync.Once

// DefaultRegistry returns the global registry, populated with the built-ins.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		defaultRegistry.Register(&Prompt{
			ID:          "orchestrator",
			Content:     orchestratorPrompt,
			Description: "Plans work and delegates subtasks to other agents",
		})
		defaultRegistry.Register(&Prompt{
			ID:          "worker",
			Content:     workerPrompt,
			Description: "Executes focused tasks against the workspace",
		})
	})
	return defaultRegistry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{prompts: make(map[string]*Prompt)}
}

// Register adds or replaces a prompt.
func (r *Registry) Register(p *Prompt) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[p.ID] = p
}

// Get retrieves a prompt by ID.
func (r *Registry) Get(id string) (*Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.prompts[id]
	if !ok {
		return nil, fmt.Errorf("prompt not found: %s", id)
	}
	return p, nil
}

// IDs lists registered prompt IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.prompts))
	for id := range r.prompts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Render combines a base system prompt with the tool briefing for the tools
// the agent actually has. An empty tool list produces the base prompt alone.
func Render(base string, toolNames []string) string {
	if len(toolNames) == 0 {
		return base
	}
	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\nYou have access to the following tools:\n")
	for _, name := range toolNames {
		b.WriteString("- ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	b.WriteString("\nCall a tool whenever it gets you closer to finishing the task. Respond with plain text once the task is done.")
	return b.String()
}
