// Package agents persists agent configurations per project.
package agents

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Magister-Faceless/agentcore/internal/engine"
	"github.com/Magister-Faceless/agentcore/internal/prompts"
)

// Store keeps agent configs in <project>/.agent/agents.json. Reads hit an
// in-memory cache after the first load; every mutation is written through.
type Store struct {
	mu      sync.RWMutex
	path    string
	agents  []engine.AgentConfig
	loaded  bool
	catalog []string // tool ids granted to the built-in agents
}

// NewStore creates a store for a project directory. catalogIDs are the tool
// ids the built-in agents are seeded with.
func NewStore(projectDir string, catalogIDs []string) *Store {
	return &Store{
		path:    filepath.Join(projectDir, ".agent", "agents.json"),
		catalog: catalogIDs,
	}
}

// mustPrompt reads a built-in prompt. The defaults below are unusable without
// their prompts, so a missing registration is a programming error.
func mustPrompt(registry *prompts.Registry, id string) string {
	p, err := registry.Get(id)
	if err != nil {
		panic(fmt.Sprintf("agents: built-in prompt %q not registered: %v", id, err))
	}
	return p.Content
}

// Defaults returns the built-in agent set: an orchestrator that delegates and
// a worker that executes. They are used when no agents.json exists yet.
func (s *Store) Defaults() []engine.AgentConfig {
	registry := prompts.DefaultRegistry()
	orchestrator := mustPrompt(registry, "orchestrator")
	worker := mustPrompt(registry, "worker")

	return []engine.AgentConfig{
		{
			ID:            "orchestrator",
			Name:          "Orchestrator",
			Provider:      "openai",
			Model:         "gpt-4o-mini",
			SystemPrompt:  orchestrator,
			SelectedTools: s.catalog,
			Description:   "Plans work and delegates subtasks",
		},
		{
			ID:            "worker",
			Name:          "Worker",
			Provider:      "openai",
			Model:         "gpt-4o-mini",
			SystemPrompt:  worker,
			SelectedTools: s.catalog,
			Description:   "Executes focused tasks against the workspace",
		},
	}
}

// List returns all configured agents sorted by ID.
func (s *Store) List() ([]engine.AgentConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return nil, err
	}
	out := make([]engine.AgentConfig, len(s.agents))
	copy(out, s.agents)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get returns the agent with the given id.
func (s *Store) Get(id string) (engine.AgentConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return engine.AgentConfig{}, err
	}
	for _, a := range s.agents {
		if a.ID == id {
			return a, nil
		}
	}
	return engine.AgentConfig{}, fmt.Errorf("agent not found: %s", id)
}

// Upsert adds or replaces an agent config and writes the file.
func (s *Store) Upsert(cfg engine.AgentConfig) error {
	if cfg.ID == "" {
		return fmt.Errorf("agent config needs an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return err
	}
	replaced := false
	for i, a := range s.agents {
		if a.ID == cfg.ID {
			s.agents[i] = cfg
			replaced = true
			break
		}
	}
	if !replaced {
		s.agents = append(s.agents, cfg)
	}
	return s.saveLocked()
}

// Delete removes an agent config and writes the file.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return err
	}
	for i, a := range s.agents {
		if a.ID == id {
			s.agents = append(s.agents[:i], s.agents[i+1:]...)
			return s.saveLocked()
		}
	}
	return fmt.Errorf("agent not found: %s", id)
}

func (s *Store) loadLocked() error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.agents = s.Defaults()
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read agents file: %w", err)
	}
	var agents []engine.AgentConfig
	if err := json.Unmarshal(data, &agents); err != nil {
		return fmt.Errorf("failed to parse agents json: %w", err)
	}
	s.agents = agents
	s.loaded = true
	return nil
}

func (s *Store) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create agents dir: %w", err)
	}
	data, err := json.MarshalIndent(s.agents, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal agents: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write agents file: %w", err)
	}
	return nil
}
