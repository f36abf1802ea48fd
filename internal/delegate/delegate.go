// Package delegate wraps sibling agent configurations as callable tools, so
// one run can hand a task to another agent ("ask agent X to do Y"). A
// delegated run is a full child execution with its own tool set and its own
// step budget; budgets are never shared with the parent.
package delegate

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Magister-Faceless/agentcore/internal/engine"
	"github.com/Magister-Faceless/agentcore/internal/tools"
)

// MaxDepth caps the delegation chain. Parent and child budgets are
// independent, so without a depth cap a cycle of agents delegating to each
// other could fan out without bound.
const MaxDepth = 3

type depthKey struct{}

// Depth returns the delegation depth carried by ctx (0 for a root run).
func Depth(ctx context.Context) int {
	if d, ok := ctx.Value(depthKey{}).(int); ok {
		return d
	}
	return 0
}

// Deps are the collaborators a delegated run needs. NewClient resolves an
// agent configuration into a provider client; injecting it keeps this package
// free of transport concerns and lets tests substitute a scripted model.
type Deps struct {
	Catalog   *tools.Catalog
	NewClient func(cfg engine.AgentConfig) (engine.LLMClient, error)
	Hooks     engine.Hooks
}

// BuildTools synthesizes one delegation tool per sibling agent. The map is
// rebuilt for every run; delegation tools are never shared across runs.
func BuildTools(siblings []engine.AgentConfig, deps Deps) map[string]engine.Tool {
	out := make(map[string]engine.Tool, len(siblings))
	for _, sibling := range siblings {
		tool := newDelegationTool(sibling, siblings, deps)
		if _, taken := out[tool.Name]; taken {
			// two agent names can slugify to the same id; widen the slug
			// with the agent id so both stay reachable
			alt := ToolName(sibling.Name + " " + sibling.ID)
			log.Printf("delegation tool %s already registered, using %s for agent %q", tool.Name, alt, sibling.ID)
			tool.Name = alt
		}
		if _, taken := out[tool.Name]; taken {
			log.Printf("delegation tool %s still conflicts, agent %q is not delegatable this run", tool.Name, sibling.ID)
			continue
		}
		out[tool.Name] = tool
	}
	return out
}

func newDelegationTool(target engine.AgentConfig, siblings []engine.AgentConfig, deps Deps) engine.Tool {
	name := ToolName(target.Name)
	description := fmt.Sprintf("Delegate a task to the %q agent and wait for its answer.", target.Name)
	if target.Description != "" {
		description += " " + target.Description
	}

	return engine.Tool{
		Name:        name,
		Description: description,
		SchemaJSON:  `{"type":"object","properties":{"task":{"type":"string","description":"Complete, self-contained description of the task to delegate. The agent sees nothing else of this conversation."}},"required":["task"]}`,
		Category:    engine.CategoryAgent,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			task, ok := args["task"].(string)
			if !ok || strings.TrimSpace(task) == "" {
				return "", fmt.Errorf("task must be a non-empty string")
			}
			return run(ctx, target, siblings, deps, task)
		},
	}
}

// run executes the child agent. The child's terminal status is data for the
// parent: a step-limited or failed child comes back inside the envelope, not
// as a parent-run failure.
func run(ctx context.Context, target engine.AgentConfig, siblings []engine.AgentConfig, deps Deps, task string) (string, error) {
	depth := Depth(ctx) + 1
	if depth > MaxDepth {
		return "", fmt.Errorf("delegation depth limit (%d) reached", MaxDepth)
	}

	// The child may delegate further, to any sibling but itself, until the
	// depth cap makes another hop impossible.
	var extra map[string]engine.Tool
	if depth < MaxDepth {
		extra = BuildTools(others(siblings, target.ID), deps)
	}

	toolSet := deps.Catalog.BuildToolSet(target.SelectedTools, extra)

	llm, err := deps.NewClient(target)
	if err != nil {
		return "", fmt.Errorf("failed to create client for agent %q: %w", target.Name, err)
	}

	exec, err := engine.NewExecutor(llm, toolSet, target, deps.Hooks)
	if err != nil {
		return "", err
	}

	childCtx := context.WithValue(ctx, depthKey{}, depth)
	res := exec.Run(childCtx, []engine.ChatMessage{
		{Role: engine.RoleUser, Content: task},
	})

	if res.Status == engine.StatusFailed {
		reason := "unknown"
		if res.Failure != nil {
			reason = string(res.Failure.Reason)
		}
		return "", fmt.Errorf("agent %q run failed: %s", target.Name, reason)
	}

	return engine.Success(map[string]any{
		"agent":      target.Name,
		"status":     string(res.Status),
		"answer":     res.FinalText,
		"tool_calls": len(res.Records),
	}), nil
}

func others(siblings []engine.AgentConfig, excludeID string) []engine.AgentConfig {
	out := make([]engine.AgentConfig, 0, len(siblings))
	for _, s := range siblings {
		if s.ID != excludeID {
			out = append(out, s)
		}
	}
	return out
}

// ToolName derives the stable delegation tool id for an agent name.
func ToolName(agentName string) string {
	slug := strings.ToLower(strings.TrimSpace(agentName))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, slug)
	return "ask_" + strings.Trim(slug, "_")
}
