// Command agentrun executes one agent task against a project directory and
// prints the streamed output plus the final audit trail.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Magister-Faceless/agentcore/internal/config"
	"github.com/Magister-Faceless/agentcore/internal/delegate"
	"github.com/Magister-Faceless/agentcore/internal/engine"
	"github.com/Magister-Faceless/agentcore/internal/prompts"
	"github.com/Magister-Faceless/agentcore/internal/providers"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("agentrun: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("agentrun", flag.ExitOnError)
	projectFlag := fs.String("project", "", "Project directory (default: current directory)")
	agentFlag := fs.String("agent", "orchestrator", "ID of the agent to run")
	streamFlag := fs.Bool("stream", true, "Stream model output incrementally")
	stepsFlag := fs.Int("max-steps", 0, "Override the agent's step budget")
	listFlag := fs.Bool("agents", false, "List configured agents and exit")
	trailFlag := fs.Bool("trail", false, "Print the step-by-step audit trail after the run")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := prepareRuntimeEnv(ctx, *projectFlag)
	if err != nil {
		return err
	}
	defer env.Close()

	if *listFlag {
		return listAgents(env)
	}

	task := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if task == "" {
		return fmt.Errorf("no task given (usage: agentrun [flags] <task>)")
	}

	agent, err := env.Agents.Get(*agentFlag)
	if err != nil {
		return err
	}
	applyConfigDefaults(&agent)
	if *stepsFlag > 0 {
		agent.MaxSteps = *stepsFlag
	}

	valid, invalid := env.Catalog.ValidateIDs(agent.SelectedTools)
	if len(invalid) > 0 {
		log.Printf("agent %q references unknown tools, skipping: %v", agent.ID, invalid)
		agent.SelectedTools = valid
	}

	siblings, err := env.Agents.List()
	if err != nil {
		return err
	}
	for i := range siblings {
		if siblings[i].SystemPrompt == "" {
			siblings[i].SystemPrompt = defaultPromptFor(siblings[i].ID)
		}
	}
	deps := delegate.Deps{
		Catalog:   env.Catalog,
		NewClient: providers.NewClientForAgent,
	}
	extra := delegate.BuildTools(siblingsOf(siblings, agent.ID), deps)
	toolSet := env.Catalog.BuildToolSet(agent.SelectedTools, extra)
	agent.SystemPrompt = resolveSystemPrompt(agent, toolSet.Names())

	llm, err := providers.NewClientForAgent(agent)
	if err != nil {
		return err
	}

	events := make(chan engine.Event, 64)
	printDone := make(chan struct{})
	go func() {
		defer close(printDone)
		printEvents(events)
	}()

	exec, err := engine.NewBuilder(agent).
		WithLLM(llm).
		WithToolSet(toolSet).
		WithHooks(engine.EventHook{Ch: events}).
		Build()
	if err != nil {
		close(events)
		<-printDone
		return err
	}
	exec.SetStreaming(*streamFlag)

	res := exec.Run(ctx, []engine.ChatMessage{
		{Role: engine.RoleUser, Content: task},
	})
	close(events)
	<-printDone

	printResult(res, *trailFlag)
	if res.Status == engine.StatusFailed {
		os.Exit(1)
	}
	return nil
}

// applyConfigDefaults fills fields the agent config left empty from the
// user's config file.
func applyConfigDefaults(agent *engine.AgentConfig) {
	mgr, err := config.NewManager()
	if err != nil {
		return
	}
	cfg, err := mgr.Load()
	if err != nil {
		log.Printf("ignoring unreadable config: %v", err)
		return
	}
	if agent.Provider == "" {
		agent.Provider = cfg.Provider
	}
	if agent.Model == "" {
		agent.Model = cfg.Model
	}
	if agent.MaxSteps == 0 && cfg.MaxSteps > 0 {
		agent.MaxSteps = cfg.MaxSteps
	}
}

// defaultPromptFor picks the built-in prompt matching the agent id, falling
// back to the worker prompt for user-authored agents.
func defaultPromptFor(id string) string {
	registry := prompts.DefaultRegistry()
	p, err := registry.Get(id)
	if err != nil {
		p, err = registry.Get("worker")
	}
	if err != nil {
		return ""
	}
	return p.Content
}

// resolveSystemPrompt fills a missing system prompt from the prompt registry
// and appends the tool briefing for the tools the agent was given.
func resolveSystemPrompt(agent engine.AgentConfig, toolNames []string) string {
	base := agent.SystemPrompt
	if base == "" {
		base = defaultPromptFor(agent.ID)
	}
	return prompts.Render(base, toolNames)
}

func siblingsOf(all []engine.AgentConfig, selfID string) []engine.AgentConfig {
	out := make([]engine.AgentConfig, 0, len(all))
	for _, a := range all {
		if a.ID != selfID {
			out = append(out, a)
		}
	}
	return out
}

func listAgents(env *runtimeEnv) error {
	agents, err := env.Agents.List()
	if err != nil {
		return err
	}
	for _, a := range agents {
		fmt.Printf("%-16s %s/%s  tools=%d  %s\n", a.ID, a.Provider, a.Model, len(a.SelectedTools), a.Description)
	}
	return nil
}

// printEvents renders the live event stream: text deltas verbatim, tool
// activity as single status lines.
func printEvents(events <-chan engine.Event) {
	for ev := range events {
		switch ev.Kind {
		case "delta":
			fmt.Print(ev.Data)
		case "tool_start":
			fmt.Printf("\n[tool] %s ...\n", ev.Data)
		case "tool_done":
			if rec, ok := ev.Data.(engine.ToolExecutionRecord); ok {
				fmt.Printf("[tool] %s -> %s\n", rec.ToolID, rec.Status)
			}
		}
	}
}

func printResult(res *engine.RunResult, trail bool) {
	fmt.Printf("\n\n-- run %s (%d tool calls, %d tokens)\n", res.Status, len(res.Records), res.Usage.Total)
	if res.Failure != nil {
		fmt.Printf("   failure: %s (%v)\n", res.Failure.Reason, res.Failure.Err)
	}
	if !trail {
		return
	}
	for _, step := range res.Steps {
		fmt.Printf("%3d %-12s %s\n", step.Index, step.Kind, previewPayload(step.Payload))
	}
}

func previewPayload(payload any) string {
	s := fmt.Sprintf("%v", payload)
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 120 {
		s = s[:117] + "..."
	}
	return s
}
