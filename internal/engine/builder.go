package engine

import (
	"fmt"
	"log"
)

// Builder constructs an Executor with a fluent API.
type Builder struct {
	cfg   AgentConfig
	llm   LLMClient
	tools ToolSet
	hooks Hooks
}

// NewBuilder creates a builder for the given agent configuration.
func NewBuilder(cfg AgentConfig) *Builder {
	return &Builder{cfg: cfg}
}

// WithLLM sets the model-provider client.
func (b *Builder) WithLLM(llm LLMClient) *Builder {
	b.llm = llm
	return b
}

// WithToolSet sets the per-run tool set.
func (b *Builder) WithToolSet(ts ToolSet) *Builder {
	b.tools = ts
	return b
}

// WithHooks sets the observer hooks.
func (b *Builder) WithHooks(hooks ...Hook) *Builder {
	b.hooks = Hooks(hooks)
	return b
}

// WithSystemPrompt overrides the configured system prompt.
func (b *Builder) WithSystemPrompt(prompt string) *Builder {
	b.cfg.SystemPrompt = prompt
	return b
}

// Build validates the wiring and constructs the Executor.
func (b *Builder) Build() (*Executor, error) {
	if b.llm == nil {
		return nil, fmt.Errorf("LLM client not configured: use WithLLM")
	}
	if b.hooks == nil {
		b.hooks = Hooks{LoggerHook{L: log.Default()}}
	}
	if len(b.tools) == 0 {
		log.Printf("agent %q built with an empty tool set", b.cfg.Name)
	}
	return NewExecutor(b.llm, b.tools, b.cfg, b.hooks)
}
