package engine

// DefaultMaxSteps bounds a run when the agent config does not set its own.
const DefaultMaxSteps = 10

// AgentConfig describes one configured agent: which model it talks to, how it
// is prompted, and which subset of the tool catalog it may use. The config is
// owned by the surrounding application and read-only for the duration of a run.
type AgentConfig struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Provider      string   `json:"provider"` // "openai", "anthropic", ...
	Model         string   `json:"model"`
	SystemPrompt  string   `json:"system_prompt"`
	Temperature   float32  `json:"temperature"`
	MaxTokens     int      `json:"max_tokens"`
	MaxSteps      int      `json:"max_steps"`
	SelectedTools []string `json:"selected_tools"` // catalog ids, order preserved
	Description   string   `json:"description,omitempty"`
}

// StepBudget returns the effective step bound for this config.
func (c AgentConfig) StepBudget() int {
	if c.MaxSteps > 0 {
		return c.MaxSteps
	}
	return DefaultMaxSteps
}
