package providers

import (
	"fmt"
	"os"
	"strings"

	"github.com/Magister-Faceless/agentcore/internal/engine"
)

// NewClientForAgent resolves an agent's provider name to a transport client.
// API keys and base URL overrides come from the environment. DeepSeek, Groq
// and Ollama all speak the OpenAI wire protocol, so they reuse OpenAIClient
// with their own endpoints.
func NewClientForAgent(cfg engine.AgentConfig) (engine.LLMClient, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = "openai"
	}

	switch provider {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		return NewOpenAIClient(apiKey, os.Getenv("OPENAI_BASE_URL"))

	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		return NewAnthropicClient(apiKey)

	case "deepseek":
		apiKey := os.Getenv("DEEPSEEK_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY not set")
		}
		baseURL := os.Getenv("DEEPSEEK_BASE_URL")
		if baseURL == "" {
			baseURL = "https://api.deepseek.com/v1"
		}
		return NewOpenAIClient(apiKey, baseURL)

	case "groq":
		apiKey := os.Getenv("GROQ_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY not set")
		}
		baseURL := os.Getenv("GROQ_BASE_URL")
		if baseURL == "" {
			baseURL = "https://api.groq.com/openai/v1"
		}
		return NewOpenAIClient(apiKey, baseURL)

	case "ollama":
		// local server, no key required
		baseURL := os.Getenv("OLLAMA_BASE_URL")
		if baseURL == "" {
			baseURL = "http://localhost:11434/v1"
		}
		return NewOpenAIClient("ollama", baseURL)

	default:
		return nil, fmt.Errorf("unknown provider %q (supported: openai, anthropic, deepseek, groq, ollama)", cfg.Provider)
	}
}
