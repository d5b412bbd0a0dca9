package llm

import "github.com/hazyhaar/debatearena/internal/config"

// NewFromConfig creates a multi-provider LLM client from the application
// config. Only providers with configured API keys are activated; NVIDIA comes
// first in the fallback chain because the debate model default lives there.
func NewFromConfig(cfg config.LLMConfig) *Client {
	var providers []Provider

	if cfg.NvidiaAPIKey != "" {
		providers = append(providers, NewOpenAIProvider(OpenAIConfig{
			Name:         "nvidia",
			BaseURL:      "https://integrate.api.nvidia.com/v1",
			APIKey:       cfg.NvidiaAPIKey,
			Models:       []string{"meta/llama3-70b-instruct", "meta/llama-3.1-405b-instruct"},
			DefaultModel: "meta/llama3-70b-instruct",
		}))
	}

	if cfg.GroqAPIKey != "" {
		providers = append(providers, NewOpenAIProvider(OpenAIConfig{
			Name:         "groq",
			BaseURL:      "https://api.groq.com/openai/v1",
			APIKey:       cfg.GroqAPIKey,
			Models:       []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant"},
			DefaultModel: "llama-3.3-70b-versatile",
		}))
	}

	if cfg.OpenRouterKey != "" {
		providers = append(providers, NewOpenAIProvider(OpenAIConfig{
			Name:         "openrouter",
			BaseURL:      "https://openrouter.ai/api/v1",
			APIKey:       cfg.OpenRouterKey,
			Models:       []string{"deepseek/deepseek-chat", "meta-llama/llama-3.3-70b-instruct"},
			DefaultModel: "meta-llama/llama-3.3-70b-instruct",
		}))
	}

	if cfg.GeminiAPIKey != "" {
		providers = append(providers, NewGeminiProvider(cfg.GeminiAPIKey))
	}

	if cfg.AnthropicAPIKey != "" {
		providers = append(providers, NewAnthropicProvider(cfg.AnthropicAPIKey))
	}

	return New(providers)
}
