package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	LLM      LLMConfig      `toml:"llm"`
	Debate   DebateConfig   `toml:"debate"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LLMConfig struct {
	NvidiaAPIKey    string `toml:"nvidia_api_key"`
	OpenRouterKey   string `toml:"openrouter_api_key"`
	GroqAPIKey      string `toml:"groq_api_key"`
	GeminiAPIKey    string `toml:"gemini_api_key"`
	AnthropicAPIKey string `toml:"anthropic_api_key"`
	DefaultProvider string `toml:"default_provider"`
	DefaultModel    string `toml:"default_model"`
	TimeoutSec      int    `toml:"timeout_sec"`
}

type DebateConfig struct {
	DefaultDifficulty string `toml:"default_difficulty"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":3000",
		},
		Database: DatabaseConfig{
			Path: "data/debates.db",
		},
		LLM: LLMConfig{
			DefaultModel: "meta/llama3-70b-instruct",
			TimeoutSec:   30,
		},
		Debate: DebateConfig{
			DefaultDifficulty: "intermediate",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		} else if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets provider credentials come from the environment (or a .env
// file loaded by main) so keys never have to live in config.toml.
func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"NVIDIA_API_KEY":     &c.LLM.NvidiaAPIKey,
		"OPENROUTER_API_KEY": &c.LLM.OpenRouterKey,
		"GROQ_API_KEY":       &c.LLM.GroqAPIKey,
		"GEMINI_API_KEY":     &c.LLM.GeminiAPIKey,
		"ANTHROPIC_API_KEY":  &c.LLM.AnthropicAPIKey,
	}
	for name, dst := range overrides {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
}
