package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/hoverlex/internal/model"
)

// defaultOllamaURL is Ollama's OpenAI-compatible endpoint
const defaultOllamaURL = "http://localhost:11434/v1"

// NewProvider creates a new provider based on configuration
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		p, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, err
		}
		return p, nil

	case "ollama":
		// Ollama ignores the key but the client requires a bearer value
		if config.BaseURL == "" {
			config.BaseURL = defaultOllamaURL
		}
		if config.APIKey == "" {
			config.APIKey = "ollama"
		}
		if config.Model == "" {
			config.Model = "qwen2.5:7b"
		}
		return newCompatibleProvider("ollama", config), nil

	case "":
		// No provider configured
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
}

// ConfigFromModel converts lookup and HTTP settings to a provider Config
func ConfigFromModel(lookup model.LookupConfig, httpCfg model.HTTPConfig) Config {
	return Config{
		Provider:   lookup.Provider,
		Model:      lookup.Model,
		APIKey:     lookup.APIKey,
		BaseURL:    lookup.Endpoint,
		Timeout:    lookup.Timeout,
		MaxTokens:  lookup.MaxTokens,
		HTTPProxy:  httpCfg.HTTPProxy,
		HTTPSProxy: httpCfg.HTTPSProxy,
		NoProxy:    httpCfg.NoProxy,
	}
}
