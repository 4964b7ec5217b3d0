// Package llm answers dictionary lookups with an OpenAI-compatible chat model.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/hoverlex/internal/dom"
	"github.com/ppiankov/hoverlex/internal/model"
)

// Provider defines the interface for model-backed lookup providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Lookup asks the model for dictionary entries matching the start of req.Text
	Lookup(ctx context.Context, req model.LookupRequest) (*model.LookupResponse, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted endpoints
	APIKey string

	// BaseURL for custom or local endpoints
	BaseURL string

	// Timeout for a single lookup
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   10 * time.Second,
		MaxTokens: 600,
	}
}

// systemPrompt fixes the answer format
const systemPrompt = `You are a Japanese-English dictionary. Answer only with a JSON object of the form
{"match_length": <int>, "entries": [{"word": "...", "reading": "...", "glosses": ["..."]}]}.
match_length is the number of characters at the start of TEXT covered by the longest word you found.
Return {"match_length": 0, "entries": []} when nothing matches.`

// BuildPrompt constructs the user message for a lookup
func BuildPrompt(req model.LookupRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TEXT: %s\n", req.Text)
	if req.Prefix != "" {
		fmt.Fprintf(&b, "PRECEDING: %s\n", req.Prefix)
	}
	if req.Options.Language != "" {
		fmt.Fprintf(&b, "GLOSS LANGUAGE: %s\n", req.Options.Language)
	}
	b.WriteString("Find the longest dictionary word that starts at the beginning of TEXT.")
	return b.String()
}

// ParseAnswer decodes a model answer. Code fences are tolerated and the match
// length is clamped to the request text.
func ParseAnswer(content string, req model.LookupRequest) (*model.LookupResponse, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var resp model.LookupResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &resp); err != nil {
		return nil, fmt.Errorf("decode answer: %w", err)
	}

	resp.MatchLength = max(0, min(resp.MatchLength, dom.Len(req.Text)))
	if len(resp.Entries) == 0 {
		resp.MatchLength = 0
	}
	return &resp, nil
}
