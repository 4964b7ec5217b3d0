package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/hoverlex/internal/model"
	"github.com/sashabaranov/go-openai"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "TEXT: 日本語の本") {
			t.Errorf("Prompt does not carry the lookup text: %s", body)
		}

		resp := openai.ChatCompletionResponse{
			ID:    "chatcmpl-123",
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: content,
					},
					FinishReason: "stop",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIProvider_Lookup_Success(t *testing.T) {
	server := chatServer(t, `{"match_length": 3, "entries": [{"word": "日本語", "reading": "にほんご", "glosses": ["Japanese language"]}]}`)
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o-mini",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Lookup(context.Background(), model.LookupRequest{Text: "日本語の本", Prefix: "これは"})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if resp.MatchLength != 3 {
		t.Errorf("Expected match length 3, got %d", resp.MatchLength)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].Reading != "にほんご" {
		t.Errorf("Unexpected entries: %+v", resp.Entries)
	}
	if resp.Source != "openai/gpt-4o-mini" {
		t.Errorf("Unexpected source: %s", resp.Source)
	}
}

func TestOpenAIProvider_Lookup_ClampsMatchLength(t *testing.T) {
	server := chatServer(t, "```json\n{\"match_length\": 40, \"entries\": [{\"word\": \"日本語の本\"}]}\n```")
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Lookup(context.Background(), model.LookupRequest{Text: "日本語の本"})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if resp.MatchLength != 5 {
		t.Errorf("Expected match length clamped to 5, got %d", resp.MatchLength)
	}
}

func TestOpenAIProvider_Lookup_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Lookup(context.Background(), model.LookupRequest{Text: "日本"}); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOpenAIProvider_Lookup_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "Rate limit exceeded", "type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Lookup(context.Background(), model.LookupRequest{Text: "日本"}); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOpenAIProvider_Lookup_MalformedAnswer(t *testing.T) {
	server := chatServer(t, "I think it means Japan.")
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Lookup(context.Background(), model.LookupRequest{Text: "日本語の本"}); err == nil {
		t.Fatal("Expected error for a non-JSON answer, got nil")
	}
}

func TestOpenAIProvider_Lookup_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Lookup(context.Background(), model.LookupRequest{Text: "日本"}); err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
}

func TestOpenAIProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"data": [{"id": "gpt-4o-mini"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}

	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be false on error")
	}
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Fatal("Expected error without API key")
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantName string
		wantNil  bool
		wantErr  bool
	}{
		{name: "disabled", config: Config{}, wantNil: true},
		{name: "openai", config: Config{Provider: "openai", APIKey: "k"}, wantName: "openai"},
		{name: "openai without key", config: Config{Provider: "openai"}, wantErr: true},
		{name: "ollama needs no key", config: Config{Provider: "Ollama"}, wantName: "ollama"},
		{name: "unknown", config: Config{Provider: "anthropic"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.wantNil {
				if p != nil {
					t.Fatalf("Expected nil provider, got %s", p.Name())
				}
				return
			}
			if p == nil || p.Name() != tt.wantName {
				t.Fatalf("Expected provider %s, got %v", tt.wantName, p)
			}
		})
	}
}

func TestParseAnswer_NoEntriesZeroesMatch(t *testing.T) {
	resp, err := ParseAnswer(`{"match_length": 2, "entries": []}`, model.LookupRequest{Text: "日本"})
	if err != nil {
		t.Fatalf("ParseAnswer failed: %v", err)
	}
	if resp.MatchLength != 0 {
		t.Errorf("Expected match length 0 without entries, got %d", resp.MatchLength)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(model.LookupRequest{
		Text:    "日本語",
		Prefix:  "これは",
		Options: model.Options{Language: "en"},
	})
	for _, want := range []string{"TEXT: 日本語", "PRECEDING: これは", "GLOSS LANGUAGE: en"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(BuildPrompt(model.LookupRequest{Text: "日本"}), "PRECEDING") {
		t.Error("Empty prefix should be omitted")
	}
}
