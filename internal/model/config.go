package model

import "time"

// MaxWordLength is the code unit budget for each extraction direction
const MaxWordLength = 13

// Config is the complete hoverlex configuration.
// Field tags serve both the YAML config file and viper's decoder.
type Config struct {
	Extract     ExtractConfig     `yaml:"extract" mapstructure:"extract"`
	Style       StyleConfig       `yaml:"style" mapstructure:"style"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Lookup      LookupConfig      `yaml:"lookup" mapstructure:"lookup"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// ExtractConfig controls the extraction engine
type ExtractConfig struct {
	MaxWordLength int `yaml:"max_word_length" mapstructure:"max_word_length"` // Code units per direction
}

// StyleConfig controls display resolution
type StyleConfig struct {
	CacheSize int `yaml:"cache_size" mapstructure:"cache_size"` // Nodes memoized by the cached resolver (0 disables)
}

// HTTPConfig controls document fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// LookupConfig selects and configures the lookup service backend
type LookupConfig struct {
	Provider     string        `yaml:"provider" mapstructure:"provider"` // http, openai, ollama, or empty to disable
	Endpoint     string        `yaml:"endpoint,omitempty" mapstructure:"endpoint"`
	APIKey       string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Model        string        `yaml:"model,omitempty" mapstructure:"model"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RateLimit    float64       `yaml:"rate_limit" mapstructure:"rate_limit"` // Requests per second per host
	Burst        int           `yaml:"burst" mapstructure:"burst"`
	MaxTokens    int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Dictionary   int           `yaml:"dictionary" mapstructure:"dictionary"`
	Language     string        `yaml:"language,omitempty" mapstructure:"language"`
	WaitForReply time.Duration `yaml:"wait_for_reply" mapstructure:"wait_for_reply"` // How long the CLI waits for the continuation
}

// CacheConfig controls the lookup response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	Format  string `yaml:"format" mapstructure:"format"` // text or json
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Extract: ExtractConfig{
			MaxWordLength: MaxWordLength,
		},
		Style: StyleConfig{
			CacheSize: 4096,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "hoverlex/0.1 (+https://github.com/ppiankov/hoverlex)",
			MaxBodyBytes:  5_000_000,
			RespectRobots: true,
		},
		Lookup: LookupConfig{
			Provider:     "",
			Timeout:      10 * time.Second,
			RateLimit:    5,
			Burst:        5,
			MaxTokens:    600,
			WaitForReply: 30 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".hoverlex-cache",
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// LookupOptions builds the pass-through options from configuration
func (c *Config) LookupOptions() Options {
	return Options{
		Dictionary: c.Lookup.Dictionary,
		Language:   c.Lookup.Language,
	}
}
