package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Config is the complete basir configuration.
// Field tags serve both viper (mapstructure) and `basir config show|init` (yaml).
type Config struct {
	Classifier  LLMConfig         `yaml:"classifier" mapstructure:"classifier"`
	Synthesis   LLMConfig         `yaml:"synthesis" mapstructure:"synthesis"`
	Embedding   EmbeddingConfig   `yaml:"embedding" mapstructure:"embedding"`
	Retrieval   RetrievalConfig   `yaml:"retrieval" mapstructure:"retrieval"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" mapstructure:"rate_limit"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// LLMConfig configures one text-generation backend
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // ollama, openai, anthropic, gemini
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`

	// Anthropic via AWS Bedrock
	UseBedrock bool   `yaml:"use_bedrock,omitempty" mapstructure:"use_bedrock"`
	AWSRegion  string `yaml:"aws_region,omitempty" mapstructure:"aws_region"`
	AWSProfile string `yaml:"aws_profile,omitempty" mapstructure:"aws_profile"`

	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// EmbeddingConfig configures the query vectorizer
type EmbeddingConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // ollama, openai, gemini
	Model    string `yaml:"model" mapstructure:"model"`
	APIKey   string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout  int    `yaml:"timeout" mapstructure:"timeout"` // seconds
}

// RetrievalConfig configures the Milvus similarity search
type RetrievalConfig struct {
	Address       string  `yaml:"address" mapstructure:"address"`
	Username      string  `yaml:"username,omitempty" mapstructure:"username"`
	Password      string  `yaml:"password,omitempty" mapstructure:"password"`
	Database      string  `yaml:"database,omitempty" mapstructure:"database"`
	VectorField   string  `yaml:"vector_field" mapstructure:"vector_field"`
	TopK          int     `yaml:"top_k" mapstructure:"top_k"`
	MinSimilarity float64 `yaml:"min_similarity" mapstructure:"min_similarity"`
}

// OutputConfig controls where artifacts are written
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// CacheConfig controls the query-embedding cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir,omitempty" mapstructure:"disk_dir"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig bounds outbound generation calls per backend host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers" mapstructure:"batch_workers"`
}

// ServerConfig configures `basir serve`
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // console, json
}

// DefaultConfig returns the reference deployment defaults: a local
// Ollama classifier, Gemini synthesis, Milvus on localhost.
func DefaultConfig() *Config {
	return &Config{
		Classifier: LLMConfig{
			Provider:    "ollama",
			Model:       "llama3.1:8b-instruct-q8_0",
			BaseURL:     "http://localhost:11434",
			Timeout:     60,
			MaxTokens:   64,
			Temperature: 0,
		},
		Synthesis: LLMConfig{
			Provider:    "gemini",
			Model:       "gemini-2.5-flash",
			Timeout:     120,
			MaxTokens:   4096,
			Temperature: 0.2,
		},
		Embedding: EmbeddingConfig{
			Provider: "ollama",
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
			Timeout:  30,
		},
		Retrieval: RetrievalConfig{
			Address:       "localhost:19530",
			VectorField:   "vector",
			TopK:          15,
			MinSimilarity: 0.65,
		},
		Output: OutputConfig{
			Dir: "outputs",
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: time.Hour,
			DiskTTL:   24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 4,
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

var (
	llmProviders       = []string{"ollama", "openai", "anthropic", "claude", "gemini"}
	embeddingProviders = []string{"ollama", "openai", "gemini"}
)

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	for _, section := range []struct {
		name string
		cfg  LLMConfig
	}{{"classifier", c.Classifier}, {"synthesis", c.Synthesis}} {
		if !oneOf(section.cfg.Provider, llmProviders) {
			result = multierror.Append(result, fmt.Errorf("%s.provider: unsupported provider %q (supported: %s)",
				section.name, section.cfg.Provider, strings.Join(llmProviders, ", ")))
		}
		if section.cfg.Timeout < 0 {
			result = multierror.Append(result, fmt.Errorf("%s.timeout: must not be negative", section.name))
		}
		if section.cfg.MaxTokens < 0 {
			result = multierror.Append(result, fmt.Errorf("%s.max_tokens: must not be negative", section.name))
		}
	}

	if !oneOf(c.Embedding.Provider, embeddingProviders) {
		result = multierror.Append(result, fmt.Errorf("embedding.provider: unsupported provider %q (supported: %s)",
			c.Embedding.Provider, strings.Join(embeddingProviders, ", ")))
	}

	if c.Retrieval.Address == "" {
		result = multierror.Append(result, fmt.Errorf("retrieval.address: required"))
	}
	if c.Retrieval.VectorField == "" {
		result = multierror.Append(result, fmt.Errorf("retrieval.vector_field: required"))
	}
	if c.Retrieval.TopK <= 0 {
		result = multierror.Append(result, fmt.Errorf("retrieval.top_k: must be positive, got %d", c.Retrieval.TopK))
	}
	if c.Retrieval.MinSimilarity < 0 || c.Retrieval.MinSimilarity > 1 {
		result = multierror.Append(result, fmt.Errorf("retrieval.min_similarity: must be within [0, 1], got %v", c.Retrieval.MinSimilarity))
	}

	if c.Output.Dir == "" {
		result = multierror.Append(result, fmt.Errorf("output.dir: required"))
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		result = multierror.Append(result, fmt.Errorf("rate_limit.requests_per_second: must not be negative"))
	}

	return result.ErrorOrNil()
}

// Redacted returns a copy safe to print: credentials are masked.
func (c *Config) Redacted() *Config {
	cp := *c
	cp.Classifier.APIKey = mask(cp.Classifier.APIKey)
	cp.Synthesis.APIKey = mask(cp.Synthesis.APIKey)
	cp.Embedding.APIKey = mask(cp.Embedding.APIKey)
	cp.Retrieval.Password = mask(cp.Retrieval.Password)
	return &cp
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

func oneOf(s string, options []string) bool {
	s = strings.ToLower(s)
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}
